package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/github"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/httpclient"
	"github.com/sumire/triage/internal/logger"
)

// IssuesService is the part of the GitHub issues API the tracker uses.
type IssuesService interface {
	Create(ctx context.Context, owner, repo string, issue *github.IssueRequest) (*github.Issue, *github.Response, error)
}

// GitHubTracker files triaged issues in a GitHub repository.
type GitHubTracker struct {
	issues IssuesService
	owner  string
	repo   string
}

func NewGitHubTracker(owner, repo, token string, timeout time.Duration) *GitHubTracker {
	client := github.NewClient(httpclient.New(timeout, token))
	return &GitHubTracker{issues: client.Issues, owner: owner, repo: repo}
}

// NewGitHubTrackerWithService creates a GitHubTracker backed by issues.
func NewGitHubTrackerWithService(issues IssuesService, owner, repo string) *GitHubTracker {
	return &GitHubTracker{issues: issues, owner: owner, repo: repo}
}

func (t *GitHubTracker) CreateIssue(ctx context.Context, req domain.CreationRequest) (*domain.CreationResult, error) {
	summary, description, ok := checkFields(req)
	if !ok {
		return domain.CreationFailed(MsgFieldsRequired), nil
	}

	body := description + "\n\n" + strings.Join(triageLines(req), "\n")
	labels := issueLabels(req)
	issueReq := &github.IssueRequest{
		Title:  &summary,
		Body:   &body,
		Labels: &labels,
	}
	if hasAssignee(req) {
		login := loginOf(req.AssigneeOrEmpty())
		issueReq.Assignee = &login
	}

	issue, _, err := t.issues.Create(ctx, t.owner, t.repo, issueReq)
	if err != nil {
		return nil, fmt.Errorf("create github issue: %w", err)
	}

	key := fmt.Sprintf("%s/%s#%d", t.owner, t.repo, issue.GetNumber())
	logger.Info(ctx, "github issue created", "issue_key", key, "url", issue.GetHTMLURL())
	return domain.CreationSucceeded(key), nil
}

func issueLabels(req domain.CreationRequest) []string {
	var labels []string
	if c := strings.TrimSpace(req.Category); c != "" {
		labels = append(labels, "category:"+strings.ToLower(c))
	}
	if s := strings.TrimSpace(req.Severity); s != "" {
		labels = append(labels, "severity:"+strings.ToLower(s))
	}
	return labels
}

// loginOf returns the local part of an email style identifier.
func loginOf(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if local, _, found := strings.Cut(identifier, "@"); found {
		return local
	}
	return identifier
}
