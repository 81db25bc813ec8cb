// Package tracker creates issues in external trackers from a confirmed triage.
package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/sumire/triage/internal/config"
	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/httpclient"
	"github.com/sumire/triage/internal/triage"
)

// Failure messages reported in a CreationResult.
const (
	MsgFieldsRequired = "Summary and description are required"
	MsgNotConfigured  = "Issue tracker is not configured."
	MsgJiraNoAccess   = "Jira is not properly configured or lacks create permissions. Contact administrator."
)

// unassigned is the assignee value that leaves an issue unassigned.
const unassigned = "unassigned"

// New returns the IssueCreator selected by cfg.Tracker.Provider.
func New(cfg config.Config) (triage.IssueCreator, error) {
	t := cfg.Tracker
	switch t.Provider {
	case config.TrackerAPI, "":
		return NewAPITracker(cfg.PredictURL, httpclient.New(cfg.RemoteTimeout, cfg.PredictAPIToken)), nil
	case config.TrackerJira:
		// Jira uses basic auth, so the client must not carry a bearer token.
		return NewJiraTracker(t.JiraURL, t.JiraUser, t.JiraToken, t.JiraProject, httpclient.New(cfg.RemoteTimeout, "")), nil
	case config.TrackerGitHub:
		return NewGitHubTracker(t.GitHubOwner, t.GitHubRepo, t.GitHubToken, cfg.RemoteTimeout), nil
	case config.TrackerNone:
		return Unconfigured{}, nil
	default:
		return nil, fmt.Errorf("unknown tracker provider %q", t.Provider)
	}
}

// Unconfigured rejects every creation request.
type Unconfigured struct{}

func (Unconfigured) CreateIssue(context.Context, domain.CreationRequest) (*domain.CreationResult, error) {
	return domain.CreationFailed(MsgNotConfigured), nil
}

// checkFields trims and checks the required text fields of req.
func checkFields(req domain.CreationRequest) (summary, description string, ok bool) {
	summary = strings.TrimSpace(req.Summary)
	description = strings.TrimSpace(req.Description)
	return summary, description, summary != "" && description != ""
}

func hasAssignee(req domain.CreationRequest) bool {
	a := strings.TrimSpace(req.AssigneeOrEmpty())
	return a != "" && !strings.EqualFold(a, unassigned)
}

// triageLines returns the "AI Triage Results" block appended to descriptions.
func triageLines(req domain.CreationRequest) []string {
	assignee := unassigned
	if hasAssignee(req) {
		assignee = req.AssigneeOrEmpty()
	}
	return []string{
		"--- AI Triage Results ---",
		"Category: " + req.Category,
		"Severity: " + req.Severity,
		"Recommended Assignee: " + assignee,
	}
}
