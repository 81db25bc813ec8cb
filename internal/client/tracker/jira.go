package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/httpclient"
	"github.com/sumire/triage/internal/logger"
)

const jiraIssueType = "Task"

// JiraTracker creates issues through the Jira Cloud REST API v3.
type JiraTracker struct {
	baseURL string
	email   string
	apiKey  string
	project string
	client  httpclient.HTTPClient
}

// NewJiraTracker creates a JiraTracker. project is used when a request
// carries no project key.
func NewJiraTracker(baseURL, email, apiKey, project string, client httpclient.HTTPClient) *JiraTracker {
	return &JiraTracker{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   email,
		apiKey:  apiKey,
		project: project,
		client:  client,
	}
}

type (
	jiraIssueFields struct {
		Project     jiraKey      `json:"project"`
		Summary     string       `json:"summary"`
		Description AtlassianDoc `json:"description"`
		IssueType   jiraName     `json:"issuetype"`
		Priority    jiraName     `json:"priority"`
	}

	jiraKey struct {
		Key string `json:"key"`
	}

	jiraName struct {
		Name string `json:"name"`
	}

	// AtlassianDoc is a document in Atlassian document format.
	AtlassianDoc struct {
		Type    string       `json:"type"`
		Version int          `json:"version"`
		Content []DocContent `json:"content"`
	}

	DocContent struct {
		Type    string       `json:"type"`
		Text    string       `json:"text,omitempty"`
		Content []DocContent `json:"content,omitempty"`
	}
)

// PriorityFor maps a predicted severity onto a Jira priority name.
func PriorityFor(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical":
		return "Highest"
	case "high", "major":
		return "High"
	case "low", "minor":
		return "Low"
	case "trivial":
		return "Lowest"
	default:
		return "Medium"
	}
}

func (t *JiraTracker) CreateIssue(ctx context.Context, req domain.CreationRequest) (*domain.CreationResult, error) {
	summary, description, ok := checkFields(req)
	if !ok {
		return domain.CreationFailed(MsgFieldsRequired), nil
	}

	project := strings.TrimSpace(req.Project)
	if project == "" {
		project = t.project
	}

	allowed, err := t.canCreate(ctx, project)
	if err != nil {
		logger.Error(ctx, "jira permission check failed", err, "project", project)
	}
	if !allowed {
		return domain.CreationFailed(MsgJiraNoAccess), nil
	}

	key, err := t.createIssue(ctx, jiraIssueFields{
		Project:     jiraKey{Key: project},
		Summary:     summary,
		Description: buildDoc(description, triageLines(req)),
		IssueType:   jiraName{Name: jiraIssueType},
		Priority:    jiraName{Name: PriorityFor(req.Severity)},
	})
	if err != nil {
		return nil, err
	}

	if hasAssignee(req) {
		if err := t.assign(ctx, key, strings.TrimSpace(req.AssigneeOrEmpty())); err != nil {
			logger.Warn(ctx, "jira assignment failed", "issue_key", key, "error", err)
		}
	}

	logger.Info(ctx, "jira issue created", "issue_key", key, "project", project)
	return domain.CreationSucceeded(key), nil
}

func (t *JiraTracker) canCreate(ctx context.Context, project string) (bool, error) {
	q := url.Values{}
	q.Set("projectKey", project)
	q.Set("permissions", "CREATE_ISSUES")

	resp, err := t.makeRequest(ctx, http.MethodGet, "/rest/api/3/mypermissions?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return false, fmt.Errorf("unauthorized: check Jira credentials")
	default:
		return false, fmt.Errorf("unexpected permission check status: %s", resp.Status)
	}

	var out struct {
		Permissions map[string]struct {
			HavePermission bool `json:"havePermission"`
		} `json:"permissions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode permissions: %w", err)
	}
	return out.Permissions["CREATE_ISSUES"].HavePermission, nil
}

func (t *JiraTracker) createIssue(ctx context.Context, fields jiraIssueFields) (string, error) {
	resp, err := t.makeRequest(ctx, http.MethodPost, "/rest/api/3/issue", map[string]any{"fields": fields})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("jira create issue returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode created issue: %w", err)
	}
	if out.Key == "" {
		return "", fmt.Errorf("jira create issue: response has no key")
	}
	return out.Key, nil
}

func (t *JiraTracker) assign(ctx context.Context, key, assignee string) error {
	accountID, err := t.findAccount(ctx, assignee)
	if err != nil {
		return err
	}

	resp, err := t.makeRequest(ctx, http.MethodPut, "/rest/api/3/issue/"+url.PathEscape(key)+"/assignee",
		map[string]string{"accountId": accountID})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("assign returned status %s", resp.Status)
	}
	return nil
}

func (t *JiraTracker) findAccount(ctx context.Context, query string) (string, error) {
	resp, err := t.makeRequest(ctx, http.MethodGet, "/rest/api/3/user/search?query="+url.QueryEscape(query), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user search returned status %s", resp.Status)
	}

	var users []struct {
		AccountID string `json:"accountId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return "", fmt.Errorf("decode user search: %w", err)
	}
	if len(users) == 0 || users[0].AccountID == "" {
		return "", fmt.Errorf("no Jira user matches %q", query)
	}
	return users[0].AccountID, nil
}

func (t *JiraTracker) makeRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode jira request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(t.email, t.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// buildDoc renders plain text lines as ADF paragraphs. Blank lines are
// dropped since ADF rejects empty text nodes.
func buildDoc(description string, trailer []string) AtlassianDoc {
	doc := AtlassianDoc{Type: "doc", Version: 1}
	lines := append(strings.Split(description, "\n"), trailer...)
	for _, line := range lines {
		line = strings.TrimRight(line, "\r ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		doc.Content = append(doc.Content, DocContent{
			Type:    "paragraph",
			Content: []DocContent{{Type: "text", Text: line}},
		})
	}
	return doc
}
