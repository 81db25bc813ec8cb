package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/triage/internal/domain"
)

type fakeJira struct {
	canCreate   bool
	createCode  int
	users       string
	assignCode  int
	gotFields   map[string]any
	gotAssignee string
	assigned    atomic.Bool
}

func newFakeJira(t *testing.T, f *fakeJira) *JiraTracker {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/mypermissions", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot@example.com", user)
		assert.Equal(t, "token", pass)
		assert.Equal(t, "CREATE_ISSUES", r.URL.Query().Get("permissions"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"permissions": map[string]any{
				"CREATE_ISSUES": map[string]bool{"havePermission": f.canCreate},
			},
		})
	})
	mux.HandleFunc("POST /rest/api/3/issue", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.gotFields = in.Fields

		w.WriteHeader(f.createCode)
		if f.createCode == http.StatusCreated {
			_, _ = w.Write([]byte(`{"id":"10001","key":"DEM-42"}`))
			return
		}
		_, _ = w.Write([]byte(`{"errorMessages":["boom"]}`))
	})
	mux.HandleFunc("GET /rest/api/3/user/search", func(w http.ResponseWriter, r *http.Request) {
		f.gotAssignee = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(f.users))
	})
	mux.HandleFunc("PUT /rest/api/3/issue/DEM-42/assignee", func(w http.ResponseWriter, r *http.Request) {
		f.assigned.Store(true)
		w.WriteHeader(f.assignCode)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewJiraTracker(srv.URL, "bot@example.com", "token", "FALLBACK", srv.Client())
}

func jiraRequest(assignee *string) domain.CreationRequest {
	return domain.CreationRequest{
		Project:     "DEM",
		Summary:     "Login fails",
		Description: "Cannot log in\nwith valid creds",
		Category:    "Bug",
		Severity:    "Critical",
		Assignee:    assignee,
	}
}

func TestJiraTracker_CreatesAndAssigns(t *testing.T) {
	f := &fakeJira{
		canCreate:  true,
		createCode: http.StatusCreated,
		users:      `[{"accountId":"acc-1"}]`,
		assignCode: http.StatusNoContent,
	}
	tr := newFakeJira(t, f)

	assignee := "a@x.com"
	got, err := tr.CreateIssue(context.Background(), jiraRequest(&assignee))
	require.NoError(t, err)
	assert.Equal(t, domain.CreationSucceeded("DEM-42"), got)

	assert.Equal(t, map[string]any{"key": "DEM"}, f.gotFields["project"])
	assert.Equal(t, "Login fails", f.gotFields["summary"])
	assert.Equal(t, map[string]any{"name": "Task"}, f.gotFields["issuetype"])
	assert.Equal(t, map[string]any{"name": "Highest"}, f.gotFields["priority"])
	assert.Equal(t, "a@x.com", f.gotAssignee)
	assert.True(t, f.assigned.Load())

	doc, ok := f.gotFields["description"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "doc", doc["type"])
	content, ok := doc["content"].([]any)
	require.True(t, ok)
	assert.Len(t, content, 6, "two description lines plus the four line triage block")
}

func TestJiraTracker_SkipsUnassigned(t *testing.T) {
	f := &fakeJira{canCreate: true, createCode: http.StatusCreated}
	tr := newFakeJira(t, f)

	for _, a := range []*string{nil, ptr("unassigned"), ptr("  ")} {
		got, err := tr.CreateIssue(context.Background(), jiraRequest(a))
		require.NoError(t, err)
		assert.True(t, got.Success)
	}
	assert.False(t, f.assigned.Load())
	assert.Empty(t, f.gotAssignee)
}

func TestJiraTracker_AssignmentFailureStillSucceeds(t *testing.T) {
	f := &fakeJira{canCreate: true, createCode: http.StatusCreated, users: `[]`}
	tr := newFakeJira(t, f)

	got, err := tr.CreateIssue(context.Background(), jiraRequest(ptr("ghost@x.com")))
	require.NoError(t, err)
	assert.Equal(t, domain.CreationSucceeded("DEM-42"), got)
	assert.False(t, f.assigned.Load())
}

func TestJiraTracker_Rejections(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		tr := newFakeJira(t, &fakeJira{canCreate: true, createCode: http.StatusCreated})
		req := jiraRequest(nil)
		req.Description = "  "

		got, err := tr.CreateIssue(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, domain.CreationFailed(MsgFieldsRequired), got)
	})

	t.Run("no create permission", func(t *testing.T) {
		tr := newFakeJira(t, &fakeJira{canCreate: false, createCode: http.StatusCreated})

		got, err := tr.CreateIssue(context.Background(), jiraRequest(nil))
		require.NoError(t, err)
		assert.Equal(t, domain.CreationFailed(MsgJiraNoAccess), got)
	})

	t.Run("create rejected", func(t *testing.T) {
		tr := newFakeJira(t, &fakeJira{canCreate: true, createCode: http.StatusBadRequest})

		_, err := tr.CreateIssue(context.Background(), jiraRequest(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
	})
}

func TestJiraTracker_FallbackProject(t *testing.T) {
	f := &fakeJira{canCreate: true, createCode: http.StatusCreated}
	tr := newFakeJira(t, f)

	req := jiraRequest(nil)
	req.Project = ""
	_, err := tr.CreateIssue(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"key": "FALLBACK"}, f.gotFields["project"])
}

func TestPriorityFor(t *testing.T) {
	tests := map[string]string{
		"Critical": "Highest",
		"major":    "High",
		"High":     "High",
		"Moderate": "Medium",
		"Minor":    "Low",
		"low":      "Low",
		"Trivial":  "Lowest",
		"weird":    "Medium",
		"":         "Medium",
	}
	for severity, want := range tests {
		assert.Equal(t, want, PriorityFor(severity), severity)
	}
}

func TestBuildDoc(t *testing.T) {
	doc := buildDoc("first\r\n\nsecond", []string{"tail"})
	require.Len(t, doc.Content, 3)
	assert.Equal(t, "first", doc.Content[0].Content[0].Text)
	assert.Equal(t, "second", doc.Content[1].Content[0].Text)
	assert.Equal(t, "tail", doc.Content[2].Content[0].Text)
}

func ptr(s string) *string { return &s }
