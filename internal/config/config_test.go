package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_PATH", "PORT", "FRONTEND_URL", "SESSION_SECRET", "SESSION_TTL",
	"DEFAULT_PROJECT", "PREDICT_URL", "PREDICT_API_TOKEN", "REMOTE_TIMEOUT",
	"TRACKER_PROVIDER", "JIRA_URL", "JIRA_USER", "JIRA_TOKEN", "JIRA_PROJECT",
	"GITHUB_TOKEN", "GITHUB_OWNER", "GITHUB_REPO", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "DEM", cfg.DefaultProject)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.PredictURL)
	assert.Equal(t, 30*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, TrackerAPI, cfg.Tracker.Provider)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REMOTE_TIMEOUT", "5s")
	t.Setenv("DEFAULT_PROJECT", "OPS")
	t.Setenv("TRACKER_PROVIDER", "NONE")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, "OPS", cfg.DefaultProject)
	assert.Equal(t, TrackerNone, cfg.Tracker.Provider)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7000
default_project: WEB
remote_timeout: 12s
tracker:
  provider: jira
  jira_url: https://example.atlassian.net
  jira_user: bot@example.com
  jira_token: tok
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port, "env wins over file")
	assert.Equal(t, "WEB", cfg.DefaultProject)
	assert.Equal(t, 12*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, TrackerJira, cfg.Tracker.Provider)
	assert.Equal(t, "https://example.atlassian.net", cfg.Tracker.JiraURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"PORT": "abc"}, "parse PORT"},
		{"bad timeout", map[string]string{"REMOTE_TIMEOUT": "soon"}, "parse REMOTE_TIMEOUT"},
		{"bad ttl", map[string]string{"SESSION_TTL": "1x"}, "parse SESSION_TTL"},
		{"unknown tracker", map[string]string{"TRACKER_PROVIDER": "trello"}, "unknown TRACKER_PROVIDER"},
		{"jira incomplete", map[string]string{"TRACKER_PROVIDER": "jira", "JIRA_URL": "https://x"}, "JIRA_USER"},
		{"github incomplete", map[string]string{"TRACKER_PROVIDER": "github", "GITHUB_TOKEN": "t"}, "GITHUB_OWNER"},
		{"missing file", map[string]string{"CONFIG_PATH": "/nonexistent/config.yaml"}, "read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := defaults()
	assert.ErrorContains(t, cfg.ValidateServer(), "SESSION_SECRET")

	cfg.SessionSecret = "s3cret"
	assert.NoError(t, cfg.ValidateServer())

	cfg.SessionTTL = 0
	assert.ErrorContains(t, cfg.ValidateServer(), "SESSION_TTL")
}
