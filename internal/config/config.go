package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Tracker provider names.
const (
	TrackerAPI    = "api"
	TrackerJira   = "jira"
	TrackerGitHub = "github"
	TrackerNone   = "none"
)

// Config holds all application configuration. Values come from an optional
// YAML file (CONFIG_PATH) and are overridden by environment variables.
type Config struct {
	Port        int    `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`

	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`

	DefaultProject  string        `yaml:"default_project"`
	PredictURL      string        `yaml:"predict_url"`
	PredictAPIToken string        `yaml:"predict_api_token"`
	RemoteTimeout   time.Duration `yaml:"remote_timeout"`

	Tracker TrackerConfig `yaml:"tracker"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// TrackerConfig selects and configures the issue tracker used for creation.
type TrackerConfig struct {
	Provider string `yaml:"provider"`

	JiraURL     string `yaml:"jira_url"`
	JiraUser    string `yaml:"jira_user"`
	JiraToken   string `yaml:"jira_token"`
	JiraProject string `yaml:"jira_project"`

	GitHubToken string `yaml:"github_token"`
	GitHubOwner string `yaml:"github_owner"`
	GitHubRepo  string `yaml:"github_repo"`
}

func defaults() Config {
	return Config{
		Port:           8080,
		FrontendURL:    "http://localhost:3000",
		SessionTTL:     2 * time.Hour,
		DefaultProject: "DEM",
		PredictURL:     "http://127.0.0.1:8000",
		RemoteTimeout:  30 * time.Second,
		Tracker:        TrackerConfig{Provider: TrackerAPI},
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads configuration from the optional YAML file and environment
// variables and validates it.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var err error

	if cfg.Port, err = getEnvInt("PORT", cfg.Port); err != nil {
		return fmt.Errorf("parse PORT: %w", err)
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	if cfg.RemoteTimeout, err = getEnvDuration("REMOTE_TIMEOUT", cfg.RemoteTimeout); err != nil {
		return fmt.Errorf("parse REMOTE_TIMEOUT: %w", err)
	}

	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.DefaultProject = getEnv("DEFAULT_PROJECT", cfg.DefaultProject)
	cfg.PredictURL = getEnv("PREDICT_URL", cfg.PredictURL)
	cfg.PredictAPIToken = getEnv("PREDICT_API_TOKEN", cfg.PredictAPIToken)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	t := &cfg.Tracker
	t.Provider = strings.ToLower(getEnv("TRACKER_PROVIDER", t.Provider))
	t.JiraURL = getEnv("JIRA_URL", t.JiraURL)
	t.JiraUser = getEnv("JIRA_USER", t.JiraUser)
	t.JiraToken = getEnv("JIRA_TOKEN", t.JiraToken)
	t.JiraProject = getEnv("JIRA_PROJECT", t.JiraProject)
	t.GitHubToken = getEnv("GITHUB_TOKEN", t.GitHubToken)
	t.GitHubOwner = getEnv("GITHUB_OWNER", t.GitHubOwner)
	t.GitHubRepo = getEnv("GITHUB_REPO", t.GitHubRepo)

	return nil
}

func (c Config) validate() error {
	if c.PredictURL == "" {
		return fmt.Errorf("PREDICT_URL is required")
	}
	if c.RemoteTimeout < 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must not be negative")
	}

	switch c.Tracker.Provider {
	case TrackerAPI, TrackerNone:
	case TrackerJira:
		if c.Tracker.JiraURL == "" || c.Tracker.JiraUser == "" || c.Tracker.JiraToken == "" {
			return fmt.Errorf("JIRA_URL, JIRA_USER and JIRA_TOKEN are required for the jira tracker")
		}
	case TrackerGitHub:
		if c.Tracker.GitHubToken == "" || c.Tracker.GitHubOwner == "" || c.Tracker.GitHubRepo == "" {
			return fmt.Errorf("GITHUB_TOKEN, GITHUB_OWNER and GITHUB_REPO are required for the github tracker")
		}
	default:
		return fmt.Errorf("unknown TRACKER_PROVIDER %q", c.Tracker.Provider)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}
