// Package predictor is the HTTP client for the triage model service.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/httpclient"
)

// maxRanked is the number of ranked assignees the service reports.
const maxRanked = 3

// Client calls the prediction service over HTTP.
type Client struct {
	baseURL string
	client  httpclient.HTTPClient
}

// NewClient creates a Client for the service rooted at baseURL.
func NewClient(baseURL string, client httpclient.HTTPClient) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type predictResponse struct {
	Category      *string  `json:"category"`
	CategoryConf  float64  `json:"category_conf"`
	Severity      *string  `json:"severity"`
	SeverityConf  float64  `json:"severity_conf"`
	AssigneeTop1  string   `json:"assignee_top1"`
	AssigneeTop3  []string `json:"assignee_top3"`
	JiraSuggested bool     `json:"jira_suggested"`
	ModelVersion  string   `json:"model_version"`
	Explanations  *struct {
		SimilarCases []domain.SimilarCase `json:"similar_cases"`
	} `json:"explanations"`
}

// Health is the service health report.
type Health struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version"`
}

// Predict requests a triage for req.
func (c *Client) Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode prediction request: %w", err)
	}

	var out predictResponse
	if err := c.do(ctx, http.MethodPost, "/predict", body, &out); err != nil {
		return nil, err
	}

	if out.Category == nil {
		return nil, fmt.Errorf("prediction response: missing category")
	}
	if out.Severity == nil {
		return nil, fmt.Errorf("prediction response: missing severity")
	}

	ranked := out.AssigneeTop3
	if len(ranked) == 0 && out.AssigneeTop1 != "" {
		ranked = []string{out.AssigneeTop1}
	}
	if len(ranked) > maxRanked {
		ranked = ranked[:maxRanked]
	}

	result := &domain.PredictionResult{
		Category:           *out.Category,
		CategoryConfidence: out.CategoryConf,
		Severity:           *out.Severity,
		SeverityConfidence: out.SeverityConf,
		AssigneeRanked:     ranked,
		JiraSuggested:      out.JiraSuggested,
		ModelVersion:       out.ModelVersion,
	}
	if out.Explanations != nil {
		result.SimilarCases = out.Explanations.SimilarCases
	}
	return result, nil
}

// Health reports the service status and model version.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
