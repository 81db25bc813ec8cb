package tracker

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

const createPath = "/create_jira"

// APITracker delegates issue creation to the prediction service.
type APITracker struct {
	baseURL string
	client  httpclient.HTTPClient
}

func NewAPITracker(baseURL string, client httpclient.HTTPClient) *APITracker {
	return &APITracker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (t *APITracker) CreateIssue(ctx context.Context, req domain.CreationRequest) (*domain.CreationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode creation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+createPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", createPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("POST %s returned status %d: %s", createPath, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out domain.CreationResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", createPath, err)
	}
	return &out, nil
}
