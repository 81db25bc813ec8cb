package httpclient

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const DefaultTimeout = 30 * time.Second

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// New returns an http.Client bounded by timeout. When token is set, requests
// carry it as a Bearer token.
func New(timeout time.Duration, token string) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if token == "" {
		return &http.Client{Timeout: timeout}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(context.Background(), ts)
	client.Timeout = timeout
	return client
}
