package text

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemoteProvider fetches a passage from an HTTP endpoint that responds with
// {"text": string}. It covers deployments where passage generation is
// delegated to a separate service instead of calling the generator directly.
type RemoteProvider struct {
	url    string
	client *http.Client
}

// NewRemoteProvider creates a provider for the given endpoint URL. A
// non-positive timeout falls back to DefaultTimeout.
func NewRemoteProvider(url string, timeout time.Duration) *RemoteProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RemoteProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Passage performs a single GET against the configured endpoint.
func (p *RemoteProvider) Passage(ctx context.Context) (string, error) {
	if p.url == "" {
		return "", ErrMissingURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build passage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("passage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("passage endpoint returned status %d", resp.StatusCode)
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode passage response: %w", err)
	}

	passage := StripMarkdown(decoded.Text)
	if passage == "" {
		return "", ErrEmptyPassage
	}
	return passage, nil
}
