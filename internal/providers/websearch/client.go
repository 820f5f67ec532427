// Package websearch wraps the web search provider behind a small client.
// The pipeline only needs one operation: a query in, an ordered list of
// results out.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// Result is one search hit in provider relevance order
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Config holds configuration for the search client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client handles communication with the search provider
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new search client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

type searchRequest struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs one query and returns results in relevance order
func (c *Client) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if query == "" {
		return nil, apperrors.ValidationError("query", "cannot be empty")
	}
	if count <= 0 {
		count = 8
	}

	body, err := json.Marshal(searchRequest{Query: query, Count: count})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ExternalServiceError("search", err).Transient()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] Search provider returned status %d for query %q", resp.StatusCode, query)
		appErr := apperrors.Newf(apperrors.ErrCodeSearchUnavailable, "search provider returned status %d", resp.StatusCode)
		if transientStatus(resp.StatusCode) {
			return nil, appErr.Transient()
		}
		return nil, appErr.Permanent()
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchUnavailable, "decoding search response").Permanent()
	}

	return parsed.Results, nil
}

func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
