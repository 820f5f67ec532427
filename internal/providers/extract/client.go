// Package extract wraps the fetch/extract provider: webpage text
// extraction (static or rendered) and raw document ingestion.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// Mode selects the extraction strategy
type Mode string

const (
	// ModeStatic fetches the page and strips boilerplate from the raw HTML
	ModeStatic Mode = "static"
	// ModeRendered drives a headless browser before extracting, for pages
	// that only produce content after script execution
	ModeRendered Mode = "rendered"
)

// DocKind identifies the format of an uploaded document
type DocKind string

const (
	DocKindPDF  DocKind = "pdf"
	DocKindText DocKind = "text"
)

// Config holds configuration for the extraction client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client handles communication with the extraction provider
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new extraction client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

type extractRequest struct {
	URL  string `json:"url"`
	Mode Mode   `json:"mode"`
}

type extractResponse struct {
	Text string `json:"text"`
}

type ingestRequest struct {
	Content string  `json:"content"` // base64
	Kind    DocKind `json:"kind"`
}

// Extract fetches a URL and returns its main text content
func (c *Client) Extract(ctx context.Context, pageURL string, mode Mode) (string, error) {
	if pageURL == "" {
		return "", apperrors.ValidationError("url", "cannot be empty")
	}

	var parsed extractResponse
	if err := c.post(ctx, "/extract", extractRequest{URL: pageURL, Mode: mode}, &parsed); err != nil {
		return "", err
	}
	return parsed.Text, nil
}

// Ingest converts an uploaded document (PDF or plain text) into text
func (c *Client) Ingest(ctx context.Context, content []byte, kind DocKind) (string, error) {
	if len(content) == 0 {
		return "", apperrors.ValidationError("content", "cannot be empty")
	}

	var parsed extractResponse
	req := ingestRequest{Content: base64.StdEncoding.EncodeToString(content), Kind: kind}
	if err := c.post(ctx, "/ingest", req, &parsed); err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.ErrCodeExtractionFailed {
			return "", apperrors.Wrap(appErr, apperrors.ErrCodeIngestionFailed, "document ingestion failed")
		}
		return "", err
	}
	return parsed.Text, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.ExternalServiceError("extract", err).Transient()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] Extraction provider returned status %d for %s", resp.StatusCode, path)
		appErr := apperrors.Newf(apperrors.ErrCodeExtractionFailed, "extraction provider returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return appErr.Transient()
		}
		return appErr.Permanent()
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExtractionFailed, "decoding extraction response").Permanent()
	}
	return nil
}
