// Package objectstore wraps the durable storage provider used to publish
// finished artifacts.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// Config holds configuration for the object store client
type Config struct {
	BaseURL   string
	PublicURL string
	APIKey    string
	Bucket    string
	Timeout   time.Duration
}

// Client handles uploads to the object store
type Client struct {
	httpClient *http.Client
	baseURL    string
	publicURL  string
	apiKey     string
	bucket     string
}

// NewClient creates a new object store client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = cfg.BaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
		apiKey:     cfg.APIKey,
		bucket:     cfg.Bucket,
	}
}

// Upload stores an object under the given key and returns its public URL.
// Re-uploading the same key overwrites; the returned URL is stable per key.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", apperrors.ValidationError("key", "cannot be empty")
	}
	if len(data) == 0 {
		return "", apperrors.ValidationError("data", "cannot be empty")
	}

	objectURL := fmt.Sprintf("%s/%s/%s", c.baseURL, c.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, objectURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.UploadFailed(err).Transient()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[ERROR] Object store returned status %d for key %s", resp.StatusCode, key)
		appErr := apperrors.Newf(apperrors.ErrCodeUploadFailed, "object store returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", appErr.Transient()
		}
		return "", appErr.Permanent()
	}

	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucket, key), nil
}
