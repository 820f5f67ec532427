// Package speech wraps the TTS provider. Requests are rate limited
// client-side so the synthesis pool cannot exceed the provider's quota
// however many workers are in flight.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// Config holds configuration for the speech synthesis client
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	BurstSize         int
}

// Client handles communication with the TTS provider
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
}

// NewClient creates a new speech synthesis client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 120
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 5
	}

	limiter := rate.NewLimiter(
		rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)),
		cfg.BurstSize,
	)

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: limiter,
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
	Format  string `json:"format"`
}

type synthesizeResponse struct {
	Audio string `json:"audio"` // base64 WAV
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Synthesize renders one utterance with the given voice and returns WAV bytes
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "" {
		return nil, apperrors.ValidationError("text", "cannot be empty")
	}
	if voiceID == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidVoice, "voice id cannot be empty").Permanent()
	}

	// Wait blocks until the limiter grants a slot or the context expires
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAPITimeout, "rate limiter wait cancelled").Transient()
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, VoiceID: voiceID, Format: "wav"})
	if err != nil {
		return nil, fmt.Errorf("encoding synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ExternalServiceError("speech", err).Transient()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyError(resp)
	}

	var parsed synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSynthesisUnavailable, "decoding synthesis response").Permanent()
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.Audio)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSynthesisUnavailable, "decoding audio payload").Permanent()
	}
	if len(audio) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeSynthesisUnavailable, "provider returned empty audio").Permanent()
	}

	return audio, nil
}

// classifyError maps provider failures onto the transient/permanent split
// the coordinator's retry policy depends on
func (c *Client) classifyError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var detail errorResponse
	_ = json.Unmarshal(raw, &detail)

	switch {
	case detail.Code == "invalid_voice":
		return apperrors.Newf(apperrors.ErrCodeInvalidVoice, "voice rejected: %s", detail.Message).Permanent()
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.RateLimitError("speech")
	case resp.StatusCode >= 500:
		log.Printf("[ERROR] Speech provider returned status %d: %s", resp.StatusCode, detail.Message)
		return apperrors.Newf(apperrors.ErrCodeSynthesisUnavailable, "speech provider returned status %d", resp.StatusCode).Transient()
	default:
		return apperrors.Newf(apperrors.ErrCodeSynthesisUnavailable, "speech provider returned status %d: %s", resp.StatusCode, detail.Message).Permanent()
	}
}
