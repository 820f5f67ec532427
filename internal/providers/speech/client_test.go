package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/podforge/podforge-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL:           server.URL,
		APIKey:            "test-key",
		RequestsPerMinute: 6000,
		BurstSize:         100,
	})
	return client, server
}

func TestSynthesizeSuccess(t *testing.T) {
	wantAudio := []byte("RIFFfake-wav-bytes")

	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/synthesize", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req synthesizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello there", req.Text)
		assert.Equal(t, "voice-1", req.VoiceID)

		json.NewEncoder(w).Encode(synthesizeResponse{
			Audio: base64.StdEncoding.EncodeToString(wantAudio),
		})
	})
	defer server.Close()

	audio, err := client.Synthesize(context.Background(), "hello there", "voice-1")
	require.NoError(t, err)
	assert.Equal(t, wantAudio, audio)
}

func TestSynthesizeInvalidVoiceIsPermanent(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Code: "invalid_voice", Message: "no such voice"})
	})
	defer server.Close()

	_, err := client.Synthesize(context.Background(), "hello", "voice-bogus")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidVoice, apperrors.GetCode(err))
	assert.False(t, apperrors.IsTransient(err))
}

func TestSynthesizeRateLimitIsTransient(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := client.Synthesize(context.Background(), "hello", "voice-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
}

func TestSynthesizeServerErrorIsTransient(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := client.Synthesize(context.Background(), "hello", "voice-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
	assert.Equal(t, apperrors.ErrCodeSynthesisUnavailable, apperrors.GetCode(err))
}

func TestSynthesizeRejectsEmptyInput(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})

	_, err := client.Synthesize(context.Background(), "", "voice-1")
	assert.Error(t, err)

	_, err = client.Synthesize(context.Background(), "hello", "")
	assert.Equal(t, apperrors.ErrCodeInvalidVoice, apperrors.GetCode(err))
}
