package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/podforge/podforge-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "container shipping", req.Query)
		assert.Equal(t, 8, req.Count)

		json.NewEncoder(w).Encode(searchResponse{Results: []Result{
			{URL: "https://example.com/a", Title: "A", Snippet: "first"},
			{URL: "https://example.com/b", Title: "B", Snippet: "second"},
		}})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k"})
	results, err := client.Search(context.Background(), "container shipping", 8)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Provider relevance order is preserved
	assert.Equal(t, "https://example.com/a", results[0].URL)
}

func TestSearchUnavailableIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Search(context.Background(), "anything", 4)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSearchUnavailable, apperrors.GetCode(err))
	assert.True(t, apperrors.IsTransient(err))
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := client.Search(context.Background(), "", 4)
	assert.Error(t, err)
}
