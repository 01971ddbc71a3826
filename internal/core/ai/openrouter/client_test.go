package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"menu-recommender/internal/core/ai/provider"
	"menu-recommender/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(&config.OpenRouterConfig{
		APIKey:    "test-key",
		BaseURL:   url,
		Model:     "test/model",
		MaxTokens: 500,
		Timeout:   5 * time.Second,
	})
}

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test/model", req.Model)
		assert.Equal(t, 500, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":" [] "}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", resp.Content)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
}

func TestClient_GenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","code":429}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), &provider.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Contains(t, err.Error(), "429")
}

func TestClient_GenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), &provider.Request{})
	assert.ErrorContains(t, err, "no choices")
}

func TestSanitizeResponse(t *testing.T) {
	body := `{"image":"` + strings.Repeat("QUJD", 100) + `"}`
	assert.Equal(t, `{"image":"[BASE64_DATA_REMOVED]"}`, sanitizeResponse([]byte(body)))
	assert.True(t, strings.HasSuffix(sanitizeResponse([]byte(strings.Repeat("x ", 400))), "...(truncated)"))
}
