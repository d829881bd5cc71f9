package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental-readiness-workers/internal/common/config"
	"rental-readiness-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.GenAIConfig{
		BaseURL:     url + "/",
		APIKey:      "secret",
		Model:       "rental-coach",
		Timeout:     2000,
		MaxRetries:  0,
		MaxTokens:   800,
		Temperature: 0.7,
	})
}

func TestGenerateText_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Write a cover letter", req.Prompt)
		assert.Equal(t, "rental-coach", req.Model)
		assert.Equal(t, 800, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)

		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  Dear Property Manager,  "})
	}))
	defer srv.Close()

	text, err := newTestClient(srv.URL).GenerateText(context.Background(), "Write a cover letter")
	require.NoError(t, err)
	assert.Equal(t, "Dear Property Manager,", text)
}

func TestGenerateText_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateText(context.Background(), "hi")
	assert.Equal(t, errors.ErrCodeTextGenerationUnavailable, errors.CodeOf(err))
	assert.Equal(t, "AI temporarily unavailable.", errors.Normalize(err).Message)
}

func TestGenerateText_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"   "}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateText(context.Background(), "hi")
	assert.Equal(t, errors.ErrCodeTextGenerationUnavailable, errors.CodeOf(err))
}

func TestGenerateText_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).GenerateText(ctx, "hi")
	assert.Equal(t, errors.ErrCodeTextGenerationTimeout, errors.CodeOf(err))
}

func TestGenerateText_Unreachable(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").GenerateText(context.Background(), "hi")
	assert.Equal(t, errors.ErrCodeTextGenerationUnavailable, errors.CodeOf(err))
}
