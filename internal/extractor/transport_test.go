package extractor_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/config"
	"stockingest/internal/extractor"
	"stockingest/internal/port"
)

func newTestAPI(url string) *extractor.ProviderAPI {
	api := extractor.NewProviderAPI("claude", &config.ExtractorProviderConfig{TimeoutSecs: 5}, "default-model")
	api.Endpoint = url
	api.Header.Set("x-api-key", "k")
	return api
}

func TestProviderAPI_PostSendsHeadersAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer server.Close()
	api := newTestAPI(server.URL)

	var out struct {
		Text string `json:"text"`
	}
	err := api.Post(context.Background(), map[string]string{"q": "x"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
	assert.Equal(t, "default-model", api.Model)
}

func TestProviderAPI_OverloadedIsRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"overloaded_error"}`))
	}))
	defer server.Close()

	err := newTestAPI(server.URL).Post(context.Background(), struct{}{}, &struct{}{})

	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, time.Minute, rlErr.RetryAfter)
	var statusErr *extractor.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 529, statusErr.Status)
}

func TestProviderAPI_Answer(t *testing.T) {
	api := extractor.NewProviderAPI("openai", &config.ExtractorProviderConfig{DefaultModel: "gpt-4o"}, "unused")

	_, err := api.Answer(`{"data":`, "length", true)
	assert.ErrorContains(t, err, "truncated (length)")

	_, err = api.Answer("", "stop", false)
	assert.ErrorContains(t, err, "empty response")

	out, err := api.Answer(`{"data":{"line_items":[{"description":"Agua","quantity":1}]},"confidence":0.8}`, "stop", false)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", out.ModelUsed)
}

func TestInline(t *testing.T) {
	f, err := extractor.Inline(port.ExtractInput{FileBytes: []byte("hi"), ContentType: "image/png"})
	require.NoError(t, err)
	assert.False(t, f.IsPDF)
	assert.Equal(t, "data:image/png;base64,aGk=", f.DataURI())

	_, err = extractor.Inline(port.ExtractInput{ContentType: "image/gif"})
	assert.ErrorContains(t, err, "unsupported content type")
}

func TestRequireAPIKey(t *testing.T) {
	assert.Error(t, extractor.RequireAPIKey("gemini", &config.ExtractorProviderConfig{}))
	assert.NoError(t, extractor.RequireAPIKey("gemini", &config.ExtractorProviderConfig{APIKey: "k"}))
}
