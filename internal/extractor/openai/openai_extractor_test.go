package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/config"
	"stockingest/internal/extractor"
	"stockingest/internal/extractor/openai"
	"stockingest/internal/port"
)

func newTestExtractor(serverURL string) *openai.Extractor {
	return openai.NewExtractorWithEndpoint(&config.ExtractorProviderConfig{
		Provider:     "openai",
		APIKey:       "sk-test",
		DefaultModel: "gpt-4o",
	}, serverURL)
}

func openaiReply(content, finish string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}, "finish_reason": finish},
		},
	}
}

func TestExtract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "json_object", reqBody["response_format"].(map[string]interface{})["type"])
		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		block := msg["content"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "image_url", block["type"])
		url := block["image_url"].(map[string]interface{})["url"].(string)
		assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))

		_ = json.NewEncoder(w).Encode(openaiReply(`{"data":{"vendor":{"name":"Kiosco Central"},"line_items":[{"description":"Alfajor","quantity":24,"unit_price":300,"total":7200}]},"confidence":0.85}`, "stop"))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{FileBytes: []byte{1}, ContentType: "image/jpeg"})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", out.ModelUsed)
	assert.Equal(t, "Kiosco Central", out.Data.Vendor.Name)
	require.Len(t, out.Data.LineItems, 1)
	assert.Equal(t, "7200", out.Data.LineItems[0].Total.String())
}

func TestExtract_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openaiReply(`{"data":`, "length"))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{FileBytes: []byte{1}, ContentType: "image/jpeg"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestExtract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{FileBytes: []byte{1}, ContentType: "image/jpeg"})

	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
}

func TestExtract_InvalidModelJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openaiReply("not json", "stop"))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{FileBytes: []byte{1}, ContentType: "image/jpeg"})

	assert.Error(t, err)
}
