package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/config"
	"stockingest/internal/extractor"
	"stockingest/internal/extractor/claude"
	"stockingest/internal/port"
)

const invoiceJSON = `{"data":{"vendor":{"name":"Distribuidora Norte","tax_id":"30-71111111-1"},"invoice":{"number":"0001-00001234"},"totals":{"total":10200},"line_items":[{"description":"COCA COLA 500 ML","quantity":12,"unit_price":850,"total":10200}]},"confidence":0.9,"warnings":[]}`

func newTestExtractor(serverURL string) *claude.Extractor {
	cfg := &config.ExtractorProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewExtractorWithEndpoint(cfg, serverURL)
}

func TestExtract_Image_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)
		assert.Equal(t, "image", content[0].(map[string]interface{})["type"])
		assert.Equal(t, "text", content[1].(map[string]interface{})["type"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": invoiceJSON}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte{0xff, 0xd8, 0xff},
		ContentType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", out.ModelUsed)
	assert.Equal(t, 0.9, out.Confidence)
	assert.Equal(t, "30-71111111-1", out.Data.Vendor.TaxID)
	require.Len(t, out.Data.LineItems, 1)
	assert.Equal(t, "COCA COLA 500 ML", out.Data.LineItems[0].Description)
}

func TestExtract_PDFUsesDocumentBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		block := msg["content"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "document", block["type"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": invoiceJSON}},
		})
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
	})

	require.NoError(t, err)
}

func TestExtract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limited"}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte{1},
		ContentType: "image/png",
	})

	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 12*time.Second, rlErr.RetryAfter)
}

func TestExtract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte{1},
		ContentType: "image/png",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestExtract_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": `{"data":`}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte{1},
		ContentType: "image/png",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestExtract_UnsupportedContentType(t *testing.T) {
	_, err := newTestExtractor("http://unused").Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte{1},
		ContentType: "image/gif",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestFactory_RequiresAPIKey(t *testing.T) {
	_, err := claude.Factory(&config.ExtractorProviderConfig{Provider: "claude"})
	assert.Error(t, err)
}
