// Package claude reads invoices with the Anthropic Messages API.
package claude

import (
	"context"

	"stockingest/internal/config"
	"stockingest/internal/extractor"
	"stockingest/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
)

// Extractor implements port.InvoiceExtractor on Claude.
type Extractor struct {
	api *extractor.ProviderAPI
}

// NewExtractor creates a Claude extractor from a provider config.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return NewExtractorWithEndpoint(cfg, apiURL)
}

// NewExtractorWithEndpoint points the extractor at another endpoint, e.g. a test server.
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	api := extractor.NewProviderAPI("claude", cfg, defaultModel)
	api.Endpoint = endpoint
	api.Header.Set("x-api-key", cfg.APIKey)
	api.Header.Set("anthropic-version", apiVersion)
	return &Extractor{api: api}
}

// Factory adapts NewExtractor to extractor.ProviderFactory.
func Factory(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
	if err := extractor.RequireAPIKey("claude", cfg); err != nil {
		return nil, err
	}
	return NewExtractor(cfg), nil
}

type source struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type block struct {
	Type   string  `json:"type"`
	Source *source `json:"source,omitempty"`
	Text   string  `json:"text,omitempty"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	file, err := extractor.Inline(input)
	if err != nil {
		return nil, err
	}
	// PDFs go in a document block, photos in an image block.
	kind := "image"
	if file.IsPDF {
		kind = "document"
	}

	req := request{
		Model:     e.api.Model,
		MaxTokens: extractor.MaxOutputTokens,
		Messages: []message{{
			Role: "user",
			Content: []block{
				{Type: kind, Source: &source{Type: "base64", MediaType: file.MediaType, Data: file.Data}},
				{Type: "text", Text: extractor.InvoicePrompt},
			},
		}},
	}

	var resp response
	if err := e.api.Post(ctx, req, &resp); err != nil {
		return nil, err
	}

	var text string
	for _, c := range resp.Content {
		if c.Type == "text" {
			text = c.Text
			break
		}
	}
	return e.api.Answer(text, resp.StopReason, resp.StopReason == "max_tokens")
}
