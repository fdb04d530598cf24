// Package gemini reads invoices with Google's Gemini generateContent API.
package gemini

import (
	"context"
	"fmt"

	"stockingest/internal/config"
	"stockingest/internal/extractor"
	"stockingest/internal/port"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.0-flash"
)

// Extractor implements port.InvoiceExtractor on Gemini.
type Extractor struct {
	api *extractor.ProviderAPI
}

// NewExtractor creates a Gemini extractor; the endpoint is derived from the model.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return NewExtractorWithEndpoint(cfg, "")
}

// NewExtractorWithEndpoint points the extractor at another endpoint, e.g. a test server.
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	api := extractor.NewProviderAPI("gemini", cfg, defaultModel)
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, api.Model)
	}
	api.Endpoint = endpoint
	api.Header.Set("x-goog-api-key", cfg.APIKey)
	return &Extractor{api: api}
}

// Factory adapts NewExtractor to extractor.ProviderFactory.
func Factory(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
	if err := extractor.RequireAPIKey("gemini", cfg); err != nil {
		return nil, err
	}
	return NewExtractor(cfg), nil
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	InlineData *inlineData `json:"inline_data,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
	MaxOutputTokens  int    `json:"maxOutputTokens"`
}

type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	file, err := extractor.Inline(input)
	if err != nil {
		return nil, err
	}

	req := request{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: file.MediaType, Data: file.Data}},
				{Text: extractor.InvoicePrompt},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			MaxOutputTokens:  extractor.MaxOutputTokens,
		},
	}

	var resp response
	if err := e.api.Post(ctx, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: empty response from API: no candidates")
	}

	cand := resp.Candidates[0]
	var text string
	if len(cand.Content.Parts) > 0 {
		text = cand.Content.Parts[0].Text
	}
	return e.api.Answer(text, cand.FinishReason, cand.FinishReason == "MAX_TOKENS")
}
