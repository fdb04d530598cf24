// Package openai reads invoices with the OpenAI Chat Completions API.
package openai

import (
	"context"
	"fmt"

	"stockingest/internal/config"
	"stockingest/internal/extractor"
	"stockingest/internal/port"
)

const (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o"
)

// Extractor implements port.InvoiceExtractor on OpenAI.
type Extractor struct {
	api *extractor.ProviderAPI
}

// NewExtractor creates an OpenAI extractor from a provider config.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return NewExtractorWithEndpoint(cfg, apiURL)
}

// NewExtractorWithEndpoint points the extractor at another endpoint, e.g. a test server.
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	api := extractor.NewProviderAPI("openai", cfg, defaultModel)
	api.Endpoint = endpoint
	api.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	return &Extractor{api: api}
}

// Factory adapts NewExtractor to extractor.ProviderFactory.
func Factory(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
	if err := extractor.RequireAPIKey("openai", cfg); err != nil {
		return nil, err
	}
	return NewExtractor(cfg), nil
}

type imageURL struct {
	URL string `json:"url"`
}

type fileData struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
	File     *fileData `json:"file,omitempty"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type request struct {
	Model               string         `json:"model"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
	Messages            []message      `json:"messages"`
	ResponseFormat      responseFormat `json:"response_format"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	file, err := extractor.Inline(input)
	if err != nil {
		return nil, err
	}
	attachment := contentPart{Type: "image_url", ImageURL: &imageURL{URL: file.DataURI()}}
	if file.IsPDF {
		attachment = contentPart{Type: "file", File: &fileData{Filename: "factura.pdf", FileData: file.DataURI()}}
	}

	req := request{
		Model:               e.api.Model,
		MaxCompletionTokens: extractor.MaxOutputTokens,
		Messages: []message{{
			Role:    "user",
			Content: []contentPart{attachment, {Type: "text", Text: extractor.InvoicePrompt}},
		}},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	var resp response
	if err := e.api.Post(ctx, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty response from API: no choices")
	}

	choice := resp.Choices[0]
	return e.api.Answer(choice.Message.Content, choice.FinishReason, choice.FinishReason == "length")
}
