package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stockingest/internal/config"
	"stockingest/internal/port"
)

const (
	defaultTimeout   = 120 * time.Second
	maxResponseBytes = 8 << 20
	// MaxOutputTokens bounds every provider answer.
	MaxOutputTokens = 8192
)

// ProviderAPI is the JSON-over-HTTP plumbing shared by the LLM providers.
// Each provider builds its own payload and reads its own answer shape.
type ProviderAPI struct {
	Name     string
	Model    string
	Endpoint string
	Header   http.Header
	client   *http.Client
}

// NewProviderAPI resolves model and timeout from cfg. Endpoint and Header
// are filled in by the provider.
func NewProviderAPI(name string, cfg *config.ExtractorProviderConfig, defaultModel string) *ProviderAPI {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ProviderAPI{
		Name:   name,
		Model:  model,
		Header: http.Header{},
		client: &http.Client{Timeout: timeout},
	}
}

// RequireAPIKey is the common check of the provider factories.
func RequireAPIKey(name string, cfg *config.ExtractorProviderConfig) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("%s: api key is required", name)
	}
	return nil
}

// Post sends payload and decodes a 200 answer into out. 429 and 529 answers
// become a RateLimitError; other statuses a StatusError.
func (p *ProviderAPI) Post(ctx context.Context, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshaling request: %w", p.Name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", p.Name, err)
	}
	req.Header = p.Header.Clone()
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s API: %w", p.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", p.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Provider: p.Name, Status: resp.StatusCode, Body: Truncate(string(raw), 500)}
		if isRetryableStatus(resp.StatusCode) {
			return NewRateLimitError(p.Name, statusErr, RetryAfter(resp.Header.Get("Retry-After"), time.Now()))
		}
		return statusErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: unmarshaling response: %w", p.Name, err)
	}
	return nil
}

// Answer decodes the model's text. stopReason is the provider's own value
// and truncated tells whether it means the token limit was hit.
func (p *ProviderAPI) Answer(text, stopReason string, truncated bool) (*port.ExtractOutput, error) {
	if truncated {
		return nil, fmt.Errorf("%s: output truncated (%s): response exceeded output token limit", p.Name, stopReason)
	}
	if text == "" {
		return nil, fmt.Errorf("%s: empty response from API", p.Name)
	}
	return DecodeResult(text, p.Model)
}

// InlineFile is an invoice file ready to embed in a provider request.
type InlineFile struct {
	MediaType string
	Data      string
	IsPDF     bool
}

// DataURI renders the file as a data: URI.
func (f InlineFile) DataURI() string {
	return "data:" + f.MediaType + ";base64," + f.Data
}

// Inline base64-encodes the input, accepting only PDF, JPEG and PNG.
func Inline(input port.ExtractInput) (InlineFile, error) {
	switch input.ContentType {
	case "application/pdf", "image/jpeg", "image/png":
	default:
		return InlineFile{}, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
	}
	return InlineFile{
		MediaType: input.ContentType,
		Data:      base64.StdEncoding.EncodeToString(input.FileBytes),
		IsPDF:     input.ContentType == "application/pdf",
	}, nil
}
