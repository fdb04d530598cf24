package extractor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/config"
	"stockingest/internal/extractor"
	"stockingest/internal/port"
)

// stubExtractor is a minimal InvoiceExtractor for testing the factory.
type stubExtractor struct {
	model string
}

func (s *stubExtractor) Extract(_ context.Context, _ port.ExtractInput) (*port.ExtractOutput, error) {
	return &port.ExtractOutput{ModelUsed: s.model}, nil
}

func registerStub() {
	extractor.RegisterProvider("stub", func(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
		return &stubExtractor{model: cfg.DefaultModel}, nil
	})
}

func TestFactory_RegisterAndCreate(t *testing.T) {
	registerStub()

	ex, err := extractor.New(&config.ExtractorProviderConfig{Provider: "stub", DefaultModel: "m1"})

	require.NoError(t, err)
	out, err := ex.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, "m1", out.ModelUsed)
}

func TestFactory_UnknownProvider(t *testing.T) {
	ex, err := extractor.New(&config.ExtractorProviderConfig{Provider: "nonexistent-provider-xyz"})

	assert.Nil(t, ex)
	assert.Contains(t, err.Error(), "unknown extractor provider")
}

func TestNewChain_SingleProviderIsNotWrapped(t *testing.T) {
	registerStub()

	ex, err := extractor.NewChain(&config.ExtractorConfig{Provider: "stub"})

	require.NoError(t, err)
	_, isFallback := ex.(*extractor.FallbackExtractor)
	assert.False(t, isFallback)
}

func TestNewChain_WrapsConfiguredTiers(t *testing.T) {
	registerStub()
	cfg := &config.ExtractorConfig{
		Primary:   config.ExtractorProviderConfig{Provider: "stub", DefaultModel: "first"},
		Secondary: config.ExtractorProviderConfig{Provider: "stub", DefaultModel: "second"},
	}

	ex, err := extractor.NewChain(cfg)

	require.NoError(t, err)
	_, isFallback := ex.(*extractor.FallbackExtractor)
	require.True(t, isFallback)
	out, err := ex.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, "first", out.ModelUsed)
}

func TestNewChain_UnknownSecondary(t *testing.T) {
	registerStub()
	cfg := &config.ExtractorConfig{
		Primary:   config.ExtractorProviderConfig{Provider: "stub"},
		Secondary: config.ExtractorProviderConfig{Provider: "missing"},
	}

	_, err := extractor.NewChain(cfg)

	assert.Error(t, err)
}
