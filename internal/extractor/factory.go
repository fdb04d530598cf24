package extractor

import (
	"fmt"

	"stockingest/internal/config"
	"stockingest/internal/port"
)

// ProviderFactory creates an InvoiceExtractor from a provider config.
type ProviderFactory func(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error)

var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// New creates an InvoiceExtractor from a provider config using the registered factory.
func New(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extractor provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds the configured primary extractor, wrapped in a
// FallbackExtractor when secondary or tertiary providers are configured.
func NewChain(cfg *config.ExtractorConfig) (port.InvoiceExtractor, error) {
	tiers := []*config.ExtractorProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()}

	var chain []port.InvoiceExtractor
	var names []string
	for _, tier := range tiers {
		if tier == nil {
			continue
		}
		ex, err := New(tier)
		if err != nil {
			return nil, err
		}
		chain = append(chain, ex)
		names = append(names, tier.Provider)
	}

	if len(chain) == 1 {
		return chain[0], nil
	}
	return NewFallbackExtractor(chain, names), nil
}
