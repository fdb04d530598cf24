package extractor

import (
	"context"
	"log"

	"stockingest/internal/imageprep"
	"stockingest/internal/port"
)

// PreparingExtractor enhances images before handing them to the wrapped extractor.
type PreparingExtractor struct {
	next port.InvoiceExtractor
	opts imageprep.Options
}

// WithImagePreparation wraps next so that photos are oriented, resized and
// enhanced before extraction.
func WithImagePreparation(next port.InvoiceExtractor, opts imageprep.Options) *PreparingExtractor {
	return &PreparingExtractor{next: next, opts: opts}
}

func (p *PreparingExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	data, contentType, err := imageprep.Prepare(input.FileBytes, input.ContentType, p.opts)
	if err != nil {
		// The provider may still cope with the original bytes.
		log.Printf("extractor.PreparingExtractor: image preparation failed, sending original: %v", err)
		return p.next.Extract(ctx, input)
	}
	return p.next.Extract(ctx, port.ExtractInput{FileBytes: data, ContentType: contentType})
}
