package port

import (
	"context"

	"stockingest/internal/domain"
)

// ExtractInput carries the invoice image handed to an extractor.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
}

// ExtractOutput is the structured invoice read from an image.
type ExtractOutput struct {
	Data       domain.OCRData
	Confidence float64
	Warnings   []string
	ModelUsed  string
}

// InvoiceExtractor abstracts OCR/LLM extraction of supplier invoices.
type InvoiceExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
