package handler

import (
	"github.com/shopspring/decimal"

	"stockingest/internal/domain"
	"stockingest/internal/reconcile"
)

// IngestionTotals compares the sum of the line items with the total printed
// on the invoice. The two are not reconciled; the reviewer sees both.
type IngestionTotals struct {
	LineItems decimal.Decimal `json:"line_items"`
	OCR       decimal.Decimal `json:"ocr"`
}

// AssociationCounts summarizes line items by association state.
type AssociationCounts struct {
	Matched      int `json:"matched"`
	NewProduct   int `json:"new_product"`
	Unassociated int `json:"unassociated"`
}

// IngestionView is the API representation of an ingestion.
type IngestionView struct {
	*domain.Ingestion
	SupplierStatus domain.SupplierStatus `json:"supplier_status"`
	Totals         IngestionTotals       `json:"totals"`
	Counts         AssociationCounts     `json:"counts"`
	CanCommit      bool                  `json:"can_commit"`
}

// NewIngestionView derives the summary fields shown next to an ingestion.
func NewIngestionView(ing *domain.Ingestion) IngestionView {
	sheet := reconcile.New(ing.LineItems)
	v := IngestionView{
		Ingestion:      ing,
		SupplierStatus: ing.Supplier.Status(),
		Totals: IngestionTotals{
			LineItems: sheet.Total(),
			OCR:       ing.Invoice.OCRTotal,
		},
	}
	for i := range ing.LineItems {
		switch ing.LineItems[i].State() {
		case domain.AssociationMatched:
			v.Counts.Matched++
		case domain.AssociationNewProduct:
			v.Counts.NewProduct++
		default:
			v.Counts.Unassociated++
		}
	}
	v.CanCommit = ing.Step == domain.StepReview && sheet.Validate() == nil
	return v
}

func newIngestionViews(ings []domain.Ingestion) []IngestionView {
	views := make([]IngestionView, len(ings))
	for i := range ings {
		views[i] = NewIngestionView(&ings[i])
	}
	return views
}
