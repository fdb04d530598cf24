package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OCRVendor identifies the issuer of an extracted invoice.
type OCRVendor struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
}

// OCRInvoice holds the header fields of an extracted invoice.
type OCRInvoice struct {
	Number   string `json:"number"`
	Date     string `json:"date"`
	Letter   string `json:"letter"`
	Currency string `json:"currency"`
}

// OCRTotals holds the totals printed on an extracted invoice.
type OCRTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// OCRLineItem is one raw row as read from the invoice.
type OCRLineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// OCRData is the structured extraction result. It seeds an ingestion once and
// is not modified afterwards.
type OCRData struct {
	Vendor    OCRVendor     `json:"vendor"`
	Invoice   OCRInvoice    `json:"invoice"`
	Totals    OCRTotals     `json:"totals"`
	LineItems []OCRLineItem `json:"line_items"`
}

// InvoiceMeta is the editable invoice header used when committing.
type InvoiceMeta struct {
	Number   string          `json:"number"`
	Date     string          `json:"date"`
	OCRTotal decimal.Decimal `json:"ocr_total"`
}

// SupplierAssociation is the supplier selected for an ingestion.
type SupplierAssociation struct {
	SupplierID *uuid.UUID `json:"supplier_id"`
	Name       string     `json:"name"`
	TaxID      string     `json:"tax_id"`
	Confidence float64    `json:"confidence"`
	MatchType  MatchType  `json:"match_type"`
}

// Status reports whether the association came from resolution or a user choice.
func (a *SupplierAssociation) Status() SupplierStatus {
	switch {
	case a == nil || a.SupplierID == nil:
		return SupplierUnmatched
	case a.MatchType == MatchManual:
		return SupplierSelected
	default:
		return SupplierMatched
	}
}

// LineItem is one reconcilable row of an ingestion.
// Exactly one of: ProductID set, IsNewProduct, or neither (unassociated).
type LineItem struct {
	ID              uuid.UUID       `json:"id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Total           decimal.Decimal `json:"total"`
	ProductID       *uuid.UUID      `json:"product_id"`
	ProductName     string          `json:"product_name"`
	MatchConfidence float64         `json:"match_confidence"`
	MatchType       MatchType       `json:"match_type"`
	IsNewProduct    bool            `json:"is_new_product"`
	IsManual        bool            `json:"is_manual"`
}

// State returns the association state of the item.
func (li *LineItem) State() AssociationState {
	switch {
	case li.ProductID != nil:
		return AssociationMatched
	case li.IsNewProduct:
		return AssociationNewProduct
	default:
		return AssociationUnassociated
	}
}

// CommitTask is one ordered side effect of a commit.
type CommitTask struct {
	Kind           TaskKind   `json:"kind"`
	LineItemID     uuid.UUID  `json:"line_item_id"`
	IdempotencyKey string     `json:"idempotency_key"`
	Status         TaskStatus `json:"status"`
	ResultID       *uuid.UUID `json:"result_id,omitempty"`
	Error          string     `json:"error,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Ingestion is the persisted state of one invoice-to-stock workflow.
type Ingestion struct {
	ID              uuid.UUID            `json:"id"`
	EstablishmentID uuid.UUID            `json:"establishment_id"`
	CreatedBy       uuid.UUID            `json:"created_by"`
	Step            IngestionStep        `json:"step"`
	ImageBucket     string               `json:"-"`
	ImageKey        string               `json:"-"`
	ImageName       string               `json:"image_name"`
	ContentType     string               `json:"content_type"`
	OCR             *OCRData             `json:"ocr"`
	OCRConfidence   float64              `json:"ocr_confidence"`
	OCRModel        string               `json:"ocr_model"`
	Warnings        []string             `json:"warnings"`
	Invoice         InvoiceMeta          `json:"invoice"`
	Supplier        *SupplierAssociation `json:"supplier"`
	LineItems       []LineItem           `json:"line_items"`
	Tasks           []CommitTask         `json:"tasks"`
	LastError       string               `json:"last_error"`
	ProcessedCount  int                  `json:"processed_count"`
	Version         int                  `json:"version"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	CommittedAt     *time.Time           `json:"committed_at"`
}

// HasCommitProgress reports whether any commit task has already taken effect.
func (i *Ingestion) HasCommitProgress() bool {
	for idx := range i.Tasks {
		if i.Tasks[idx].Status == TaskSucceeded {
			return true
		}
	}
	return false
}

// ClearWorkflow drops everything produced after the upload step, including
// the stored image reference.
func (i *Ingestion) ClearWorkflow() {
	i.Step = StepUpload
	i.ImageBucket = ""
	i.ImageKey = ""
	i.ImageName = ""
	i.ContentType = ""
	i.OCR = nil
	i.OCRConfidence = 0
	i.OCRModel = ""
	i.Warnings = nil
	i.Invoice = InvoiceMeta{}
	i.Supplier = nil
	i.LineItems = nil
	i.Tasks = nil
	i.LastError = ""
	i.ProcessedCount = 0
	i.CommittedAt = nil
}
