package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/domain"
)

func TestIngestionRow_FreshIngestionUsesEmptyArraysAndNulls(t *testing.T) {
	ing := &domain.Ingestion{ID: uuid.New(), EstablishmentID: uuid.New(), Step: domain.StepUpload}

	row, err := toIngestionRow(ing)

	require.NoError(t, err)
	assert.Nil(t, row.OCR)
	assert.Nil(t, row.Supplier)
	assert.JSONEq(t, `[]`, string(row.LineItems))
	assert.JSONEq(t, `[]`, string(row.Tasks))
	assert.JSONEq(t, `[]`, string(row.Warnings))
}

func TestIngestionRow_PreservesReviewState(t *testing.T) {
	supplierID := uuid.New()
	productID := uuid.New()
	ing := &domain.Ingestion{
		ID:              uuid.New(),
		EstablishmentID: uuid.New(),
		Step:            domain.StepReview,
		OCR:             &domain.OCRData{Vendor: domain.OCRVendor{Name: "Distribuidora Norte"}},
		Supplier:        &domain.SupplierAssociation{SupplierID: &supplierID, Name: "Distribuidora Norte", Confidence: 1, MatchType: domain.MatchTaxID},
		LineItems: []domain.LineItem{
			{ID: uuid.New(), Description: "Coca Cola", Quantity: decimal.NewFromInt(12), UnitPrice: decimal.RequireFromString("850.50"), ProductID: &productID},
		},
		Tasks:   []domain.CommitTask{{Kind: domain.TaskCreateMovement, IdempotencyKey: "k", Status: domain.TaskSucceeded}},
		Version: 3,
	}

	row, err := toIngestionRow(ing)
	require.NoError(t, err)
	got, err := row.toDomain()
	require.NoError(t, err)

	assert.Equal(t, domain.StepReview, got.Step)
	require.NotNil(t, got.Supplier)
	assert.Equal(t, supplierID, *got.Supplier.SupplierID)
	assert.Equal(t, domain.SupplierMatched, got.Supplier.Status())
	require.Len(t, got.LineItems, 1)
	assert.True(t, got.LineItems[0].UnitPrice.Equal(decimal.RequireFromString("850.5")))
	assert.Equal(t, productID, *got.LineItems[0].ProductID)
	assert.True(t, got.HasCommitProgress())
	assert.Equal(t, 3, got.Version)
}

func TestStockDelta(t *testing.T) {
	qty := decimal.NewFromInt(5)

	assert.True(t, stockDelta(&domain.StockMovement{Type: domain.MovementEntrada, Quantity: qty}).Equal(qty))
	assert.True(t, stockDelta(&domain.StockMovement{Type: domain.MovementSalida, Quantity: qty}).Equal(qty.Neg()))
	assert.True(t, stockDelta(&domain.StockMovement{Type: domain.MovementAjuste, Quantity: qty.Neg()}).Equal(qty.Neg()))
}
