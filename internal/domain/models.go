package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry of an establishment's stock.
type Product struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	EstablishmentID uuid.UUID       `db:"establishment_id" json:"establishment_id"`
	Name            string          `db:"name" json:"name"`
	CostPrice       decimal.Decimal `db:"cost_price" json:"cost_price"`
	SalePrice       decimal.Decimal `db:"sale_price" json:"sale_price"`
	CurrentStock    decimal.Decimal `db:"current_stock" json:"current_stock"`
	Unit            string          `db:"unit" json:"unit"`
	Barcode         *string         `db:"barcode" json:"barcode,omitempty"`
	SKU             *string         `db:"sku" json:"sku,omitempty"`
	Category        *string         `db:"category" json:"category,omitempty"`
	IdempotencyKey  *string         `db:"idempotency_key" json:"-"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Supplier is a vendor an establishment buys stock from.
type Supplier struct {
	ID              uuid.UUID `db:"id" json:"id"`
	EstablishmentID uuid.UUID `db:"establishment_id" json:"establishment_id"`
	Name            string    `db:"name" json:"name"`
	BusinessName    string    `db:"business_name" json:"business_name"`
	TaxID           string    `db:"tax_id" json:"tax_id"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	Address         string    `db:"address" json:"address"`
	ContactName     string    `db:"contact_name" json:"contact_name"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StockMovement is a persisted change of a product's stock.
type StockMovement struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	EstablishmentID uuid.UUID       `db:"establishment_id" json:"establishment_id"`
	ProductID       uuid.UUID       `db:"product_id" json:"product_id"`
	Type            MovementType    `db:"type" json:"type"`
	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost        decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	Reference       string          `db:"reference" json:"reference"`
	SupplierID      *uuid.UUID      `db:"supplier_id" json:"supplier_id,omitempty"`
	IngestionID     *uuid.UUID      `db:"ingestion_id" json:"ingestion_id,omitempty"`
	Notes           string          `db:"notes" json:"notes"`
	IdempotencyKey  *string         `db:"idempotency_key" json:"-"`
	CreatedBy       uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
