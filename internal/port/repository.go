package port

import (
	"context"

	"github.com/google/uuid"

	"stockingest/internal/domain"
)

// ProductRepository defines the contract for catalog product persistence.
// All methods are scoped by establishment.
type ProductRepository interface {
	// Create inserts the product. When IdempotencyKey is set and a product with
	// the same key already exists, that product is loaded into p instead.
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, establishmentID, productID uuid.UUID) (*domain.Product, error)
	ListAll(ctx context.Context, establishmentID uuid.UUID) ([]domain.Product, error)
	List(ctx context.Context, establishmentID uuid.UUID, search string, offset, limit int) ([]domain.Product, int, error)
}

// SupplierRepository defines the contract for supplier persistence.
type SupplierRepository interface {
	Create(ctx context.Context, s *domain.Supplier) error
	GetByID(ctx context.Context, establishmentID, supplierID uuid.UUID) (*domain.Supplier, error)
	ListAll(ctx context.Context, establishmentID uuid.UUID, activeOnly bool) ([]domain.Supplier, error)
}

// StockMovementRepository defines the contract for stock movement persistence.
type StockMovementRepository interface {
	// Create inserts the movement and applies it to the product's current stock
	// atomically. A repeated IdempotencyKey returns the existing movement.
	Create(ctx context.Context, m *domain.StockMovement) error
	ListByProduct(ctx context.Context, establishmentID, productID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error)
	ListByIngestion(ctx context.Context, establishmentID, ingestionID uuid.UUID) ([]domain.StockMovement, error)
}

// IngestionRepository persists in-progress ingestions.
type IngestionRepository interface {
	Create(ctx context.Context, ing *domain.Ingestion) error
	GetByID(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error)
	List(ctx context.Context, establishmentID uuid.UUID, offset, limit int) ([]domain.Ingestion, int, error)
	// Update saves ing if its stored version still equals ing.Version, then
	// increments ing.Version. A stale version yields domain.ErrConflict.
	Update(ctx context.Context, ing *domain.Ingestion) error
}
