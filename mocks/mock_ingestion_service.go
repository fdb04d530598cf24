package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"stockingest/internal/domain"
	"stockingest/internal/reconcile"
	"stockingest/internal/service"
)

// MockIngestionService is a mock implementation of service.IngestionService.
type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) ingestion(args mock.Arguments) (*domain.Ingestion, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ingestion), args.Error(1)
}

func (m *MockIngestionService) Create(ctx context.Context, establishmentID, userID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, userID))
}

func (m *MockIngestionService) Get(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID))
}

func (m *MockIngestionService) List(ctx context.Context, establishmentID uuid.UUID, offset, limit int) ([]domain.Ingestion, int, error) {
	args := m.Called(ctx, establishmentID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Ingestion), args.Int(1), args.Error(2)
}

func (m *MockIngestionService) ImageURL(ctx context.Context, establishmentID, ingestionID uuid.UUID) (string, error) {
	args := m.Called(ctx, establishmentID, ingestionID)
	return args.String(0), args.Error(1)
}

func (m *MockIngestionService) Movements(ctx context.Context, establishmentID, ingestionID uuid.UUID) ([]domain.StockMovement, error) {
	args := m.Called(ctx, establishmentID, ingestionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockIngestionService) Upload(ctx context.Context, input service.UploadInput) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, input))
}

func (m *MockIngestionService) Reprocess(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID))
}

func (m *MockIngestionService) UpdateInvoice(ctx context.Context, establishmentID, ingestionID uuid.UUID, patch service.InvoicePatch) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID, patch))
}

func (m *MockIngestionService) SelectSupplier(ctx context.Context, establishmentID, ingestionID uuid.UUID, supplierID *uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID, supplierID))
}

func (m *MockIngestionService) ResolveSupplier(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID))
}

func (m *MockIngestionService) AddLineItem(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID))
}

func (m *MockIngestionService) UpdateLineItem(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID, patch reconcile.LineItemPatch) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID, itemID, patch))
}

func (m *MockIngestionService) AssociateProduct(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID, productID *uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID, itemID, productID))
}

func (m *MockIngestionService) MarkAsNewProduct(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID, itemID))
}

func (m *MockIngestionService) RemoveLineItem(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID, itemID))
}

func (m *MockIngestionService) Commit(ctx context.Context, establishmentID, userID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, userID, ingestionID))
}

func (m *MockIngestionService) Reset(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	return m.ingestion(m.Called(ctx, establishmentID, ingestionID))
}
