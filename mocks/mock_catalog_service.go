package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"stockingest/internal/domain"
	"stockingest/internal/service"
)

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, establishmentID uuid.UUID, search string, offset, limit int) ([]domain.Product, int, error) {
	args := m.Called(ctx, establishmentID, search, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, establishmentID, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, establishmentID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, input service.CreateProductInput) (*domain.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogService) ListSuppliers(ctx context.Context, establishmentID uuid.UUID, activeOnly bool) ([]domain.Supplier, error) {
	args := m.Called(ctx, establishmentID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Supplier), args.Error(1)
}

func (m *MockCatalogService) GetSupplier(ctx context.Context, establishmentID, supplierID uuid.UUID) (*domain.Supplier, error) {
	args := m.Called(ctx, establishmentID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Supplier), args.Error(1)
}

func (m *MockCatalogService) CreateSupplier(ctx context.Context, input service.CreateSupplierInput) (*domain.Supplier, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Supplier), args.Error(1)
}

func (m *MockCatalogService) ListStockMovements(ctx context.Context, establishmentID, productID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error) {
	args := m.Called(ctx, establishmentID, productID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StockMovement), args.Int(1), args.Error(2)
}
