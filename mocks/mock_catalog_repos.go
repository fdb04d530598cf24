package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"stockingest/internal/domain"
)

// MockProductRepo is a mock implementation of port.ProductRepository.
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, establishmentID, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, establishmentID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) ListAll(ctx context.Context, establishmentID uuid.UUID) ([]domain.Product, error) {
	args := m.Called(ctx, establishmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepo) List(ctx context.Context, establishmentID uuid.UUID, search string, offset, limit int) ([]domain.Product, int, error) {
	args := m.Called(ctx, establishmentID, search, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

// MockSupplierRepo is a mock implementation of port.SupplierRepository.
type MockSupplierRepo struct {
	mock.Mock
}

func (m *MockSupplierRepo) Create(ctx context.Context, s *domain.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSupplierRepo) GetByID(ctx context.Context, establishmentID, supplierID uuid.UUID) (*domain.Supplier, error) {
	args := m.Called(ctx, establishmentID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Supplier), args.Error(1)
}

func (m *MockSupplierRepo) ListAll(ctx context.Context, establishmentID uuid.UUID, activeOnly bool) ([]domain.Supplier, error) {
	args := m.Called(ctx, establishmentID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Supplier), args.Error(1)
}

// MockStockMovementRepo is a mock implementation of port.StockMovementRepository.
type MockStockMovementRepo struct {
	mock.Mock
}

func (m *MockStockMovementRepo) Create(ctx context.Context, mv *domain.StockMovement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *MockStockMovementRepo) ListByProduct(ctx context.Context, establishmentID, productID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error) {
	args := m.Called(ctx, establishmentID, productID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StockMovement), args.Int(1), args.Error(2)
}

func (m *MockStockMovementRepo) ListByIngestion(ctx context.Context, establishmentID, ingestionID uuid.UUID) ([]domain.StockMovement, error) {
	args := m.Called(ctx, establishmentID, ingestionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}
