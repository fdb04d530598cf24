package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"stockingest/internal/domain"
)

// MockIngestionRepo is a mock implementation of port.IngestionRepository.
type MockIngestionRepo struct {
	mock.Mock
}

func (m *MockIngestionRepo) Create(ctx context.Context, ing *domain.Ingestion) error {
	args := m.Called(ctx, ing)
	return args.Error(0)
}

func (m *MockIngestionRepo) GetByID(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	args := m.Called(ctx, establishmentID, ingestionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ingestion), args.Error(1)
}

func (m *MockIngestionRepo) List(ctx context.Context, establishmentID uuid.UUID, offset, limit int) ([]domain.Ingestion, int, error) {
	args := m.Called(ctx, establishmentID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Ingestion), args.Int(1), args.Error(2)
}

func (m *MockIngestionRepo) Update(ctx context.Context, ing *domain.Ingestion) error {
	args := m.Called(ctx, ing)
	return args.Error(0)
}
