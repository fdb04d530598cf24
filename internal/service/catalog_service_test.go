package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockingest/internal/domain"
	"stockingest/internal/service"
	"stockingest/mocks"
)

func setupCatalogService() (service.CatalogService, *mocks.MockProductRepo, *mocks.MockSupplierRepo, *mocks.MockStockMovementRepo) {
	productRepo := new(mocks.MockProductRepo)
	supplierRepo := new(mocks.MockSupplierRepo)
	movementRepo := new(mocks.MockStockMovementRepo)
	svc := service.NewCatalogService(productRepo, supplierRepo, movementRepo)
	return svc, productRepo, supplierRepo, movementRepo
}

func TestCatalogService_CreateProduct_DefaultsUnit(t *testing.T) {
	svc, productRepo, _, _ := setupCatalogService()
	estID := uuid.New()

	productRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Raqueta Head" && p.Unit == domain.DefaultProductUnit && p.CurrentStock.IsZero()
	})).Return(nil)

	p, err := svc.CreateProduct(context.Background(), service.CreateProductInput{
		EstablishmentID: estID,
		Name:            "  Raqueta Head ",
		CostPrice:       decimal.NewFromInt(50000),
		SalePrice:       decimal.NewFromInt(65000),
	})

	require.NoError(t, err)
	assert.Equal(t, estID, p.EstablishmentID)
	productRepo.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input service.CreateProductInput
	}{
		{"empty name", service.CreateProductInput{Name: "  "}},
		{"negative cost", service.CreateProductInput{Name: "Grip", CostPrice: decimal.NewFromInt(-1)}},
		{"negative sale price", service.CreateProductInput{Name: "Grip", SalePrice: decimal.NewFromInt(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, productRepo, _, _ := setupCatalogService()

			_, err := svc.CreateProduct(context.Background(), tt.input)

			assert.ErrorIs(t, err, domain.ErrInvalidProduct)
			productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCatalogService_CreateSupplier_NormalizesTaxID(t *testing.T) {
	svc, _, supplierRepo, _ := setupCatalogService()
	estID := uuid.New()

	supplierRepo.On("ListAll", mock.Anything, estID, false).Return([]domain.Supplier{
		{ID: uuid.New(), Name: "Otro", TaxID: "20111111112"},
	}, nil)
	supplierRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Supplier) bool {
		return s.TaxID == "30123456789" && s.IsActive && s.Name == "Deportes Sur"
	})).Return(nil)

	sup, err := svc.CreateSupplier(context.Background(), service.CreateSupplierInput{
		EstablishmentID: estID,
		Name:            "Deportes Sur",
		TaxID:           "30-12345678-9",
	})

	require.NoError(t, err)
	assert.Equal(t, "30123456789", sup.TaxID)
	supplierRepo.AssertExpectations(t)
}

func TestCatalogService_CreateSupplier_DuplicateTaxID(t *testing.T) {
	svc, _, supplierRepo, _ := setupCatalogService()
	estID := uuid.New()

	supplierRepo.On("ListAll", mock.Anything, estID, false).Return([]domain.Supplier{
		{ID: uuid.New(), Name: "Deportes Sur", TaxID: "30123456789", IsActive: false},
	}, nil)

	_, err := svc.CreateSupplier(context.Background(), service.CreateSupplierInput{
		EstablishmentID: estID,
		Name:            "Deportes Sur SRL",
		TaxID:           "30.12345678.9",
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateTaxID)
	supplierRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateSupplier_WithoutTaxIDSkipsDuplicateCheck(t *testing.T) {
	svc, _, supplierRepo, _ := setupCatalogService()
	supplierRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateSupplier(context.Background(), service.CreateSupplierInput{EstablishmentID: uuid.New(), Name: "Kiosco"})

	require.NoError(t, err)
	supplierRepo.AssertNotCalled(t, "ListAll", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_CreateSupplier_RequiresName(t *testing.T) {
	svc, _, _, _ := setupCatalogService()

	_, err := svc.CreateSupplier(context.Background(), service.CreateSupplierInput{TaxID: "30123456789"})

	assert.ErrorIs(t, err, domain.ErrInvalidSupplier)
}

func TestCatalogService_ListProducts_TrimsSearch(t *testing.T) {
	svc, productRepo, _, _ := setupCatalogService()
	estID := uuid.New()
	productRepo.On("List", mock.Anything, estID, "pelota", 0, 20).Return([]domain.Product{{Name: "Pelota Penn"}}, 1, nil)

	products, total, err := svc.ListProducts(context.Background(), estID, "  pelota ", 0, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, products, 1)
}

func TestCatalogService_ListStockMovements(t *testing.T) {
	svc, productRepo, _, movementRepo := setupCatalogService()
	estID, productID := uuid.New(), uuid.New()
	productRepo.On("GetByID", mock.Anything, estID, productID).Return(&domain.Product{ID: productID}, nil)
	movementRepo.On("ListByProduct", mock.Anything, estID, productID, 0, 20).
		Return([]domain.StockMovement{{ProductID: productID, Type: domain.MovementEntrada}}, 1, nil)

	movements, total, err := svc.ListStockMovements(context.Background(), estID, productID, 0, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, domain.MovementEntrada, movements[0].Type)
}

func TestCatalogService_ListStockMovements_UnknownProduct(t *testing.T) {
	svc, productRepo, _, movementRepo := setupCatalogService()
	estID, productID := uuid.New(), uuid.New()
	productRepo.On("GetByID", mock.Anything, estID, productID).Return(nil, domain.ErrProductNotFound)

	_, _, err := svc.ListStockMovements(context.Background(), estID, productID, 0, 20)

	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	movementRepo.AssertNotCalled(t, "ListByProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
