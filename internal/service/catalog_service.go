package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockingest/internal/domain"
	"stockingest/internal/matcher"
	"stockingest/internal/port"
)

// CreateProductInput is the DTO for adding a catalog product by hand.
type CreateProductInput struct {
	EstablishmentID uuid.UUID
	Name            string
	CostPrice       decimal.Decimal
	SalePrice       decimal.Decimal
	Unit            string
	Barcode         *string
	SKU             *string
	Category        *string
}

// CreateSupplierInput is the DTO for registering a supplier.
type CreateSupplierInput struct {
	EstablishmentID uuid.UUID
	Name            string
	BusinessName    string
	TaxID           string
	Email           string
	Phone           string
	Address         string
	ContactName     string
}

// CatalogService exposes the products, suppliers and stock movements the
// review step associates invoice lines with.
type CatalogService interface {
	ListProducts(ctx context.Context, establishmentID uuid.UUID, search string, offset, limit int) ([]domain.Product, int, error)
	GetProduct(ctx context.Context, establishmentID, productID uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	ListSuppliers(ctx context.Context, establishmentID uuid.UUID, activeOnly bool) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, establishmentID, supplierID uuid.UUID) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, input CreateSupplierInput) (*domain.Supplier, error)
	ListStockMovements(ctx context.Context, establishmentID, productID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error)
}

type catalogService struct {
	productRepo  port.ProductRepository
	supplierRepo port.SupplierRepository
	movementRepo port.StockMovementRepository
}

// NewCatalogService creates a new CatalogService implementation.
func NewCatalogService(
	productRepo port.ProductRepository,
	supplierRepo port.SupplierRepository,
	movementRepo port.StockMovementRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		movementRepo: movementRepo,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, establishmentID uuid.UUID, search string, offset, limit int) ([]domain.Product, int, error) {
	return s.productRepo.List(ctx, establishmentID, strings.TrimSpace(search), offset, limit)
}

func (s *catalogService) GetProduct(ctx context.Context, establishmentID, productID uuid.UUID) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, establishmentID, productID)
}

func (s *catalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidProduct)
	}
	if input.CostPrice.IsNegative() || input.SalePrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices must not be negative", domain.ErrInvalidProduct)
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = domain.DefaultProductUnit
	}

	p := &domain.Product{
		EstablishmentID: input.EstablishmentID,
		Name:            name,
		CostPrice:       input.CostPrice,
		SalePrice:       input.SalePrice,
		CurrentStock:    decimal.Zero,
		Unit:            unit,
		Barcode:         input.Barcode,
		SKU:             input.SKU,
		Category:        input.Category,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	log.Printf("catalogService.CreateProduct: product %s (%s) created for establishment %s", p.ID, p.Name, p.EstablishmentID)
	return p, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context, establishmentID uuid.UUID, activeOnly bool) ([]domain.Supplier, error) {
	return s.supplierRepo.ListAll(ctx, establishmentID, activeOnly)
}

func (s *catalogService) GetSupplier(ctx context.Context, establishmentID, supplierID uuid.UUID) (*domain.Supplier, error) {
	return s.supplierRepo.GetByID(ctx, establishmentID, supplierID)
}

func (s *catalogService) CreateSupplier(ctx context.Context, input CreateSupplierInput) (*domain.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidSupplier)
	}

	// Tax ids are stored normalized so that "30-12345678-9" and
	// "30123456789" collide.
	taxID := matcher.NormalizeTaxID(input.TaxID)
	if taxID != "" {
		existing, err := s.supplierRepo.ListAll(ctx, input.EstablishmentID, false)
		if err != nil {
			return nil, fmt.Errorf("checking tax id: %w", err)
		}
		for i := range existing {
			if matcher.NormalizeTaxID(existing[i].TaxID) == taxID {
				return nil, domain.ErrDuplicateTaxID
			}
		}
	}

	sup := &domain.Supplier{
		EstablishmentID: input.EstablishmentID,
		Name:            name,
		BusinessName:    strings.TrimSpace(input.BusinessName),
		TaxID:           taxID,
		Email:           strings.TrimSpace(input.Email),
		Phone:           strings.TrimSpace(input.Phone),
		Address:         strings.TrimSpace(input.Address),
		ContactName:     strings.TrimSpace(input.ContactName),
		IsActive:        true,
	}
	if err := s.supplierRepo.Create(ctx, sup); err != nil {
		return nil, err
	}
	log.Printf("catalogService.CreateSupplier: supplier %s (%s) created for establishment %s", sup.ID, sup.Name, sup.EstablishmentID)
	return sup, nil
}

func (s *catalogService) ListStockMovements(ctx context.Context, establishmentID, productID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error) {
	if _, err := s.productRepo.GetByID(ctx, establishmentID, productID); err != nil {
		return nil, 0, err
	}
	return s.movementRepo.ListByProduct(ctx, establishmentID, productID, offset, limit)
}
