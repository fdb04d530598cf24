package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockingest/internal/domain"
	"stockingest/internal/port"
)

const productColumns = `id, establishment_id, name, cost_price, sale_price, current_stock, unit,
	barcode, sku, category, idempotency_key, created_at, updated_at`

type productRepo struct {
	db *sqlx.DB
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db *sqlx.DB) port.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO products (` + productColumns + `)
		VALUES (:id, :establishment_id, :name, :cost_price, :sale_price, :current_stock, :unit,
			:barcode, :sku, :category, :idempotency_key, :created_at, :updated_at)
		ON CONFLICT (establishment_id, idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("productRepo.Create: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 && p.IdempotencyKey != nil {
		existing, err := r.getByIdempotencyKey(ctx, p.EstablishmentID, *p.IdempotencyKey)
		if err != nil {
			return fmt.Errorf("productRepo.Create existing: %w", err)
		}
		*p = *existing
	}
	return nil
}

func (r *productRepo) getByIdempotencyKey(ctx context.Context, establishmentID uuid.UUID, key string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p,
		"SELECT "+productColumns+" FROM products WHERE establishment_id = $1 AND idempotency_key = $2",
		establishmentID, key)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetByID(ctx context.Context, establishmentID, productID uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p,
		"SELECT "+productColumns+" FROM products WHERE establishment_id = $1 AND id = $2",
		establishmentID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("productRepo.GetByID: %w", err)
	}
	return &p, nil
}

func (r *productRepo) ListAll(ctx context.Context, establishmentID uuid.UUID) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.SelectContext(ctx, &products,
		"SELECT "+productColumns+" FROM products WHERE establishment_id = $1 ORDER BY name, id",
		establishmentID)
	if err != nil {
		return nil, fmt.Errorf("productRepo.ListAll: %w", err)
	}
	return products, nil
}

func (r *productRepo) List(ctx context.Context, establishmentID uuid.UUID, search string, offset, limit int) ([]domain.Product, int, error) {
	pattern := "%" + search + "%"

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM products WHERE establishment_id = $1 AND name ILIKE $2",
		establishmentID, pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("productRepo.List count: %w", err)
	}

	var products []domain.Product
	err = r.db.SelectContext(ctx, &products,
		"SELECT "+productColumns+` FROM products WHERE establishment_id = $1 AND name ILIKE $2
			ORDER BY name, id LIMIT $3 OFFSET $4`,
		establishmentID, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("productRepo.List: %w", err)
	}
	return products, total, nil
}
