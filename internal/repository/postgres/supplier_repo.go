package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockingest/internal/domain"
	"stockingest/internal/port"
)

type supplierRepo struct {
	db *sqlx.DB
}

// NewSupplierRepo creates a new PostgreSQL-backed SupplierRepository.
func NewSupplierRepo(db *sqlx.DB) port.SupplierRepository {
	return &supplierRepo{db: db}
}

func (r *supplierRepo) Create(ctx context.Context, s *domain.Supplier) error {
	s.ID = uuid.New()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `INSERT INTO suppliers (id, establishment_id, name, business_name, tax_id, email, phone,
			address, contact_name, is_active, created_at, updated_at)
		VALUES (:id, :establishment_id, :name, :business_name, :tax_id, :email, :phone,
			:address, :contact_name, :is_active, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "tax_id") {
			return domain.ErrDuplicateTaxID
		}
		return fmt.Errorf("supplierRepo.Create: %w", err)
	}
	return nil
}

func (r *supplierRepo) GetByID(ctx context.Context, establishmentID, supplierID uuid.UUID) (*domain.Supplier, error) {
	var s domain.Supplier
	err := r.db.GetContext(ctx, &s,
		"SELECT * FROM suppliers WHERE establishment_id = $1 AND id = $2", establishmentID, supplierID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("supplierRepo.GetByID: %w", err)
	}
	return &s, nil
}

func (r *supplierRepo) ListAll(ctx context.Context, establishmentID uuid.UUID, activeOnly bool) ([]domain.Supplier, error) {
	query := "SELECT * FROM suppliers WHERE establishment_id = $1"
	if activeOnly {
		query += " AND is_active"
	}
	query += " ORDER BY name, id"

	var suppliers []domain.Supplier
	if err := r.db.SelectContext(ctx, &suppliers, query, establishmentID); err != nil {
		return nil, fmt.Errorf("supplierRepo.ListAll: %w", err)
	}
	return suppliers, nil
}
