package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockingest/internal/domain"
	"stockingest/internal/port"
)

const movementColumns = `id, establishment_id, product_id, type, quantity, unit_cost, reference,
	supplier_id, ingestion_id, notes, idempotency_key, created_by, created_at`

type stockMovementRepo struct {
	db *sqlx.DB
}

// NewStockMovementRepo creates a new PostgreSQL-backed StockMovementRepository.
func NewStockMovementRepo(db *sqlx.DB) port.StockMovementRepository {
	return &stockMovementRepo{db: db}
}

// stockDelta is the signed change a movement applies to current stock.
func stockDelta(m *domain.StockMovement) decimal.Decimal {
	if m.Type == domain.MovementSalida {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

func (r *stockMovementRepo) Create(ctx context.Context, m *domain.StockMovement) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `INSERT INTO stock_movements (` + movementColumns + `)
			VALUES (:id, :establishment_id, :product_id, :type, :quantity, :unit_cost, :reference,
				:supplier_id, :ingestion_id, :notes, :idempotency_key, :created_by, :created_at)
			ON CONFLICT (establishment_id, idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING`

		result, err := tx.NamedExecContext(ctx, query, m)
		if err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 && m.IdempotencyKey != nil {
			// Already applied by an earlier attempt; stock was updated then.
			var existing domain.StockMovement
			err := tx.GetContext(ctx, &existing,
				"SELECT "+movementColumns+" FROM stock_movements WHERE establishment_id = $1 AND idempotency_key = $2",
				m.EstablishmentID, *m.IdempotencyKey)
			if err != nil {
				return fmt.Errorf("load existing movement: %w", err)
			}
			*m = existing
			return nil
		}

		result, err = tx.ExecContext(ctx,
			`UPDATE products SET current_stock = current_stock + $1, updated_at = $2
				WHERE establishment_id = $3 AND id = $4`,
			stockDelta(m), m.CreatedAt, m.EstablishmentID, m.ProductID)
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return domain.ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("stockMovementRepo.Create: %w", err)
	}
	return nil
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, establishmentID, productID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM stock_movements WHERE establishment_id = $1 AND product_id = $2",
		establishmentID, productID)
	if err != nil {
		return nil, 0, fmt.Errorf("stockMovementRepo.ListByProduct count: %w", err)
	}

	var movements []domain.StockMovement
	err = r.db.SelectContext(ctx, &movements,
		"SELECT "+movementColumns+` FROM stock_movements WHERE establishment_id = $1 AND product_id = $2
			ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		establishmentID, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("stockMovementRepo.ListByProduct: %w", err)
	}
	return movements, total, nil
}

func (r *stockMovementRepo) ListByIngestion(ctx context.Context, establishmentID, ingestionID uuid.UUID) ([]domain.StockMovement, error) {
	var movements []domain.StockMovement
	err := r.db.SelectContext(ctx, &movements,
		"SELECT "+movementColumns+` FROM stock_movements WHERE establishment_id = $1 AND ingestion_id = $2
			ORDER BY created_at`,
		establishmentID, ingestionID)
	if err != nil {
		return nil, fmt.Errorf("stockMovementRepo.ListByIngestion: %w", err)
	}
	return movements, nil
}
