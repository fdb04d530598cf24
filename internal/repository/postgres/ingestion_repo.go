package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockingest/internal/domain"
	"stockingest/internal/port"
)

// ingestionRow is the storage shape of domain.Ingestion. Workflow state that
// is only ever read whole lives in JSONB columns.
type ingestionRow struct {
	ID              uuid.UUID  `db:"id"`
	EstablishmentID uuid.UUID  `db:"establishment_id"`
	CreatedBy       uuid.UUID  `db:"created_by"`
	Step            string     `db:"step"`
	ImageBucket     string     `db:"image_bucket"`
	ImageKey        string     `db:"image_key"`
	ImageName       string     `db:"image_name"`
	ContentType     string     `db:"content_type"`
	OCR             []byte     `db:"ocr"`
	OCRConfidence   float64    `db:"ocr_confidence"`
	OCRModel        string     `db:"ocr_model"`
	Warnings        []byte     `db:"warnings"`
	Invoice         []byte     `db:"invoice"`
	Supplier        []byte     `db:"supplier"`
	LineItems       []byte     `db:"line_items"`
	Tasks           []byte     `db:"tasks"`
	LastError       string     `db:"last_error"`
	ProcessedCount  int        `db:"processed_count"`
	Version         int        `db:"version"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	CommittedAt     *time.Time `db:"committed_at"`
}

func marshalNullable(v interface{}, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

func toIngestionRow(ing *domain.Ingestion) (*ingestionRow, error) {
	row := &ingestionRow{
		ID:              ing.ID,
		EstablishmentID: ing.EstablishmentID,
		CreatedBy:       ing.CreatedBy,
		Step:            string(ing.Step),
		ImageBucket:     ing.ImageBucket,
		ImageKey:        ing.ImageKey,
		ImageName:       ing.ImageName,
		ContentType:     ing.ContentType,
		OCRConfidence:   ing.OCRConfidence,
		OCRModel:        ing.OCRModel,
		LastError:       ing.LastError,
		ProcessedCount:  ing.ProcessedCount,
		Version:         ing.Version,
		CreatedAt:       ing.CreatedAt,
		UpdatedAt:       ing.UpdatedAt,
		CommittedAt:     ing.CommittedAt,
	}

	var err error
	if row.OCR, err = marshalNullable(ing.OCR, ing.OCR == nil); err != nil {
		return nil, fmt.Errorf("marshaling ocr: %w", err)
	}
	if row.Supplier, err = marshalNullable(ing.Supplier, ing.Supplier == nil); err != nil {
		return nil, fmt.Errorf("marshaling supplier: %w", err)
	}
	if row.Invoice, err = json.Marshal(ing.Invoice); err != nil {
		return nil, fmt.Errorf("marshaling invoice: %w", err)
	}
	if row.Warnings, err = json.Marshal(nonNil(ing.Warnings)); err != nil {
		return nil, fmt.Errorf("marshaling warnings: %w", err)
	}
	if row.LineItems, err = json.Marshal(nonNil(ing.LineItems)); err != nil {
		return nil, fmt.Errorf("marshaling line items: %w", err)
	}
	if row.Tasks, err = json.Marshal(nonNil(ing.Tasks)); err != nil {
		return nil, fmt.Errorf("marshaling tasks: %w", err)
	}
	return row, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (row *ingestionRow) toDomain() (*domain.Ingestion, error) {
	ing := &domain.Ingestion{
		ID:              row.ID,
		EstablishmentID: row.EstablishmentID,
		CreatedBy:       row.CreatedBy,
		Step:            domain.IngestionStep(row.Step),
		ImageBucket:     row.ImageBucket,
		ImageKey:        row.ImageKey,
		ImageName:       row.ImageName,
		ContentType:     row.ContentType,
		OCRConfidence:   row.OCRConfidence,
		OCRModel:        row.OCRModel,
		LastError:       row.LastError,
		ProcessedCount:  row.ProcessedCount,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		CommittedAt:     row.CommittedAt,
	}

	if len(row.OCR) > 0 && string(row.OCR) != "null" {
		ing.OCR = &domain.OCRData{}
		if err := json.Unmarshal(row.OCR, ing.OCR); err != nil {
			return nil, fmt.Errorf("unmarshaling ocr: %w", err)
		}
	}
	if len(row.Supplier) > 0 && string(row.Supplier) != "null" {
		ing.Supplier = &domain.SupplierAssociation{}
		if err := json.Unmarshal(row.Supplier, ing.Supplier); err != nil {
			return nil, fmt.Errorf("unmarshaling supplier: %w", err)
		}
	}
	for _, col := range []struct {
		data []byte
		dest interface{}
		name string
	}{
		{row.Invoice, &ing.Invoice, "invoice"},
		{row.Warnings, &ing.Warnings, "warnings"},
		{row.LineItems, &ing.LineItems, "line items"},
		{row.Tasks, &ing.Tasks, "tasks"},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dest); err != nil {
			return nil, fmt.Errorf("unmarshaling %s: %w", col.name, err)
		}
	}
	return ing, nil
}

type ingestionRepo struct {
	db *sqlx.DB
}

// NewIngestionRepo creates a new PostgreSQL-backed IngestionRepository.
func NewIngestionRepo(db *sqlx.DB) port.IngestionRepository {
	return &ingestionRepo{db: db}
}

func (r *ingestionRepo) Create(ctx context.Context, ing *domain.Ingestion) error {
	ing.ID = uuid.New()
	now := time.Now().UTC()
	ing.CreatedAt = now
	ing.UpdatedAt = now
	ing.Version = 1

	row, err := toIngestionRow(ing)
	if err != nil {
		return fmt.Errorf("ingestionRepo.Create: %w", err)
	}

	query := `INSERT INTO ingestions (id, establishment_id, created_by, step, image_bucket, image_key,
			image_name, content_type, ocr, ocr_confidence, ocr_model, warnings, invoice, supplier,
			line_items, tasks, last_error, processed_count, version, created_at, updated_at, committed_at)
		VALUES (:id, :establishment_id, :created_by, :step, :image_bucket, :image_key,
			:image_name, :content_type, :ocr, :ocr_confidence, :ocr_model, :warnings, :invoice, :supplier,
			:line_items, :tasks, :last_error, :processed_count, :version, :created_at, :updated_at, :committed_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("ingestionRepo.Create: %w", err)
	}
	return nil
}

func (r *ingestionRepo) GetByID(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	var row ingestionRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM ingestions WHERE establishment_id = $1 AND id = $2", establishmentID, ingestionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIngestionNotFound
		}
		return nil, fmt.Errorf("ingestionRepo.GetByID: %w", err)
	}
	ing, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("ingestionRepo.GetByID: %w", err)
	}
	return ing, nil
}

func (r *ingestionRepo) List(ctx context.Context, establishmentID uuid.UUID, offset, limit int) ([]domain.Ingestion, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM ingestions WHERE establishment_id = $1", establishmentID)
	if err != nil {
		return nil, 0, fmt.Errorf("ingestionRepo.List count: %w", err)
	}

	var rows []ingestionRow
	err = r.db.SelectContext(ctx, &rows,
		"SELECT * FROM ingestions WHERE establishment_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		establishmentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ingestionRepo.List: %w", err)
	}

	ingestions := make([]domain.Ingestion, 0, len(rows))
	for i := range rows {
		ing, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("ingestionRepo.List: %w", err)
		}
		ingestions = append(ingestions, *ing)
	}
	return ingestions, total, nil
}

func (r *ingestionRepo) Update(ctx context.Context, ing *domain.Ingestion) error {
	ing.UpdatedAt = time.Now().UTC()
	row, err := toIngestionRow(ing)
	if err != nil {
		return fmt.Errorf("ingestionRepo.Update: %w", err)
	}

	query := `UPDATE ingestions SET step = :step, image_bucket = :image_bucket, image_key = :image_key,
			image_name = :image_name, content_type = :content_type, ocr = :ocr,
			ocr_confidence = :ocr_confidence, ocr_model = :ocr_model, warnings = :warnings,
			invoice = :invoice, supplier = :supplier, line_items = :line_items, tasks = :tasks,
			last_error = :last_error, processed_count = :processed_count, committed_at = :committed_at,
			updated_at = :updated_at, version = version + 1
		WHERE id = :id AND establishment_id = :establishment_id AND version = :version`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("ingestionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM ingestions WHERE id = $1 AND establishment_id = $2)",
			ing.ID, ing.EstablishmentID)
		if err != nil {
			return fmt.Errorf("ingestionRepo.Update exists: %w", err)
		}
		if !exists {
			return domain.ErrIngestionNotFound
		}
		return domain.ErrConflict
	}
	ing.Version++
	return nil
}
