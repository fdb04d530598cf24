package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockingest/internal/config"
	"stockingest/internal/domain"
	"stockingest/internal/matcher"
	"stockingest/internal/port"
	"stockingest/internal/reconcile"
	"stockingest/internal/storage"
)

// UploadInput is the DTO for attaching an invoice image to an ingestion.
type UploadInput struct {
	EstablishmentID uuid.UUID
	IngestionID     uuid.UUID
	Filename        string
	Size            int64
	File            io.Reader
}

// InvoicePatch edits the invoice header. Nil fields are left untouched.
type InvoicePatch struct {
	Number *string `json:"number"`
	Date   *string `json:"date"`
}

// IngestionService drives the invoice-to-stock workflow: upload, review and
// commit of one supplier invoice.
type IngestionService interface {
	Create(ctx context.Context, establishmentID, userID uuid.UUID) (*domain.Ingestion, error)
	Get(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error)
	List(ctx context.Context, establishmentID uuid.UUID, offset, limit int) ([]domain.Ingestion, int, error)
	ImageURL(ctx context.Context, establishmentID, ingestionID uuid.UUID) (string, error)
	Movements(ctx context.Context, establishmentID, ingestionID uuid.UUID) ([]domain.StockMovement, error)

	Upload(ctx context.Context, input UploadInput) (*domain.Ingestion, error)
	Reprocess(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error)

	UpdateInvoice(ctx context.Context, establishmentID, ingestionID uuid.UUID, patch InvoicePatch) (*domain.Ingestion, error)
	SelectSupplier(ctx context.Context, establishmentID, ingestionID uuid.UUID, supplierID *uuid.UUID) (*domain.Ingestion, error)
	ResolveSupplier(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error)
	AddLineItem(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error)
	UpdateLineItem(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID, patch reconcile.LineItemPatch) (*domain.Ingestion, error)
	AssociateProduct(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID, productID *uuid.UUID) (*domain.Ingestion, error)
	MarkAsNewProduct(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID) (*domain.Ingestion, error)
	RemoveLineItem(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID) (*domain.Ingestion, error)

	Commit(ctx context.Context, establishmentID, userID, ingestionID uuid.UUID) (*domain.Ingestion, error)
	Reset(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error)
}

type ingestionService struct {
	ingestionRepo port.IngestionRepository
	productRepo   port.ProductRepository
	supplierRepo  port.SupplierRepository
	movementRepo  port.StockMovementRepository
	storage       port.ObjectStorage
	extractor     port.InvoiceExtractor
	s3Cfg         *config.S3Config
	cfg           *config.IngestionConfig
}

// NewIngestionService creates a new IngestionService implementation.
func NewIngestionService(
	ingestionRepo port.IngestionRepository,
	productRepo port.ProductRepository,
	supplierRepo port.SupplierRepository,
	movementRepo port.StockMovementRepository,
	storage port.ObjectStorage,
	extractor port.InvoiceExtractor,
	s3Cfg *config.S3Config,
	cfg *config.IngestionConfig,
) IngestionService {
	return &ingestionService{
		ingestionRepo: ingestionRepo,
		productRepo:   productRepo,
		supplierRepo:  supplierRepo,
		movementRepo:  movementRepo,
		storage:       storage,
		extractor:     extractor,
		s3Cfg:         s3Cfg,
		cfg:           cfg,
	}
}

func (s *ingestionService) Create(ctx context.Context, establishmentID, userID uuid.UUID) (*domain.Ingestion, error) {
	ing := &domain.Ingestion{
		EstablishmentID: establishmentID,
		CreatedBy:       userID,
		Step:            domain.StepUpload,
	}
	if err := s.ingestionRepo.Create(ctx, ing); err != nil {
		return nil, fmt.Errorf("creating ingestion: %w", err)
	}
	log.Printf("ingestionService.Create: ingestion %s created for establishment %s by user %s", ing.ID, establishmentID, userID)
	return ing, nil
}

func (s *ingestionService) Get(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	return s.ingestionRepo.GetByID(ctx, establishmentID, ingestionID)
}

func (s *ingestionService) List(ctx context.Context, establishmentID uuid.UUID, offset, limit int) ([]domain.Ingestion, int, error) {
	return s.ingestionRepo.List(ctx, establishmentID, offset, limit)
}

func (s *ingestionService) ImageURL(ctx context.Context, establishmentID, ingestionID uuid.UUID) (string, error) {
	ing, err := s.ingestionRepo.GetByID(ctx, establishmentID, ingestionID)
	if err != nil {
		return "", err
	}
	if ing.ImageKey == "" {
		return "", domain.ErrNoImage
	}
	return s.storage.GetPresignedURL(ctx, ing.ImageBucket, ing.ImageKey, s.s3Cfg.PresignExpiry)
}

func (s *ingestionService) Movements(ctx context.Context, establishmentID, ingestionID uuid.UUID) ([]domain.StockMovement, error) {
	if _, err := s.ingestionRepo.GetByID(ctx, establishmentID, ingestionID); err != nil {
		return nil, err
	}
	return s.movementRepo.ListByIngestion(ctx, establishmentID, ingestionID)
}

// --- upload & extraction ---

func (s *ingestionService) Upload(ctx context.Context, input UploadInput) (*domain.Ingestion, error) {
	ing, err := s.ingestionRepo.GetByID(ctx, input.EstablishmentID, input.IngestionID)
	if err != nil {
		return nil, err
	}
	if ing.Step != domain.StepUpload {
		return nil, domain.ErrInvalidStep
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.s3Cfg.MaxFileSizeMB * 1024 * 1024
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte detection; the extension alone is not trusted.
	detected := http.DetectContentType(data)
	fileType, ok := domain.AllowedContentTypes[detected]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	contentType := domain.AllowedFileTypes[fileType]

	key := storage.IngestionImageKey(ing.EstablishmentID, ing.ID, input.Filename)
	log.Printf("ingestionService.Upload: uploading %s (%s, %d bytes) for ingestion %s",
		input.Filename, contentType, len(data), ing.ID)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		log.Printf("ingestionService.Upload: storage upload failed for ingestion %s: %v", ing.ID, err)
		return nil, domain.ErrUploadFailed
	}

	if ing.ImageKey != "" && ing.ImageKey != key {
		if err := s.storage.Delete(ctx, ing.ImageBucket, ing.ImageKey); err != nil {
			log.Printf("ingestionService.Upload: deleting previous image %s: %v", ing.ImageKey, err)
		}
	}
	ing.ImageBucket = s.s3Cfg.Bucket
	ing.ImageKey = key
	ing.ImageName = input.Filename
	ing.ContentType = contentType
	if err := s.ingestionRepo.Update(ctx, ing); err != nil {
		return nil, err
	}

	return s.extract(ctx, ing, data)
}

func (s *ingestionService) Reprocess(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	ing, err := s.ingestionRepo.GetByID(ctx, establishmentID, ingestionID)
	if err != nil {
		return nil, err
	}
	switch {
	case ing.Step == domain.StepConfirm:
		return nil, domain.ErrInvalidStep
	case ing.HasCommitProgress():
		return nil, domain.ErrCommitInProgress
	case ing.ImageKey == "":
		return nil, domain.ErrNoImage
	}

	data, err := s.storage.Download(ctx, ing.ImageBucket, ing.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("downloading invoice image: %w", err)
	}
	return s.extract(ctx, ing, data)
}

// extract runs OCR on data and seeds the review state. On failure the step
// and any existing review state are kept and LastError is set.
func (s *ingestionService) extract(ctx context.Context, ing *domain.Ingestion, data []byte) (*domain.Ingestion, error) {
	out, err := s.extractor.Extract(ctx, port.ExtractInput{FileBytes: data, ContentType: ing.ContentType})
	if err == nil && out.Confidence < s.cfg.MinOCRConfidence {
		err = fmt.Errorf("confidence %.2f below minimum %.2f", out.Confidence, s.cfg.MinOCRConfidence)
	}
	if err != nil {
		log.Printf("ingestionService.extract: extraction failed for ingestion %s: %v", ing.ID, err)
		ing.LastError = err.Error()
		if saveErr := s.ingestionRepo.Update(context.WithoutCancel(ctx), ing); saveErr != nil {
			log.Printf("ingestionService.extract: saving failure for ingestion %s: %v", ing.ID, saveErr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	products, err := s.productRepo.ListAll(ctx, ing.EstablishmentID)
	if err != nil {
		return nil, fmt.Errorf("loading product catalog: %w", err)
	}
	suppliers, err := s.supplierRepo.ListAll(ctx, ing.EstablishmentID, true)
	if err != nil {
		return nil, fmt.Errorf("loading suppliers: %w", err)
	}

	ocr := out.Data
	ing.OCR = &ocr
	ing.OCRConfidence = out.Confidence
	ing.OCRModel = out.ModelUsed
	ing.Warnings = out.Warnings
	ing.Invoice = domain.InvoiceMeta{
		Number:   out.Data.Invoice.Number,
		Date:     out.Data.Invoice.Date,
		OCRTotal: out.Data.Totals.Total,
	}
	ing.Supplier = resolveSupplier(out.Data.Vendor, suppliers)
	ing.LineItems = reconcile.Seed(out.Data.LineItems, products).Items()
	ing.Tasks = nil
	ing.LastError = ""
	ing.Step = domain.StepReview

	if err := s.ingestionRepo.Update(ctx, ing); err != nil {
		return nil, err
	}
	log.Printf("ingestionService.extract: ingestion %s ready for review (%d line items, supplier %s, confidence %.2f)",
		ing.ID, len(ing.LineItems), ing.Supplier.Status(), ing.OCRConfidence)
	return ing, nil
}

// resolveSupplier keeps the vendor as read from the invoice when nothing
// matches, so the reviewer can create it.
func resolveSupplier(vendor domain.OCRVendor, suppliers []domain.Supplier) *domain.SupplierAssociation {
	sup, m := matcher.ResolveSupplier(vendor.Name, vendor.TaxID, suppliers)
	if sup == nil {
		return &domain.SupplierAssociation{
			Name:      vendor.Name,
			TaxID:     vendor.TaxID,
			MatchType: domain.MatchNone,
		}
	}
	id := sup.ID
	return &domain.SupplierAssociation{
		SupplierID: &id,
		Name:       sup.Name,
		TaxID:      sup.TaxID,
		Confidence: m.Confidence,
		MatchType:  m.Type,
	}
}

// --- review ---

// loadForReview fetches an ingestion that may still be edited.
func (s *ingestionService) loadForReview(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	ing, err := s.ingestionRepo.GetByID(ctx, establishmentID, ingestionID)
	if err != nil {
		return nil, err
	}
	if ing.Step != domain.StepReview {
		return nil, domain.ErrInvalidStep
	}
	if ing.HasCommitProgress() {
		return nil, domain.ErrCommitInProgress
	}
	return ing, nil
}

// editSheet applies fn to the line items of a reviewable ingestion and saves.
func (s *ingestionService) editSheet(ctx context.Context, establishmentID, ingestionID uuid.UUID, fn func(sheet *reconcile.Sheet) error) (*domain.Ingestion, error) {
	ing, err := s.loadForReview(ctx, establishmentID, ingestionID)
	if err != nil {
		return nil, err
	}
	sheet := reconcile.New(ing.LineItems)
	if err := fn(sheet); err != nil {
		return nil, err
	}
	ing.LineItems = sheet.Items()
	// Tasks from a failed attempt no longer describe the items.
	ing.Tasks = nil
	if err := s.ingestionRepo.Update(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *ingestionService) UpdateInvoice(ctx context.Context, establishmentID, ingestionID uuid.UUID, patch InvoicePatch) (*domain.Ingestion, error) {
	ing, err := s.loadForReview(ctx, establishmentID, ingestionID)
	if err != nil {
		return nil, err
	}
	if patch.Number != nil {
		ing.Invoice.Number = strings.TrimSpace(*patch.Number)
	}
	if patch.Date != nil {
		ing.Invoice.Date = strings.TrimSpace(*patch.Date)
	}
	ing.Tasks = nil
	if err := s.ingestionRepo.Update(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *ingestionService) SelectSupplier(ctx context.Context, establishmentID, ingestionID uuid.UUID, supplierID *uuid.UUID) (*domain.Ingestion, error) {
	ing, err := s.loadForReview(ctx, establishmentID, ingestionID)
	if err != nil {
		return nil, err
	}

	if supplierID == nil {
		var vendor domain.OCRVendor
		if ing.OCR != nil {
			vendor = ing.OCR.Vendor
		}
		ing.Supplier = &domain.SupplierAssociation{Name: vendor.Name, TaxID: vendor.TaxID, MatchType: domain.MatchNone}
	} else {
		sup, err := s.supplierRepo.GetByID(ctx, establishmentID, *supplierID)
		if err != nil {
			return nil, err
		}
		id := sup.ID
		ing.Supplier = &domain.SupplierAssociation{
			SupplierID: &id,
			Name:       sup.Name,
			TaxID:      sup.TaxID,
			Confidence: 1,
			MatchType:  domain.MatchManual,
		}
	}

	ing.Tasks = nil
	if err := s.ingestionRepo.Update(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *ingestionService) ResolveSupplier(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	ing, err := s.loadForReview(ctx, establishmentID, ingestionID)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.supplierRepo.ListAll(ctx, establishmentID, true)
	if err != nil {
		return nil, fmt.Errorf("loading suppliers: %w", err)
	}

	var vendor domain.OCRVendor
	if ing.OCR != nil {
		vendor = ing.OCR.Vendor
	}
	ing.Supplier = resolveSupplier(vendor, suppliers)
	ing.Tasks = nil
	if err := s.ingestionRepo.Update(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *ingestionService) AddLineItem(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	return s.editSheet(ctx, establishmentID, ingestionID, func(sheet *reconcile.Sheet) error {
		sheet.AddManual()
		return nil
	})
}

func (s *ingestionService) UpdateLineItem(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID, patch reconcile.LineItemPatch) (*domain.Ingestion, error) {
	return s.editSheet(ctx, establishmentID, ingestionID, func(sheet *reconcile.Sheet) error {
		_, err := sheet.Update(itemID, patch)
		return err
	})
}

func (s *ingestionService) AssociateProduct(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID, productID *uuid.UUID) (*domain.Ingestion, error) {
	var product *domain.Product
	if productID != nil {
		p, err := s.productRepo.GetByID(ctx, establishmentID, *productID)
		if err != nil {
			return nil, err
		}
		product = p
	}
	return s.editSheet(ctx, establishmentID, ingestionID, func(sheet *reconcile.Sheet) error {
		_, err := sheet.AssociateProduct(itemID, product)
		return err
	})
}

func (s *ingestionService) MarkAsNewProduct(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID) (*domain.Ingestion, error) {
	return s.editSheet(ctx, establishmentID, ingestionID, func(sheet *reconcile.Sheet) error {
		_, err := sheet.MarkAsNewProduct(itemID)
		return err
	})
}

func (s *ingestionService) RemoveLineItem(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID) (*domain.Ingestion, error) {
	return s.editSheet(ctx, establishmentID, ingestionID, func(sheet *reconcile.Sheet) error {
		return sheet.Remove(itemID)
	})
}

// --- commit ---

// IdempotencyKey identifies one commit side effect across retries.
func IdempotencyKey(ingestionID uuid.UUID, kind domain.TaskKind, lineItemID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", ingestionID, kind, lineItemID)
}

// buildTasks orders product creation before every movement so movements of
// new-product items can reference the created product.
func buildTasks(ing *domain.Ingestion) []domain.CommitTask {
	tasks := make([]domain.CommitTask, 0, len(ing.LineItems)*2)
	for _, item := range ing.LineItems {
		if item.IsNewProduct {
			tasks = append(tasks, domain.CommitTask{
				Kind:           domain.TaskCreateProduct,
				LineItemID:     item.ID,
				IdempotencyKey: IdempotencyKey(ing.ID, domain.TaskCreateProduct, item.ID),
				Status:         domain.TaskPending,
			})
		}
	}
	for _, item := range ing.LineItems {
		tasks = append(tasks, domain.CommitTask{
			Kind:           domain.TaskCreateMovement,
			LineItemID:     item.ID,
			IdempotencyKey: IdempotencyKey(ing.ID, domain.TaskCreateMovement, item.ID),
			Status:         domain.TaskPending,
		})
	}
	return tasks
}

// MovementNotes is the note attached to every movement of a committed invoice.
func MovementNotes(ing *domain.Ingestion) string {
	name := ""
	if ing.Supplier != nil && ing.Supplier.SupplierID != nil {
		name = ing.Supplier.Name
	}
	if name == "" && ing.OCR != nil {
		name = ing.OCR.Vendor.Name
	}
	if name == "" {
		name = "sin proveedor"
	}
	number := ing.Invoice.Number
	if number == "" {
		number = "s/n"
	}
	return fmt.Sprintf("Ingreso por factura %s - Proveedor: %s", number, name)
}

func (s *ingestionService) Commit(ctx context.Context, establishmentID, userID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	ing, err := s.ingestionRepo.GetByID(ctx, establishmentID, ingestionID)
	if err != nil {
		return nil, err
	}
	if ing.Step != domain.StepReview {
		return nil, domain.ErrInvalidStep
	}

	if err := reconcile.New(ing.LineItems).Validate(); err != nil {
		return nil, err
	}
	for _, item := range ing.LineItems {
		if item.IsNewProduct && strings.TrimSpace(item.Description) == "" {
			return nil, fmt.Errorf("%w: line item %s needs a description to create a product", domain.ErrInvalidLineItem, item.ID)
		}
	}

	if !ing.HasCommitProgress() {
		ing.Tasks = buildTasks(ing)
	}
	ing.LastError = ""

	items := make(map[uuid.UUID]domain.LineItem, len(ing.LineItems))
	for _, item := range ing.LineItems {
		items[item.ID] = item
	}
	created := make(map[uuid.UUID]uuid.UUID)
	for _, t := range ing.Tasks {
		if t.Kind == domain.TaskCreateProduct && t.Status == domain.TaskSucceeded && t.ResultID != nil {
			created[t.LineItemID] = *t.ResultID
		}
	}

	notes := MovementNotes(ing)
	var supplierID *uuid.UUID
	if ing.Supplier != nil {
		supplierID = ing.Supplier.SupplierID
	}

	for i := range ing.Tasks {
		task := &ing.Tasks[i]
		if task.Status == domain.TaskSucceeded {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, s.failCommit(ctx, ing, task, err)
		}

		item := items[task.LineItemID]
		var resultID uuid.UUID
		switch task.Kind {
		case domain.TaskCreateProduct:
			resultID, err = s.createProduct(ctx, ing, item, task.IdempotencyKey)
			if err == nil {
				created[item.ID] = resultID
			}
		case domain.TaskCreateMovement:
			resultID, err = s.createMovement(ctx, ing, item, task.IdempotencyKey, userID, supplierID, created, notes)
		default:
			err = fmt.Errorf("unknown task kind %q", task.Kind)
		}
		if err != nil {
			return nil, s.failCommit(ctx, ing, task, err)
		}

		now := time.Now().UTC()
		task.Status = domain.TaskSucceeded
		task.Error = ""
		task.ResultID = &resultID
		task.CompletedAt = &now
		if err := s.ingestionRepo.Update(context.WithoutCancel(ctx), ing); err != nil {
			return nil, fmt.Errorf("saving commit progress: %w", err)
		}
	}

	now := time.Now().UTC()
	ing.Step = domain.StepConfirm
	ing.ProcessedCount = len(ing.LineItems)
	ing.CommittedAt = &now
	if err := s.ingestionRepo.Update(context.WithoutCancel(ctx), ing); err != nil {
		return nil, fmt.Errorf("saving committed ingestion: %w", err)
	}
	log.Printf("ingestionService.Commit: ingestion %s committed (%d line items, %d tasks)", ing.ID, ing.ProcessedCount, len(ing.Tasks))
	return ing, nil
}

// failCommit records the failed task and keeps the ingestion in review so
// the commit can be retried.
func (s *ingestionService) failCommit(ctx context.Context, ing *domain.Ingestion, task *domain.CommitTask, cause error) error {
	task.Status = domain.TaskFailed
	task.Error = cause.Error()
	ing.LastError = fmt.Sprintf("%s for line item %s: %v", task.Kind, task.LineItemID, cause)
	log.Printf("ingestionService.Commit: ingestion %s stopped: %s", ing.ID, ing.LastError)

	if err := s.ingestionRepo.Update(context.WithoutCancel(ctx), ing); err != nil {
		log.Printf("ingestionService.Commit: saving failure for ingestion %s: %v", ing.ID, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrCommitFailed, cause)
}

func (s *ingestionService) createProduct(ctx context.Context, ing *domain.Ingestion, item domain.LineItem, key string) (uuid.UUID, error) {
	markup := decimal.NewFromFloat(s.cfg.SaleMarkup)
	p := &domain.Product{
		EstablishmentID: ing.EstablishmentID,
		Name:            strings.TrimSpace(item.Description),
		CostPrice:       item.UnitPrice,
		SalePrice:       item.UnitPrice.Mul(markup).Round(2),
		CurrentStock:    decimal.Zero,
		Unit:            domain.DefaultProductUnit,
		IdempotencyKey:  &key,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return uuid.Nil, fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	return p.ID, nil
}

func (s *ingestionService) createMovement(
	ctx context.Context,
	ing *domain.Ingestion,
	item domain.LineItem,
	key string,
	userID uuid.UUID,
	supplierID *uuid.UUID,
	created map[uuid.UUID]uuid.UUID,
	notes string,
) (uuid.UUID, error) {
	var productID uuid.UUID
	switch {
	case item.ProductID != nil:
		productID = *item.ProductID
	case item.IsNewProduct:
		id, ok := created[item.ID]
		if !ok {
			return uuid.Nil, errors.New("product for new line item was not created")
		}
		productID = id
	default:
		return uuid.Nil, domain.ErrUnassociatedLineItems
	}

	ingestionID := ing.ID
	m := &domain.StockMovement{
		EstablishmentID: ing.EstablishmentID,
		ProductID:       productID,
		Type:            domain.MovementEntrada,
		Quantity:        item.Quantity,
		UnitCost:        item.UnitPrice,
		Reference:       ing.Invoice.Number,
		SupplierID:      supplierID,
		IngestionID:     &ingestionID,
		Notes:           notes,
		IdempotencyKey:  &key,
		CreatedBy:       userID,
	}
	if err := s.movementRepo.Create(ctx, m); err != nil {
		return uuid.Nil, fmt.Errorf("creating stock movement: %w", err)
	}
	return m.ID, nil
}

// --- reset ---

func (s *ingestionService) Reset(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error) {
	ing, err := s.ingestionRepo.GetByID(ctx, establishmentID, ingestionID)
	if err != nil {
		return nil, err
	}

	bucket, key := ing.ImageBucket, ing.ImageKey
	ing.ClearWorkflow()
	if err := s.ingestionRepo.Update(ctx, ing); err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.storage.Delete(ctx, bucket, key); err != nil {
			log.Printf("ingestionService.Reset: deleting image %s for ingestion %s: %v", key, ing.ID, err)
		}
	}
	log.Printf("ingestionService.Reset: ingestion %s reset to upload", ing.ID)
	return ing, nil
}
