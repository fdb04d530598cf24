package handler

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stockingest/internal/domain"
	"stockingest/internal/export"
	"stockingest/internal/reconcile"
	"stockingest/internal/service"
)

// IngestionHandler handles the invoice ingestion workflow endpoints.
type IngestionHandler struct {
	ingestionService service.IngestionService
}

// NewIngestionHandler creates a new IngestionHandler.
func NewIngestionHandler(ingestionService service.IngestionService) *IngestionHandler {
	return &IngestionHandler{ingestionService: ingestionService}
}

type selectSupplierRequest struct {
	SupplierID *uuid.UUID `json:"supplier_id"`
}

type associateProductRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
}

// Create handles POST /api/v1/ingestions
// @Summary Start an ingestion
// @Description Create an empty ingestion at the upload step
// @Tags ingestions
// @Produce json
// @Success 201 {object} APIResponse{data=IngestionView} "Ingestion created"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /ingestions [post]
func (h *IngestionHandler) Create(c *gin.Context) {
	establishmentID, userID, ok := authContext(c)
	if !ok {
		return
	}

	ing, err := h.ingestionService.Create(c.Request.Context(), establishmentID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, NewIngestionView(ing))
}

// List handles GET /api/v1/ingestions
// @Summary List ingestions
// @Description List ingestions of the establishment, newest first
// @Tags ingestions
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} APIResponse{data=[]IngestionView,meta=PagMeta}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /ingestions [get]
func (h *IngestionHandler) List(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	ings, total, err := h.ingestionService.List(c.Request.Context(), establishmentID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, newIngestionViews(ings), PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/ingestions/:id
// @Summary Get ingestion
// @Description Get an ingestion with totals and association counts
// @Tags ingestions
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Security BearerAuth
// @Router /ingestions/{id} [get]
func (h *IngestionHandler) Get(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ing, err := h.ingestionService.Get(c.Request.Context(), establishmentID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}

// Upload handles POST /api/v1/ingestions/:id/upload
// Stores the invoice image and runs extraction before responding.
// @Summary Upload invoice image
// @Description Store the invoice image and extract it; matched supplier and products are preselected
// @Tags ingestions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Param file formData file true "Invoice image (jpg, png or pdf)"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 400 {object} APIResponse "Missing or unsupported file"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "Extraction failed or confidence too low"
// @Security BearerAuth
// @Router /ingestions/{id}/upload [post]
func (h *IngestionHandler) Upload(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	ing, err := h.ingestionService.Upload(c.Request.Context(), service.UploadInput{
		EstablishmentID: establishmentID,
		IngestionID:     id,
		Filename:        header.Filename,
		Size:            header.Size,
		File:            file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}

// Reprocess handles POST /api/v1/ingestions/:id/reprocess
// @Summary Reprocess invoice image
// @Description Run extraction again on the stored image; review edits are discarded
// @Tags ingestions
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Failure 422 {object} APIResponse "Extraction failed"
// @Security BearerAuth
// @Router /ingestions/{id}/reprocess [post]
func (h *IngestionHandler) Reprocess(c *gin.Context) {
	h.run(c, h.ingestionService.Reprocess)
}

// UpdateInvoice handles PATCH /api/v1/ingestions/:id/invoice
// @Summary Update invoice data
// @Description Edit invoice number and date during review
// @Tags ingestions
// @Accept json
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Param request body service.InvoicePatch true "Invoice fields"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/invoice [patch]
func (h *IngestionHandler) UpdateInvoice(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch service.InvoicePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ing, err := h.ingestionService.UpdateInvoice(c.Request.Context(), establishmentID, id, patch)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}

// SelectSupplier handles PUT /api/v1/ingestions/:id/supplier
// A null supplier_id clears the selection.
// @Summary Select supplier
// @Description Associate a supplier; null clears the selection
// @Tags ingestions
// @Accept json
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Param request body selectSupplierRequest true "Supplier selection"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion or supplier not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/supplier [put]
func (h *IngestionHandler) SelectSupplier(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req selectSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ing, err := h.ingestionService.SelectSupplier(c.Request.Context(), establishmentID, id, req.SupplierID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}

// ResolveSupplier handles POST /api/v1/ingestions/:id/supplier/resolve
// @Summary Resolve supplier
// @Description Match the OCR vendor against suppliers by tax id, then by name
// @Tags ingestions
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/supplier/resolve [post]
func (h *IngestionHandler) ResolveSupplier(c *gin.Context) {
	h.run(c, h.ingestionService.ResolveSupplier)
}

// AddLineItem handles POST /api/v1/ingestions/:id/items
// @Summary Add line item
// @Description Append an empty manual line item
// @Tags line-items
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Success 201 {object} APIResponse{data=IngestionView} "Line item added"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/items [post]
func (h *IngestionHandler) AddLineItem(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ing, err := h.ingestionService.AddLineItem(c.Request.Context(), establishmentID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, NewIngestionView(ing))
}

// UpdateLineItem handles PATCH /api/v1/ingestions/:id/items/:itemId
// @Summary Update line item
// @Description Patch description, quantity or unit price; the total is recomputed
// @Tags line-items
// @Accept json
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Param itemId path string true "Line item ID (UUID)"
// @Param request body reconcile.LineItemPatch true "Line item fields"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion or line item not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/items/{itemId} [patch]
func (h *IngestionHandler) UpdateLineItem(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var patch reconcile.LineItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ing, err := h.ingestionService.UpdateLineItem(c.Request.Context(), establishmentID, id, itemID, patch)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}

// AssociateProduct handles PUT /api/v1/ingestions/:id/items/:itemId/product
// A null product_id leaves the item unassociated.
// @Summary Associate product
// @Description Link a line item to a catalog product; null leaves it unassociated
// @Tags line-items
// @Accept json
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Param itemId path string true "Line item ID (UUID)"
// @Param request body associateProductRequest true "Product selection"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion, line item or product not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/items/{itemId}/product [put]
func (h *IngestionHandler) AssociateProduct(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var req associateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ing, err := h.ingestionService.AssociateProduct(c.Request.Context(), establishmentID, id, itemID, req.ProductID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}

// MarkAsNewProduct handles POST /api/v1/ingestions/:id/items/:itemId/new-product
// @Summary Mark as new product
// @Description Flag a line item to be created as a product on commit
// @Tags line-items
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Param itemId path string true "Line item ID (UUID)"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion or line item not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/items/{itemId}/new-product [post]
func (h *IngestionHandler) MarkAsNewProduct(c *gin.Context) {
	h.runItem(c, h.ingestionService.MarkAsNewProduct)
}

// RemoveLineItem handles DELETE /api/v1/ingestions/:id/items/:itemId
// @Summary Remove line item
// @Tags line-items
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Param itemId path string true "Line item ID (UUID)"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion or line item not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/items/{itemId} [delete]
func (h *IngestionHandler) RemoveLineItem(c *gin.Context) {
	h.runItem(c, h.ingestionService.RemoveLineItem)
}

// Commit handles POST /api/v1/ingestions/:id/commit
// A failed commit answers 502 and can be retried; completed steps are skipped.
// @Summary Commit ingestion
// @Description Create new products, then one stock entry per line item. Retries skip completed steps
// @Tags ingestions
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Failure 422 {object} APIResponse "Unassociated or missing line items"
// @Failure 502 {object} APIResponse "A commit step failed"
// @Security BearerAuth
// @Router /ingestions/{id}/commit [post]
func (h *IngestionHandler) Commit(c *gin.Context) {
	establishmentID, userID, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ing, err := h.ingestionService.Commit(c.Request.Context(), establishmentID, userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}

// Reset handles POST /api/v1/ingestions/:id/reset
// @Summary Reset ingestion
// @Description Discard the image and review state and return to the upload step
// @Tags ingestions
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Success 200 {object} APIResponse{data=IngestionView}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Failure 409 {object} APIResponse "Wrong step, concurrent edit or commit in progress"
// @Security BearerAuth
// @Router /ingestions/{id}/reset [post]
func (h *IngestionHandler) Reset(c *gin.Context) {
	h.run(c, h.ingestionService.Reset)
}

// Image handles GET /api/v1/ingestions/:id/image
// @Summary Get invoice image URL
// @Description Presigned URL of the stored invoice image
// @Tags ingestions
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Success 200 {object} APIResponse{data=map[string]string}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Failure 409 {object} APIResponse "No image uploaded"
// @Security BearerAuth
// @Router /ingestions/{id}/image [get]
func (h *IngestionHandler) Image(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	url, err := h.ingestionService.ImageURL(c.Request.Context(), establishmentID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// Movements handles GET /api/v1/ingestions/:id/movements
// @Summary List ingestion movements
// @Description Stock movements created by the commit
// @Tags ingestions
// @Produce json
// @Param id path string true "Ingestion ID (UUID)"
// @Success 200 {object} APIResponse{data=[]domain.StockMovement}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Security BearerAuth
// @Router /ingestions/{id}/movements [get]
func (h *IngestionHandler) Movements(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	movements, err := h.ingestionService.Movements(c.Request.Context(), establishmentID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, movements)
}

// Export handles GET /api/v1/ingestions/:id/export?format=csv|xlsx
// @Summary Export line items
// @Description Download the reconciled line items as CSV or XLSX
// @Tags ingestions
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Ingestion ID (UUID)"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} APIResponse "Unsupported format"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Ingestion not found"
// @Security BearerAuth
// @Router /ingestions/{id}/export [get]
func (h *IngestionHandler) Export(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	ing, err := h.ingestionService.Get(c.Request.Context(), establishmentID, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, ing); err != nil {
		log.Printf("ingestionHandler.Export: rendering %s for ingestion %s: %v", format, id, err)
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.BuildFilename(ing, format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// run serves endpoints that act on one ingestion and take no body.
func (h *IngestionHandler) run(c *gin.Context, op func(ctx context.Context, establishmentID, ingestionID uuid.UUID) (*domain.Ingestion, error)) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ing, err := op(c.Request.Context(), establishmentID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}

// runItem is run for endpoints addressed to one line item.
func (h *IngestionHandler) runItem(c *gin.Context, op func(ctx context.Context, establishmentID, ingestionID, itemID uuid.UUID) (*domain.Ingestion, error)) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	ing, err := op(c.Request.Context(), establishmentID, id, itemID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, NewIngestionView(ing))
}
