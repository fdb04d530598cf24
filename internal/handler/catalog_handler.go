package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stockingest/internal/service"
)

// CatalogHandler serves the products and suppliers that invoice lines are
// reconciled against.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type createProductRequest struct {
	Name      string          `json:"name" binding:"required"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Unit      string          `json:"unit"`
	Barcode   *string         `json:"barcode"`
	SKU       *string         `json:"sku"`
	Category  *string         `json:"category"`
}

type createSupplierRequest struct {
	Name         string `json:"name" binding:"required"`
	BusinessName string `json:"business_name"`
	TaxID        string `json:"tax_id"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	ContactName  string `json:"contact_name"`
}

// ListProducts handles GET /api/v1/products?q=
// @Summary List products
// @Description Search catalog products by name
// @Tags products
// @Produce json
// @Param q query string false "Name search"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Product,meta=PagMeta}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	products, total, err := h.catalogService.ListProducts(c.Request.Context(), establishmentID, c.Query("q"), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, products, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetProduct handles GET /api/v1/products/:id
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Product}
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Product not found"
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), establishmentID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, product)
}

// CreateProduct handles POST /api/v1/products
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param request body createProductRequest true "Product"
// @Success 201 {object} APIResponse{data=domain.Product} "Product created"
// @Failure 400 {object} APIResponse "Invalid product"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), service.CreateProductInput{
		EstablishmentID: establishmentID,
		Name:            req.Name,
		CostPrice:       req.CostPrice,
		SalePrice:       req.SalePrice,
		Unit:            req.Unit,
		Barcode:         req.Barcode,
		SKU:             req.SKU,
		Category:        req.Category,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, product)
}

// ListProductMovements handles GET /api/v1/products/:id/movements
// @Summary List product movements
// @Description Stock movements of a product, newest first
// @Tags products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} APIResponse{data=[]domain.StockMovement,meta=PagMeta}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Product not found"
// @Security BearerAuth
// @Router /products/{id}/movements [get]
func (h *CatalogHandler) ListProductMovements(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	offset, limit := pagination(c)

	movements, total, err := h.catalogService.ListStockMovements(c.Request.Context(), establishmentID, id, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, movements, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListSuppliers handles GET /api/v1/suppliers?active=true
// @Summary List suppliers
// @Tags suppliers
// @Produce json
// @Param active query bool false "Only active suppliers"
// @Success 200 {object} APIResponse{data=[]domain.Supplier}
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /suppliers [get]
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	activeOnly := c.Query("active") == "true"

	suppliers, err := h.catalogService.ListSuppliers(c.Request.Context(), establishmentID, activeOnly)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, suppliers)
}

// GetSupplier handles GET /api/v1/suppliers/:id
// @Summary Get supplier
// @Tags suppliers
// @Produce json
// @Param id path string true "Supplier ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Supplier}
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Supplier not found"
// @Security BearerAuth
// @Router /suppliers/{id} [get]
func (h *CatalogHandler) GetSupplier(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	supplier, err := h.catalogService.GetSupplier(c.Request.Context(), establishmentID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, supplier)
}

// CreateSupplier handles POST /api/v1/suppliers
// @Summary Create supplier
// @Description The tax id is stored digits-only and must be unique
// @Tags suppliers
// @Accept json
// @Produce json
// @Param request body createSupplierRequest true "Supplier"
// @Success 201 {object} APIResponse{data=domain.Supplier} "Supplier created"
// @Failure 400 {object} APIResponse "Invalid supplier"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 409 {object} APIResponse "Duplicate tax id"
// @Security BearerAuth
// @Router /suppliers [post]
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	establishmentID, _, ok := authContext(c)
	if !ok {
		return
	}
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	supplier, err := h.catalogService.CreateSupplier(c.Request.Context(), service.CreateSupplierInput{
		EstablishmentID: establishmentID,
		Name:            req.Name,
		BusinessName:    req.BusinessName,
		TaxID:           req.TaxID,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		ContactName:     req.ContactName,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, supplier)
}
