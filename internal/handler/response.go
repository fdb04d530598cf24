package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stockingest/internal/domain"
	"stockingest/internal/middleware"
	"stockingest/internal/reconcile"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// ErrCommitFailed is matched first since it wraps the failing task's cause.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrCommitFailed):
		return http.StatusBadGateway, "COMMIT_FAILED", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrIngestionNotFound):
		return http.StatusNotFound, "INGESTION_NOT_FOUND", "ingestion not found"
	case errors.Is(err, domain.ErrLineItemNotFound):
		return http.StatusNotFound, "LINE_ITEM_NOT_FOUND", "line item not found"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found"
	case errors.Is(err, domain.ErrSupplierNotFound):
		return http.StatusNotFound, "SUPPLIER_NOT_FOUND", "supplier not found"
	case errors.Is(err, domain.ErrInvalidProduct):
		return http.StatusBadRequest, "INVALID_PRODUCT", err.Error()
	case errors.Is(err, domain.ErrInvalidSupplier):
		return http.StatusBadRequest, "INVALID_SUPPLIER", err.Error()
	case errors.Is(err, domain.ErrInvalidLineItem):
		return http.StatusBadRequest, "INVALID_LINE_ITEM", err.Error()
	case errors.Is(err, domain.ErrDuplicateTaxID):
		return http.StatusConflict, "DUPLICATE_TAX_ID", "a supplier with this tax id already exists"
	case errors.Is(err, domain.ErrUnassociatedLineItems):
		return http.StatusUnprocessableEntity, "UNASSOCIATED_LINE_ITEMS", "every line item must be associated with a product or marked as new"
	case errors.Is(err, domain.ErrNoLineItems):
		return http.StatusUnprocessableEntity, "NO_LINE_ITEMS", "ingestion has no line items"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity, "EXTRACTION_FAILED", err.Error()
	case errors.Is(err, domain.ErrInvalidStep):
		return http.StatusConflict, "INVALID_STEP", "operation not allowed at the current ingestion step"
	case errors.Is(err, domain.ErrCommitInProgress):
		return http.StatusConflict, "COMMIT_IN_PROGRESS", "ingestion is partially committed; retry the commit or reset"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT", "ingestion was modified concurrently; reload and retry"
	case errors.Is(err, domain.ErrNoImage):
		return http.StatusConflict, "NO_IMAGE", "ingestion has no uploaded image"
	case errors.Is(err, domain.ErrUnsupportedExportFormat):
		return http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT", "unsupported export format; allowed: csv, xlsx"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Unassociated line items are listed in error.details.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		log.Printf("[%s] internal error: %v", requestID, err)
	}

	var unassociated *reconcile.UnassociatedError
	if errors.As(err, &unassociated) {
		c.JSON(status, APIResponse{
			Success: false,
			Error: &APIError{
				Code:    code,
				Message: msg,
				Details: gin.H{"line_item_ids": unassociated.LineItemIDs},
			},
		})
		return
	}
	RespondError(c, status, code, msg)
}

// authContext extracts establishment ID and user ID from the request context.
// Returns false if auth context is missing (error response already written).
func authContext(c *gin.Context) (establishmentID, userID uuid.UUID, ok bool) {
	var err error
	establishmentID, err = middleware.GetEstablishmentID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing establishment context")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, uuid.Nil, false
	}
	return establishmentID, userID, true
}

// pathID parses a UUID path parameter. Returns false after writing a 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads offset and limit with the same bounds on every list endpoint.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
