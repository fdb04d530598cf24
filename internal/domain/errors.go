package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("resource was modified concurrently")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")

	ErrProductNotFound  = errors.New("product not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrInvalidSupplier  = errors.New("invalid supplier")
	ErrDuplicateTaxID   = errors.New("a supplier with this tax id already exists")

	ErrIngestionNotFound     = errors.New("ingestion not found")
	ErrLineItemNotFound      = errors.New("line item not found")
	ErrInvalidLineItem       = errors.New("invalid line item values")
	ErrInvalidStep           = errors.New("operation not allowed at the current ingestion step")
	ErrNoImage               = errors.New("ingestion has no uploaded image")
	ErrExtractionFailed      = errors.New("invoice extraction failed")
	ErrUnassociatedLineItems = errors.New("every line item must be associated with a product or marked as new")
	ErrNoLineItems           = errors.New("ingestion has no line items")
	ErrCommitFailed          = errors.New("commit failed")
	ErrCommitInProgress      = errors.New("ingestion is partially committed; retry the commit or reset")

	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)
