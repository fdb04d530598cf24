package domain

// FileType represents the allowed invoice image types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// UserRole is carried in access tokens; every role may run ingestions.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// IngestionStep is the workflow position of an ingestion.
// Transitions only move forward (upload -> review -> confirm); Reset returns to upload.
type IngestionStep string

const (
	StepUpload  IngestionStep = "upload"
	StepReview  IngestionStep = "review"
	StepConfirm IngestionStep = "confirm"
)

// MatchType records which rule produced an association confidence.
type MatchType string

const (
	MatchNone      MatchType = "none"
	MatchExact     MatchType = "exact"
	MatchSubstring MatchType = "substring"
	MatchToken     MatchType = "token"
	MatchTaxID     MatchType = "tax_id"
	MatchManual    MatchType = "manual"
)

// AssociationState is the reconciliation state of a line item.
type AssociationState string

const (
	AssociationMatched      AssociationState = "matched"
	AssociationNewProduct   AssociationState = "new_product"
	AssociationUnassociated AssociationState = "unassociated"
)

// SupplierStatus summarizes the supplier association of an ingestion.
type SupplierStatus string

const (
	SupplierMatched   SupplierStatus = "matched"
	SupplierSelected  SupplierStatus = "selected"
	SupplierUnmatched SupplierStatus = "unmatched"
)

// MovementType is the kind of stock change a movement records.
type MovementType string

const (
	MovementEntrada MovementType = "entrada"
	MovementSalida  MovementType = "salida"
	MovementAjuste  MovementType = "ajuste"
)

// TaskKind identifies a commit step.
type TaskKind string

const (
	TaskCreateProduct  TaskKind = "create_product"
	TaskCreateMovement TaskKind = "create_movement"
)

// TaskStatus tracks the outcome of a commit step.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// DefaultProductUnit is the unit assigned to products created from an invoice.
const DefaultProductUnit = "unidad"
