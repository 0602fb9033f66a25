package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Document request lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusReady     = "ready"
	StatusCompleted = "completed"
)

// Delivery methods for document requests.
const (
	DeliveryPickup  = "pickup"
	DeliveryDigital = "digital"
)

// Authority levels for document types.
const (
	AuthorityBarangay  = "barangay"
	AuthorityMunicipal = "municipal"
)

// DocumentType is a catalog entry for an official document residents can
// request (clearances, certificates, permits).
type DocumentType struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Code           string `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Description    string `gorm:"size:1024" json:"description,omitempty"`
	AuthorityLevel string `gorm:"size:32;default:municipal" json:"authority_level"`

	// Requirements holds the checklist of attachments a request must carry,
	// as a JSON array of strings.
	Requirements datatypes.JSON `json:"requirements,omitempty"`

	Fee              decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"fee"`
	ProcessingDays   int             `gorm:"default:3" json:"processing_days"`
	SupportsPhysical bool            `gorm:"default:true" json:"supports_physical"`
	SupportsDigital  bool            `gorm:"default:false" json:"supports_digital"`
	IsActive         bool            `gorm:"default:true;index" json:"is_active"`
}

// DocumentRequest is a resident's application for an official document.
// Status walks pending -> approved/rejected -> ready -> completed.
type DocumentRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RequestNumber string `gorm:"size:64;not null;uniqueIndex" json:"request_number"`

	UserID         uint          `gorm:"index;not null" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DocumentTypeID uint          `gorm:"index;not null" json:"document_type_id"`
	DocumentType   *DocumentType `gorm:"foreignKey:DocumentTypeID" json:"document_type,omitempty"`
	MunicipalityID uint          `gorm:"index;not null" json:"municipality_id"`
	Municipality   *Municipality `gorm:"foreignKey:MunicipalityID" json:"municipality,omitempty"`
	BarangayID     *uint         `gorm:"index" json:"barangay_id,omitempty"`

	DeliveryMethod  string `gorm:"size:16;not null" json:"delivery_method"`
	DeliveryAddress string `gorm:"size:512" json:"delivery_address,omitempty"`
	Purpose         string `gorm:"size:512;not null" json:"purpose"`
	CivilStatus     string `gorm:"size:32" json:"civil_status,omitempty"`
	AdditionalNotes string `gorm:"size:1024" json:"additional_notes,omitempty"`

	// ResidentInput snapshots the submitted form for auditability.
	ResidentInput datatypes.JSON `json:"resident_input,omitempty"`
	// SupportingDocuments is a JSON array of stored relative file paths.
	SupportingDocuments datatypes.JSON `json:"supporting_documents,omitempty"`

	Status          string `gorm:"size:16;not null;default:pending;index" json:"status"`
	AdminNotes      string `gorm:"size:1024" json:"admin_notes,omitempty"`
	RejectionReason string `gorm:"size:512" json:"rejection_reason,omitempty"`

	// DocumentFile is the generated certificate for digital delivery.
	DocumentFile *string `gorm:"size:512" json:"document_file,omitempty"`
	// QRCode is the stored claim-ticket QR image path; QRData carries the
	// encrypted claim code, its mask, and the pickup window.
	QRCode *string        `gorm:"size:512" json:"qr_code,omitempty"`
	QRData datatypes.JSON `json:"qr_data,omitempty"`

	ProcessedBy *uint      `gorm:"index" json:"processed_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
