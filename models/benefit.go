package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BenefitProgram is a municipal (or province-wide, when MunicipalityID is
// nil) assistance program residents can apply to.
type BenefitProgram struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Code        string `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"size:1024" json:"description,omitempty"`
	ProgramType string `gorm:"size:64;default:general;index" json:"program_type"`

	MunicipalityID *uint         `gorm:"index" json:"municipality_id"`
	Municipality   *Municipality `gorm:"foreignKey:MunicipalityID" json:"municipality,omitempty"`

	// RequiredDocuments is a JSON array of attachment names applicants must
	// provide.
	RequiredDocuments datatypes.JSON `json:"required_documents,omitempty"`

	Amount           *decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount,omitempty"`
	MaxBeneficiaries int              `gorm:"default:0" json:"max_beneficiaries"`
	// DurationDays bounds how long the program stays open; elapsed programs
	// are auto-completed on listing.
	DurationDays int `gorm:"default:0" json:"duration_days"`

	IsActive                bool       `gorm:"default:true;index" json:"is_active"`
	IsAcceptingApplications bool       `gorm:"default:true" json:"is_accepting_applications"`
	CompletedAt             *time.Time `json:"completed_at,omitempty"`

	// CurrentBeneficiaries is computed per listing as the count of approved
	// applications; it is not persisted.
	CurrentBeneficiaries int64 `gorm:"-" json:"current_beneficiaries"`
}

// BenefitApplication is a resident's application to a benefit program.
type BenefitApplication struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ApplicationNumber string `gorm:"size:64;not null;uniqueIndex" json:"application_number"`

	UserID    uint            `gorm:"index;not null" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProgramID uint            `gorm:"index;not null" json:"program_id"`
	Program   *BenefitProgram `gorm:"foreignKey:ProgramID" json:"program,omitempty"`

	ApplicationData     datatypes.JSON `json:"application_data,omitempty"`
	SupportingDocuments datatypes.JSON `json:"supporting_documents,omitempty"`

	Status  string `gorm:"size:16;not null;default:pending;index" json:"status"`
	Remarks string `gorm:"size:1024" json:"remarks,omitempty"`

	ReviewedBy  *uint      `gorm:"index" json:"reviewed_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
