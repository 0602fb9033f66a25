package models

import (
	"time"
)

// User roles. Residents transact with their municipality; municipal admins
// process requests for the municipality they are assigned to.
const (
	RoleResident       = "resident"
	RoleMunicipalAdmin = "municipal_admin"
)

// Verification statuses for a resident account.
const (
	VerificationUnsubmitted = "unsubmitted"
	VerificationPending     = "pending"
	VerificationVerified    = "verified"
	VerificationRejected    = "rejected"
)

// User is a resident or municipal admin account. Usernames are stored
// lowercase; login matching is case-insensitive.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"-"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Username     string `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Email        string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash []byte `gorm:"not null" json:"-"`

	FirstName   string     `gorm:"size:120" json:"first_name"`
	MiddleName  string     `gorm:"size:120" json:"middle_name,omitempty"`
	LastName    string     `gorm:"size:120" json:"last_name"`
	Phone       string     `gorm:"size:32" json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	Role string `gorm:"size:32;not null;default:resident;index" json:"role"`

	MunicipalityID *uint         `gorm:"index" json:"municipality_id"`
	Municipality   *Municipality `gorm:"foreignKey:MunicipalityID" json:"municipality,omitempty"`
	BarangayID     *uint         `gorm:"index" json:"barangay_id"`
	Barangay       *Barangay     `gorm:"foreignKey:BarangayID" json:"barangay,omitempty"`

	// Municipality this account administers (municipal_admin only).
	AdminMunicipalityID *uint `gorm:"index" json:"admin_municipality_id,omitempty"`

	EmailVerified      bool   `gorm:"default:false" json:"email_verified"`
	AdminVerified      bool   `gorm:"default:false" json:"admin_verified"`
	VerificationStatus string `gorm:"size:32;default:unsubmitted" json:"verification_status"`
	IsActive           bool   `gorm:"default:true" json:"is_active"`

	// Stored relative paths of the identity verification uploads.
	ValidIDFront     *string `gorm:"size:512" json:"valid_id_front,omitempty"`
	ValidIDBack      *string `gorm:"size:512" json:"valid_id_back,omitempty"`
	SelfieWithID     *string `gorm:"size:512" json:"selfie_with_id,omitempty"`
	ProofOfResidency *string `gorm:"size:512" json:"proof_of_residency,omitempty"`

	RejectionReason *string    `gorm:"size:512" json:"rejection_reason,omitempty"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
}

// FullyVerified reports whether the account may use verified-only operations
// (document requests, benefit applications, marketplace, issue reporting).
func (u *User) FullyVerified() bool {
	return u.EmailVerified && u.AdminVerified && u.IsActive
}
