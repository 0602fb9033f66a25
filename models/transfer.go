package models

import "time"

// TransferRequest tracks a resident's request to move their registration to
// another municipality. Only one pending request may exist per user.
type TransferRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint  `gorm:"index;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	FromMunicipalityID uint          `gorm:"index;not null" json:"from_municipality_id"`
	FromMunicipality   *Municipality `gorm:"foreignKey:FromMunicipalityID" json:"from_municipality,omitempty"`
	ToMunicipalityID   uint          `gorm:"index;not null" json:"to_municipality_id"`
	ToMunicipality     *Municipality `gorm:"foreignKey:ToMunicipalityID" json:"to_municipality,omitempty"`

	Notes  string `gorm:"size:1024" json:"notes,omitempty"`
	Status string `gorm:"size:16;not null;default:pending;index" json:"status"`

	ReviewedBy *uint      `gorm:"index" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}
