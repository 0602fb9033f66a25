package models

import "time"

// Municipality is one of the province's local government units.
type Municipality struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name        string `gorm:"size:120;not null" json:"name"`
	Slug        string `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	PSGCCode    string `gorm:"column:psgc_code;size:16;not null;uniqueIndex" json:"psgc_code"`
	Description string `gorm:"size:512" json:"description,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Barangays []Barangay `gorm:"foreignKey:MunicipalityID" json:"barangays,omitempty"`
}

// Barangay is a district within a municipality.
type Barangay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	MunicipalityID uint   `gorm:"index;not null;uniqueIndex:idx_muni_brgy_slug" json:"municipality_id"`
	Name           string `gorm:"size:120;not null" json:"name"`
	Slug           string `gorm:"size:120;not null;uniqueIndex:idx_muni_brgy_slug" json:"slug"`
}
