package models

import (
	"time"

	"gorm.io/datatypes"
)

// Issue statuses.
const (
	IssueOpen       = "open"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
	IssueDismissed  = "dismissed"
)

// IssueCategory classifies resident issue reports (roads, drainage,
// streetlights, garbage collection and the like).
type IssueCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name        string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description string `gorm:"size:512" json:"description,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

// Issue is a resident's report of a local problem for the municipality to
// triage.
type Issue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID         uint          `gorm:"index;not null" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MunicipalityID uint          `gorm:"index;not null" json:"municipality_id"`
	Municipality   *Municipality `gorm:"foreignKey:MunicipalityID" json:"municipality,omitempty"`

	CategoryID *uint          `gorm:"index" json:"category_id,omitempty"`
	Category   *IssueCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	// CategoryLabel denormalizes the category name at report time so the
	// label survives catalog edits.
	CategoryLabel string `gorm:"size:120" json:"category_label,omitempty"`

	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"size:2048;not null" json:"description"`
	Location    string         `gorm:"size:512" json:"location,omitempty"`
	Photos      datatypes.JSON `json:"photos,omitempty"`

	Status          string     `gorm:"size:16;not null;default:open;index" json:"status"`
	ResolutionNotes string     `gorm:"size:1024" json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}
