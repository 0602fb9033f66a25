package models

import (
	"time"

	"gorm.io/datatypes"
)

// Announcement is a municipal (or province-wide) public notice.
type Announcement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MunicipalityID *uint         `gorm:"index" json:"municipality_id"`
	Municipality   *Municipality `gorm:"foreignKey:MunicipalityID" json:"municipality,omitempty"`
	AuthorID       uint          `gorm:"index;not null" json:"author_id"`

	Title    string         `gorm:"size:255;not null" json:"title"`
	Content  string         `gorm:"size:4096;not null" json:"content"`
	Category string         `gorm:"size:64;index" json:"category,omitempty"`
	Images   datatypes.JSON `json:"images,omitempty"`

	IsPublished bool       `gorm:"default:true;index" json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
