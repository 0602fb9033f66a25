package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records an administrative action against an entity within a
// municipality. Rows are append-only.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	UserID         *uint `gorm:"index" json:"user_id,omitempty"`
	MunicipalityID uint  `gorm:"not null;index:idx_audit_muni" json:"municipality_id"`

	EntityType string `gorm:"size:50;not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   *uint  `gorm:"index:idx_audit_entity" json:"entity_id,omitempty"`
	Action     string `gorm:"size:50;not null" json:"action"`
	ActorRole  string `gorm:"size:20" json:"actor_role,omitempty"`

	OldValues datatypes.JSON `json:"old_values,omitempty"`
	NewValues datatypes.JSON `json:"new_values,omitempty"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
}
