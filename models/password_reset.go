package models

import "time"

// PasswordResetToken stores the sha256 hash of an emailed reset token.
// Tokens are single-use and expire after an hour.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:128;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"index;not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`

	LastIP    string `gorm:"size:64" json:"-"`
	UserAgent string `gorm:"size:255" json:"-"`
}

// Valid reports whether the token is unused and unexpired.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
