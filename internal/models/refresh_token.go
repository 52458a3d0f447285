package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken is an opaque long-lived token exchanged for new access tokens.
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
}
