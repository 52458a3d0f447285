package models

import (
	"time"

	"gorm.io/gorm"
)

// Badge is an achievement granted once per type per user. Grants are
// append-only; a badge is never revoked by re-evaluation.
type Badge struct {
	gorm.Model
	UserID      uint      `gorm:"uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeType   string    `gorm:"uniqueIndex:idx_user_badge" json:"badge_type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AwardedAt   time.Time `json:"awarded_date"`
}
