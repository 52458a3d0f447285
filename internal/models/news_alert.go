package models

import (
	"time"

	"gorm.io/gorm"
)

// NewsAlert is a market news item surfaced to a user.
type NewsAlert struct {
	gorm.Model
	UserID      uint      `gorm:"index" json:"user_id"`
	Symbol      string    `json:"symbol,omitempty"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Impact      string    `json:"impact,omitempty"` // "high", "medium" or "low"
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	IsRead      bool      `gorm:"default:false" json:"is_read"`
}
