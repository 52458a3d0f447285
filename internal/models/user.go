package models

import "gorm.io/gorm"

// User represents a journal account.
type User struct {
	gorm.Model
	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string `gorm:"not null" json:"-"`
	FullName       string `json:"full_name,omitempty"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
	IsVerified     bool   `gorm:"default:false" json:"is_verified"`
	IsAdmin        bool   `gorm:"default:false" json:"is_admin"`

	// Per-user broker terminal credentials. Empty means the account
	// configured in config.yml is used instead.
	MT5Server string `json:"-"`
	MT5Login  int64  `json:"-"`
}
