// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

// ExtensionToken is an API token issued to the browser extension.
// TokenID is the public prefix used for lookup; the full token is
// stored only as an argon2id hash.
type ExtensionToken struct {
	ID         uint    `gorm:"primaryKey"`
	TokenID    string  `gorm:"size:255;not null;uniqueIndex"`
	HashedKey  string  `gorm:"size:255;not null"`
	Name       *string `gorm:"size:255;default:null"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	UserID     string         `gorm:"size:64;not null;index"`
}

func init() {
	AllModels = append(AllModels, &ExtensionToken{})
}
