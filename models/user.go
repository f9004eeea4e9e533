// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

var AllModels []any

// User mirrors the account record owned by the external identity provider.
// ExternalID is the identity-token subject; it is the key every other
// table uses, so a user row can be created lazily on first sight.
type User struct {
	ID                 uint    `gorm:"primaryKey"`
	ExternalID         string  `gorm:"size:64;not null;uniqueIndex"`
	Email              *string `gorm:"default:null"`
	SubscriptionStatus string  `gorm:"size:20;not null;default:'free'"`
	IsAdmin            bool    `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func init() {
	AllModels = append(AllModels, &User{})
}
