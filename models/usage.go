// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

// MonthlyUsage is the durable per-(user, month) usage ledger row.
// Created lazily on first access in a month, mutated only by additive
// deltas, never deleted by this service.
type MonthlyUsage struct {
	ID                  uint     `gorm:"primaryKey"`
	UserID              string   `gorm:"size:64;not null;uniqueIndex:idx_user_month"`
	Month               string   `gorm:"size:7;not null;uniqueIndex:idx_user_month"`
	Plan                PlanName `gorm:"size:20;not null;default:'free'"`
	RoadmapsCreated     int      `gorm:"not null;default:0"`
	WebSearchesUsed     int      `gorm:"not null;default:0"`
	YouTubeMinutesUsed  int      `gorm:"column:youtube_minutes_used;not null;default:0"`
	ChatMessages        int      `gorm:"not null;default:0"`
	TokensEstimated     int      `gorm:"not null;default:0"`
	TokensUsed          int      `gorm:"not null;default:0"`
	ChatTokensEstimated int      `gorm:"not null;default:0"`
	ChatTokensUsed      int      `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UsageDeltas names the counters an increment may touch. Zero-valued
// fields leave the corresponding counter untouched.
type UsageDeltas struct {
	RoadmapsCreated     int
	WebSearchesUsed     int
	YouTubeMinutesUsed  int
	ChatMessages        int
	TokensEstimated     int
	TokensUsed          int
	ChatTokensEstimated int
	ChatTokensUsed      int
}

// UsageSnapshot is the read-only view admission control works from.
type UsageSnapshot struct {
	RoadmapsCreated    int `json:"roadmaps_created"`
	YouTubeMinutesUsed int `json:"youtube_minutes_used"`
	WebResearchUsed    int `json:"web_research_used"`
	ChatMessages       int `json:"chat_messages"`
	MonthlyTokensUsed  int `json:"monthly_tokens_used"`
	ChatTokensUsed     int `json:"chat_tokens_used"`
}

func NewEmptyUsage(userID, month string, plan PlanName) MonthlyUsage {
	now := time.Now().UTC()
	return MonthlyUsage{
		UserID:    userID,
		Month:     month,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot projects the row onto the counters admission control reads.
// Token usage prefers the estimated counter; the provider-reported
// counter is the fallback when no estimates were recorded.
func (u *MonthlyUsage) Snapshot() UsageSnapshot {
	if u == nil {
		return UsageSnapshot{}
	}
	monthlyTokens := u.TokensEstimated
	if monthlyTokens == 0 {
		monthlyTokens = u.TokensUsed
	}
	chatTokens := u.ChatTokensEstimated
	if chatTokens == 0 {
		chatTokens = u.ChatTokensUsed
	}
	return UsageSnapshot{
		RoadmapsCreated:    u.RoadmapsCreated,
		YouTubeMinutesUsed: u.YouTubeMinutesUsed,
		WebResearchUsed:    u.WebSearchesUsed,
		ChatMessages:       u.ChatMessages,
		MonthlyTokensUsed:  monthlyTokens,
		ChatTokensUsed:     chatTokens,
	}
}

func init() {
	AllModels = append(AllModels, &MonthlyUsage{})
}
