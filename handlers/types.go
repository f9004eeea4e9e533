// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"neurostudy-server/models"
	"neurostudy-server/sources"
	"neurostudy-server/usage"
)

// swagger:model CreateRoadmapRequest
type CreateRoadmapRequest struct {
	// Title of the study roadmap
	Title string `json:"title" example:"Linear Algebra in 6 weeks"`
	// Free-form learning goal
	Goal string `json:"goal" example:"Pass the MIT 18.06 final"`
	// Input sources the roadmap is built from
	Sources []sources.StudySource `json:"sources"`
}

// swagger:model CreateRoadmapResponse
type CreateRoadmapResponse struct {
	// Generated roadmap content
	Roadmap string `json:"roadmap"`
	// Normalized sources the roadmap was built from
	Sources []sources.NormalizedSource `json:"sources"`
	// Tokens charged against the monthly budget
	TokensCharged int `json:"tokens_charged" example:"30040"`
	// Usage counters after this request
	Usage models.UsageSnapshot `json:"usage"`
	// Message indicating successful creation
	Message string `json:"message" example:"Roadmap created successfully"`
}

// swagger:model ChatRequest
type ChatRequest struct {
	// The user's message
	Message string `json:"message" example:"Explain eigenvalues like I'm five"`
	// Trailing conversation history, oldest first
	History []usage.ChatMessage `json:"history"`
	// Optional study context injected into the prompt
	Context string `json:"context"`
}

// swagger:model ChatResponse
type ChatResponse struct {
	// The assistant's reply
	Reply string `json:"reply"`
	// Tokens charged against the chat budget
	TokensCharged int `json:"tokens_charged" example:"1130"`
	// Usage counters after this request
	Usage models.UsageSnapshot `json:"usage"`
}

// swagger:model StudyToolRequest
type StudyToolRequest struct {
	// Study content to generate from
	Content string `json:"content"`
	// Number of items to generate
	Count int `json:"count" example:"10"`
}

// swagger:model StudyToolResponse
type StudyToolResponse struct {
	// Generated items as a JSON document
	Result string `json:"result"`
	// Tokens charged against the monthly budget
	TokensCharged int `json:"tokens_charged"`
	// Usage counters after this request
	Usage models.UsageSnapshot `json:"usage"`
}

// swagger:model WebResearchRequest
type WebResearchRequest struct {
	// Research query
	Query string `json:"query" example:"best free courses on compilers"`
}

// swagger:model WebResearchResponse
type WebResearchResponse struct {
	// Research summary
	Summary string `json:"summary"`
	// Web searches remaining this month
	SearchesRemaining int `json:"searches_remaining" example:"9"`
	// Usage counters after this request
	Usage models.UsageSnapshot `json:"usage"`
}

// swagger:model TranscribeRequest
type TranscribeRequest struct {
	// Video or transcript URL
	URL string `json:"url" example:"https://youtube.com/watch?v=dQw4w9WgXcQ"`
	// Video duration in minutes
	DurationMinutes int `json:"duration_minutes" example:"12"`
}

// swagger:model TranscribeResponse
type TranscribeResponse struct {
	// Plain transcript text
	Text string `json:"text"`
	// Minutes charged against the monthly budget
	MinutesCharged int `json:"minutes_charged" example:"12"`
	// Usage counters after this request
	Usage models.UsageSnapshot `json:"usage"`
}

// swagger:model PlanOption
type PlanOption struct {
	// Plan identifier
	Name string `json:"name" example:"starter"`
	// Display label
	Label string `json:"label" example:"Starter"`
	// Monthly price as displayed to clients
	Price string `json:"price" example:"R$ 29,90"`
	// Whether this plan is highlighted
	Recommended bool `json:"recommended"`
	// Feature bullet points
	Features []string `json:"features"`
}

// swagger:model GetPlansResponse
type GetPlansResponse struct {
	// Available plans in ascending price order
	Plans []PlanOption `json:"plans"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"Plans retrieved successfully"`
}

// swagger:model GetUserPlanResponse
type GetUserPlanResponse struct {
	// The user's current plan
	Plan string `json:"plan" example:"free"`
	// Whether the user bypasses quota checks
	IsAdmin bool `json:"is_admin"`
	// Usage counters for the current month
	Usage models.UsageSnapshot `json:"usage"`
	// The plan's monthly limits
	Limits models.PlanLimits `json:"limits"`
	// Month the counters belong to, YYYY-MM
	Month string `json:"month" example:"2026-08"`
}

// swagger:model CreateExtensionTokenRequest
type CreateExtensionTokenRequest struct {
	// Optional label for the token
	Name *string `json:"name" example:"Work laptop"`
}

// swagger:model CreateExtensionTokenResponse
type CreateExtensionTokenResponse struct {
	// The full token, shown only once
	Token string `json:"token" example:"ext_4f6a..."`
	// Public token prefix used for identification
	TokenID string `json:"token_id" example:"ext_4f6a9b..."`
	// Message indicating successful creation
	Message string `json:"message" example:"Extension token created successfully"`
}

// swagger:model CaptureSourceResponse
type CaptureSourceResponse struct {
	// Resolved source kind
	ResolvedType string `json:"resolved_type" example:"link_transcript"`
	// Extracted text preview, truncated
	Preview string `json:"preview"`
	// Character count of the extracted text
	CharCount int `json:"char_count"`
	// Set when the source cannot be used as-is
	Error string `json:"error,omitempty" example:"UNSUPPORTED_LINK_REQUIRES_TRANSCRIPT"`
	// Suggested client action when Error is set
	ActionSuggestion string `json:"action_suggestion,omitempty" example:"paste_transcript"`
}
