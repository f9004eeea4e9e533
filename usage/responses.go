// SPDX-License-Identifier: GPL-3.0-only

package usage

import "neurostudy-server/sources"

// LimitReason is the stable denial code returned to clients.
type LimitReason string

const (
	ReasonMonthlyLimit           LimitReason = "monthly_limit"
	ReasonMonthlyTokensExhausted LimitReason = "monthly_tokens_exhausted"
	ReasonRoadmapTooLarge        LimitReason = "roadmap_too_large"
	ReasonYouTubeTooLong         LimitReason = "youtube_too_long"
	ReasonTooManySources         LimitReason = "too_many_sources"
	ReasonChatMessageTooLarge    LimitReason = "chat_message_too_large"
	ReasonWebSearchLimit         LimitReason = "web_search_limit"
	ReasonRateLimited            LimitReason = "rate_limited"
)

var reasonMessages = map[LimitReason]string{
	ReasonMonthlyLimit:           "You have reached your plan's monthly limit.",
	ReasonMonthlyTokensExhausted: "You have reached your plan's monthly token limit.",
	ReasonRoadmapTooLarge:        "This study got too large. Split it into smaller parts.",
	ReasonYouTubeTooLong:         "This video exceeds your plan's per-video limit.",
	ReasonTooManySources:         "Your plan allows fewer sources per roadmap.",
	ReasonChatMessageTooLarge:    "Split your question into smaller parts to continue.",
	ReasonWebSearchLimit:         "You have reached your plan's monthly web search limit.",
	ReasonRateLimited:            "Too many requests in a short time. Try again in a moment.",
}

// LimitResponse is the denial body rendered to end clients: a stable
// reason code, a human message, and machine-actionable suggestions.
type LimitResponse struct {
	Reason  LimitReason `json:"reason"`
	Message string      `json:"message"`
	Actions []string    `json:"actions"`
}

func suggestionToActions(suggestion sources.ActionSuggestion) []string {
	switch suggestion {
	case sources.SuggestSplitRoadmap, sources.SuggestRemoveSources, sources.SuggestViewPlans:
		return []string{string(suggestion)}
	}
	return []string{}
}

func BuildLimitResponse(reason LimitReason, suggestion sources.ActionSuggestion) LimitResponse {
	message, ok := reasonMessages[reason]
	if !ok {
		message = "Limit reached."
	}
	return LimitResponse{
		Reason:  reason,
		Message: message,
		Actions: suggestionToActions(suggestion),
	}
}
