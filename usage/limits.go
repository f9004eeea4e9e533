// SPDX-License-Identifier: GPL-3.0-only

// Package usage implements plan admission control and the monthly
// usage ledger. Admission decisions are pure functions of their inputs;
// the ledger owns all counter mutation.
package usage

import (
	"strings"

	"neurostudy-server/models"
	"neurostudy-server/sources"
)

// ActionTaskType is the closed set of quota-checked actions. Each kind
// carries its own cost-estimation rule.
type ActionTaskType string

const (
	ActionRoadmap    ActionTaskType = "roadmap"
	ActionQuiz       ActionTaskType = "quiz"
	ActionFlashcards ActionTaskType = "flashcards"
	ActionChat       ActionTaskType = "chat"
	ActionWebSearch  ActionTaskType = "web_search"
	ActionYouTube    ActionTaskType = "youtube"
)

type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ActionOptions carries the cost-relevant attributes of the proposed
// action that are not sources: the chat input and trailing history, or
// the minutes of a video about to be transcribed.
type ActionOptions struct {
	TextInput      string
	ChatHistory    []ChatMessage
	YouTubeMinutes int
}

// UserAccess is the resolved account context for admission control.
type UserAccess struct {
	PlanName models.PlanName `json:"planName"`
	IsAdmin  bool            `json:"isAdmin"`
}

// ActionCheck is the admission decision. EstimatedTokens is populated
// for token-priced actions even when the action is denied.
type ActionCheck struct {
	Allowed          bool
	Reason           LimitReason
	ActionSuggestion sources.ActionSuggestion
	EstimatedTokens  int
}

func estimateTokens(chars int, plan models.PlanName, task models.TokenTaskType) int {
	inputTokens := (chars + 3) / 4
	outputTokens := models.LimitsFor(plan).MaxOutputTokens[task]
	return inputTokens + outputTokens
}

// EstimateTokensFromText prices a task from raw input text using the
// chars/4 heuristic plus the plan's flat output budget for the task.
func EstimateTokensFromText(text string, task models.TokenTaskType, plan models.PlanName) int {
	return estimateTokens(len(text), plan, task)
}

// EstimateTokensFromSources prices a task from the combined text of a
// source batch.
func EstimateTokensFromSources(list []sources.StudySource, task models.TokenTaskType, plan models.PlanName) int {
	totalChars := 0
	for _, source := range list {
		totalChars += len(sources.GetSourceText(source))
	}
	return estimateTokens(totalChars, plan, task)
}

// EstimateTokensFromChat prices a chat turn from the message plus the
// trailing five history entries.
func EstimateTokensFromChat(history []ChatMessage, message string, plan models.PlanName) int {
	recent := history
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	parts := make([]string, 0, len(recent)+1)
	for _, msg := range recent {
		parts = append(parts, msg.Text)
	}
	parts = append(parts, message)
	return EstimateTokensFromText(strings.Join(parts, "\n"), models.ChatTask, plan)
}

// CanPerformAction decides whether the proposed action fits the plan's
// remaining quota. Pure: no I/O, no mutation. The admin flag bypasses
// every quota dimension; it does not bypass the rate limiter, which is
// applied upstream.
func CanPerformAction(
	plan models.PlanName,
	snapshot models.UsageSnapshot,
	list []sources.StudySource,
	task ActionTaskType,
	opts ActionOptions,
	access UserAccess,
) ActionCheck {
	limits := models.LimitsFor(plan)

	switch task {
	case ActionWebSearch:
		if access.IsAdmin {
			return ActionCheck{Allowed: true}
		}
		if snapshot.WebResearchUsed >= limits.WebResearch {
			return ActionCheck{Reason: ReasonWebSearchLimit, ActionSuggestion: sources.SuggestViewPlans}
		}
		return ActionCheck{Allowed: true}

	case ActionYouTube:
		if access.IsAdmin {
			return ActionCheck{Allowed: true}
		}
		minutes := opts.YouTubeMinutes
		if minutes > limits.YouTubeMinutesPerVideo {
			return ActionCheck{Reason: ReasonYouTubeTooLong}
		}
		if snapshot.YouTubeMinutesUsed+minutes > limits.YouTubeMinutes {
			return ActionCheck{Reason: ReasonMonthlyLimit, ActionSuggestion: sources.SuggestViewPlans}
		}
		return ActionCheck{Allowed: true}

	case ActionRoadmap:
		estimated := EstimateTokensFromSources(list, models.RoadmapTask, plan)
		if access.IsAdmin {
			return ActionCheck{Allowed: true, EstimatedTokens: estimated}
		}
		if snapshot.RoadmapsCreated >= limits.Roadmaps {
			return ActionCheck{Reason: ReasonMonthlyLimit, ActionSuggestion: sources.SuggestViewPlans, EstimatedTokens: estimated}
		}
		if len(list) > limits.SourcesPerStudy {
			return ActionCheck{Reason: ReasonTooManySources, ActionSuggestion: sources.SuggestRemoveSources, EstimatedTokens: estimated}
		}
		if estimated > limits.MaxTokensPerRoadmap {
			return ActionCheck{Reason: ReasonRoadmapTooLarge, ActionSuggestion: sources.SuggestSplitRoadmap, EstimatedTokens: estimated}
		}
		if snapshot.MonthlyTokensUsed+estimated > limits.MonthlyTokens {
			return ActionCheck{Reason: ReasonMonthlyTokensExhausted, ActionSuggestion: sources.SuggestViewPlans, EstimatedTokens: estimated}
		}
		return ActionCheck{Allowed: true, EstimatedTokens: estimated}

	case ActionChat:
		estimated := EstimateTokensFromChat(opts.ChatHistory, opts.TextInput, plan)
		if access.IsAdmin {
			return ActionCheck{Allowed: true, EstimatedTokens: estimated}
		}
		if estimated > limits.MaxTokensPerChatMessage {
			return ActionCheck{Reason: ReasonChatMessageTooLarge, EstimatedTokens: estimated}
		}
		chatMonthlyTokens := limits.ChatMessages * limits.MaxTokensPerChatMessage
		if snapshot.ChatTokensUsed+estimated > chatMonthlyTokens {
			return ActionCheck{Reason: ReasonMonthlyTokensExhausted, ActionSuggestion: sources.SuggestViewPlans, EstimatedTokens: estimated}
		}
		if snapshot.MonthlyTokensUsed+estimated > limits.MonthlyTokens {
			return ActionCheck{Reason: ReasonMonthlyTokensExhausted, ActionSuggestion: sources.SuggestViewPlans, EstimatedTokens: estimated}
		}
		return ActionCheck{Allowed: true, EstimatedTokens: estimated}

	case ActionQuiz, ActionFlashcards:
		taskType := models.QuizTask
		if task == ActionFlashcards {
			taskType = models.FlashcardsTask
		}
		inputText := opts.TextInput
		if inputText == "" {
			parts := make([]string, 0, len(list))
			for _, source := range list {
				parts = append(parts, sources.GetSourceText(source))
			}
			inputText = strings.Join(parts, "\n")
		}
		estimated := EstimateTokensFromText(inputText, taskType, plan)
		if access.IsAdmin {
			return ActionCheck{Allowed: true, EstimatedTokens: estimated}
		}
		if snapshot.MonthlyTokensUsed+estimated > limits.MonthlyTokens {
			return ActionCheck{Reason: ReasonMonthlyTokensExhausted, ActionSuggestion: sources.SuggestViewPlans, EstimatedTokens: estimated}
		}
		return ActionCheck{Allowed: true, EstimatedTokens: estimated}
	}

	return ActionCheck{Allowed: true}
}
