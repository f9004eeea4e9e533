// SPDX-License-Identifier: GPL-3.0-only

package models

type PlanName string

const (
	FreePlan    PlanName = "free"
	StarterPlan PlanName = "starter"
	ProPlan     PlanName = "pro"
)

// TokenTaskType identifies a generation task with its own output-token budget.
type TokenTaskType string

const (
	RoadmapTask    TokenTaskType = "roadmap"
	QuizTask       TokenTaskType = "quiz"
	FlashcardsTask TokenTaskType = "flashcards"
	ChatTask       TokenTaskType = "chat"
)

type PlanLimits struct {
	Roadmaps                int
	SourcesPerStudy         int
	PagesPerSource          int
	YouTubeMinutes          int
	YouTubeMinutesPerVideo  int
	WebResearch             int
	ChatMessages            int
	MonthlyTokens           int
	MaxTokensPerRoadmap     int
	MaxTokensPerChatMessage int
	MaxOutputTokens         map[TokenTaskType]int
}

var PlanLabels = map[PlanName]string{
	FreePlan:    "Free",
	StarterPlan: "Starter",
	ProPlan:     "Pro",
}

var PlanPrices = map[PlanName]string{
	FreePlan:    "R$ 0",
	StarterPlan: "R$ 29,90",
	ProPlan:     "R$ 59,90",
}

var planLimits = map[PlanName]PlanLimits{
	FreePlan: {
		Roadmaps:                3,
		SourcesPerStudy:         2,
		PagesPerSource:          30,
		YouTubeMinutes:          30,
		YouTubeMinutesPerVideo:  30,
		WebResearch:             10,
		ChatMessages:            50,
		MonthlyTokens:           500_000,
		MaxTokensPerRoadmap:     100_000,
		MaxTokensPerChatMessage: 5_000,
		MaxOutputTokens: map[TokenTaskType]int{
			RoadmapTask:    30_000,
			QuizTask:       3_000,
			FlashcardsTask: 5_000,
			ChatTask:       1_000,
		},
	},
	StarterPlan: {
		Roadmaps:                25,
		SourcesPerStudy:         10,
		PagesPerSource:          200,
		YouTubeMinutes:          200,
		YouTubeMinutesPerVideo:  60,
		WebResearch:             50,
		ChatMessages:            500,
		MonthlyTokens:           5_000_000,
		MaxTokensPerRoadmap:     300_000,
		MaxTokensPerChatMessage: 10_000,
		MaxOutputTokens: map[TokenTaskType]int{
			RoadmapTask:    50_000,
			QuizTask:       5_000,
			FlashcardsTask: 10_000,
			ChatTask:       2_000,
		},
	},
	ProPlan: {
		Roadmaps:                100,
		SourcesPerStudy:         20,
		PagesPerSource:          500,
		YouTubeMinutes:          1_000,
		YouTubeMinutesPerVideo:  120,
		WebResearch:             200,
		ChatMessages:            2_000,
		MonthlyTokens:           20_000_000,
		MaxTokensPerRoadmap:     500_000,
		MaxTokensPerChatMessage: 20_000,
		MaxOutputTokens: map[TokenTaskType]int{
			RoadmapTask:    80_000,
			QuizTask:       10_000,
			FlashcardsTask: 20_000,
			ChatTask:       4_000,
		},
	},
}

// LimitsFor is total over plan names; unknown names resolve to the free tier.
func LimitsFor(plan PlanName) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[FreePlan]
}

// MapPlanName normalizes a stored subscription status to a plan name.
// "premium" is the legacy label for the pro tier.
func MapPlanName(status string) PlanName {
	switch status {
	case "free", "starter", "pro":
		return PlanName(status)
	case "premium":
		return ProPlan
	default:
		return FreePlan
	}
}
