// SPDX-License-Identifier: GPL-3.0-only

package sources

import (
	"fmt"
	"neurostudy-server/models"

	"github.com/google/uuid"
)

// PrepareSourcesForRoadmap validates and normalizes a batch of sources
// ahead of a roadmap generation call. Checks run cheapest first and the
// batch is all-or-nothing: the first unresolvable source aborts the
// whole request before any money is spent.
func PrepareSourcesForRoadmap(list []StudySource, plan models.PlanName, usage models.UsageSnapshot) PrepareSourcesResult {
	limits := models.LimitsFor(plan)

	if len(list) > limits.SourcesPerStudy {
		return PrepareSourcesResult{
			Error:            ErrTooManySources,
			ErrorMessage:     fmt.Sprintf("Maximum of %d sources per roadmap.", limits.SourcesPerStudy),
			ActionSuggestion: SuggestRemoveSources,
		}
	}

	if usage.RoadmapsCreated >= limits.Roadmaps {
		return PrepareSourcesResult{
			Error:            ErrMonthlyLimit,
			ErrorMessage:     "Monthly roadmap limit reached.",
			ActionSuggestion: SuggestViewPlans,
		}
	}

	normalized := make([]NormalizedSource, 0, len(list))
	totalCharCount := 0
	totalDurationMinutes := 0

	for _, source := range list {
		sourceType := DetectSourceType(source)
		sourceID := source.ID
		if sourceID == "" {
			sourceID = "src-" + uuid.NewString()
		}

		if sourceType == SourceUnsupportedLink {
			return PrepareSourcesResult{
				Error:            ErrUnsupportedLink,
				ErrorMessage:     "This link seems to require login or does not offer an accessible transcript.",
				ActionSuggestion: SuggestUploadFile,
			}
		}

		if sourceType == SourceYouTube {
			minutes := source.DurationMinutes

			if minutes > limits.YouTubeMinutesPerVideo {
				return PrepareSourcesResult{
					Error:            ErrVideoTooLong,
					ErrorMessage:     fmt.Sprintf("Video too long (%d min). Maximum: %d min.", minutes, limits.YouTubeMinutesPerVideo),
					ActionSuggestion: SuggestSplitRoadmap,
				}
			}

			if usage.YouTubeMinutesUsed+minutes+totalDurationMinutes > limits.YouTubeMinutes {
				return PrepareSourcesResult{
					Error:            ErrMonthlyLimit,
					ErrorMessage:     "Monthly video minute limit reached.",
					ActionSuggestion: SuggestViewPlans,
				}
			}

			totalDurationMinutes += minutes
		}

		if sourceType == SourceVideoUpload {
			minutes := source.DurationMinutes

			if minutes > limits.YouTubeMinutesPerVideo {
				return PrepareSourcesResult{
					Error:            ErrVideoTooLong,
					ErrorMessage:     fmt.Sprintf("Video too long (%d min). Maximum: %d min.", minutes, limits.YouTubeMinutesPerVideo),
					ActionSuggestion: SuggestSplitRoadmap,
				}
			}

			totalDurationMinutes += minutes
		}

		if sourceType == SourceLinkTranscript {
			url := source.Content
			if url == "" {
				url = source.TextContent
			}
			result := FetchTranscript(url)

			if result.Text == "" {
				reason := result.Err
				if reason == "" {
					reason = "unknown error"
				}
				return PrepareSourcesResult{
					Error:            ErrFetchFailed,
					ErrorMessage:     fmt.Sprintf("Could not download the transcript: %s", reason),
					ActionSuggestion: SuggestPasteTranscript,
				}
			}

			name := source.Name
			if name == "" {
				name = fmt.Sprintf("Transcript: %.30s...", url)
			}
			normalized = append(normalized, NormalizedSource{
				ID:            sourceID,
				OriginalType:  declaredTypeOr(source, "URL"),
				ResolvedType:  SourceLinkTranscript,
				Name:          name,
				ExtractedText: result.Text,
				CharCount:     len(result.Text),
			})
			totalCharCount += len(result.Text)
			continue
		}

		textContent := source.TextContent
		if textContent == "" {
			textContent = source.Content
		}

		name := source.Name
		if name == "" {
			name = "Unnamed source"
		}
		normalized = append(normalized, NormalizedSource{
			ID:              sourceID,
			OriginalType:    declaredTypeOr(source, "TEXT"),
			ResolvedType:    sourceType,
			Name:            name,
			ExtractedText:   textContent,
			CharCount:       len(textContent),
			DurationMinutes: source.DurationMinutes,
		})
		totalCharCount += len(textContent)
	}

	// chars/4 is a deliberate approximation. True cost is reconciled
	// against provider-reported usage after the call.
	inputTokens := (totalCharCount + 3) / 4
	outputTokens := limits.MaxOutputTokens[models.RoadmapTask]
	if outputTokens == 0 {
		outputTokens = 8000
	}
	estimatedTokens := inputTokens + outputTokens

	if estimatedTokens > limits.MaxTokensPerRoadmap {
		return PrepareSourcesResult{
			Error:            ErrRoadmapTooLarge,
			ErrorMessage:     "Content too large. Split it into smaller roadmaps or remove some sources.",
			ActionSuggestion: SuggestSplitRoadmap,
			EstimatedTokens:  estimatedTokens,
		}
	}

	if usage.MonthlyTokensUsed+estimatedTokens > limits.MonthlyTokens {
		return PrepareSourcesResult{
			Error:            ErrMonthlyLimit,
			ErrorMessage:     "Monthly processing limit reached.",
			ActionSuggestion: SuggestViewPlans,
			EstimatedTokens:  estimatedTokens,
		}
	}

	return PrepareSourcesResult{
		Success:              true,
		Sources:              normalized,
		TotalCharCount:       totalCharCount,
		TotalDurationMinutes: totalDurationMinutes,
		EstimatedTokens:      estimatedTokens,
	}
}

func declaredTypeOr(source StudySource, fallback string) string {
	if source.Type != "" {
		return source.Type
	}
	return fallback
}
