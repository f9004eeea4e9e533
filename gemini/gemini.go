// SPDX-License-Identifier: GPL-3.0-only

// Package gemini wraps the Google Gemini API for generation tasks. It
// owns model selection, the per-call timeout, and the bounded backoff
// retry on provider overload. It never makes admission decisions; the
// caller must have passed admission control before any Call.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neurostudy-server/commons"
	"neurostudy-server/models"

	"google.golang.org/genai"
)

// TaskType selects a model, independent of the token-budget task type.
type TaskType string

const (
	TaskChat          TaskType = "chat"
	TaskTool          TaskType = "tool"
	TaskTranscription TaskType = "transcription"
	TaskStudyGuide    TaskType = "studyGuide"
	TaskQuiz          TaskType = "quiz"
	TaskFlashcard     TaskType = "flashcard"
	TaskSlides        TaskType = "slides"
	TaskDiagram       TaskType = "diagram"
)

const (
	defaultFlashModel = "gemini-2.0-flash"
	defaultProModel   = "gemini-pro-latest"

	maxRetries     = 3
	baseRetryDelay = 2 * time.Second
)

type CallOptions struct {
	Plan       models.PlanName
	BudgetTask models.TokenTaskType
	Prompt     string

	// Model overrides selection when set.
	Model             string
	SystemInstruction string
	ResponseMIMEType  string
	Temperature       *float64
	Timeout           time.Duration
}

// CallResult carries the response text and the provider-reported token
// usage. UsageTokens is nil when no reconciliation data is available;
// callers then fall back to their pre-call estimate.
type CallResult struct {
	Text        string
	UsageTokens *int
}

func flashModel() string {
	return commons.GetEnv("GEMINI_MODEL_FLASH", defaultFlashModel)
}

func proModel() string {
	return commons.GetEnv("GEMINI_MODEL_PRO", defaultProModel)
}

// SelectModel picks flash for cheap interactive tasks and the pro model
// only for heavy study guides (books, large content, many sources).
func SelectModel(task TaskType, contentLength, sourceCount int, isBook bool) string {
	switch task {
	case TaskChat, TaskTool, TaskTranscription, TaskQuiz, TaskFlashcard:
		return flashModel()
	case TaskDiagram:
		return commons.GetEnv("GEMINI_MODEL_DIAGRAM", flashModel())
	case TaskStudyGuide, TaskSlides:
		if isBook || contentLength > 50_000 || sourceCount >= 3 {
			return proModel()
		}
		return flashModel()
	}
	return flashModel()
}

// isRetryable reports whether the provider error is a transient
// overload (429/503-class) worth retrying.
func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "503") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "UNAVAILABLE")
}

// Call issues one generation request with the plan's output-token budget
// for the task, retrying transient overloads with doubling delays. It
// either resolves or returns an error within the timeout budget; it
// never hangs.
func Call(ctx context.Context, opts CallOptions) (*CallResult, error) {
	apiKey := commons.GetEnv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY missing")
	}

	model := opts.Model
	if model == "" {
		model = flashModel()
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	config := &genai.GenerateContentConfig{}
	if budget := models.LimitsFor(opts.Plan).MaxOutputTokens[opts.BudgetTask]; budget > 0 {
		config.MaxOutputTokens = int32(budget)
	}
	if opts.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.SystemInstruction}},
		}
	}
	if opts.ResponseMIMEType != "" {
		config.ResponseMIMEType = opts.ResponseMIMEType
	}
	if opts.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*opts.Temperature))
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: opts.Prompt}},
		Role:  "user",
	}}

	var resp *genai.GenerateContentResponse
	delay := baseRetryDelay
	for attempt := 0; ; attempt++ {
		resp, err = client.Models.GenerateContent(ctx, model, contents, config)
		if err == nil {
			break
		}
		if attempt >= maxRetries || !isRetryable(err) {
			return nil, fmt.Errorf("Gemini generation failed: %w", err)
		}
		commons.Logger.Warnf("Gemini overloaded (attempt %d/%d), retrying in %s: %v", attempt+1, maxRetries, delay, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var text strings.Builder
	if content := resp.Candidates[0].Content; content != nil {
		for _, part := range content.Parts {
			if part.Text != "" && !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}

	var usageTokens *int
	if resp.UsageMetadata != nil && resp.UsageMetadata.TotalTokenCount > 0 {
		total := int(resp.UsageMetadata.TotalTokenCount)
		usageTokens = &total
	} else if counted := CountResponseTokens(text.String()); counted != nil {
		usageTokens = counted
	}

	return &CallResult{Text: text.String(), UsageTokens: usageTokens}, nil
}
