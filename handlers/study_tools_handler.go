// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"neurostudy-server/gemini"
	"neurostudy-server/models"
	"neurostudy-server/usage"

	"github.com/labstack/echo/v4"
)

// CreateQuizHandler godoc
// @Summary      Generate a quiz
// @Description  Generates multiple-choice quiz questions from study content and charges the estimated tokens against the monthly budget.
// @Tags         study-tools
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Param        request  body  StudyToolRequest  true  "Quiz request"
// @Success      200 {object} StudyToolResponse "Quiz generated"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      402 {object} usage.LimitResponse "Plan limit reached"
// @Failure      429 {object} usage.LimitResponse "Rate limited"
// @Failure      502 {object} echo.HTTPError "Generation failed"
// @Router       /v1/ai/quiz [post]
func CreateQuizHandler(c echo.Context) error {
	return runStudyTool(c, studyTool{
		Scope:      "quiz",
		RateLimit:  10,
		ActionTask: usage.ActionQuiz,
		BudgetTask: models.QuizTask,
		ModelTask:  gemini.TaskQuiz,
		Prompt: func(req *StudyToolRequest) string {
			return fmt.Sprintf(
				"Generate %d multiple-choice quiz questions as a JSON array of {question, options, answer_index, explanation} from the material below.\n\n%s",
				itemCount(req.Count, 10), req.Content)
		},
	})
}

// CreateFlashcardsHandler godoc
// @Summary      Generate flashcards
// @Description  Generates flashcards from study content and charges the estimated tokens against the monthly budget.
// @Tags         study-tools
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Param        request  body  StudyToolRequest  true  "Flashcards request"
// @Success      200 {object} StudyToolResponse "Flashcards generated"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      402 {object} usage.LimitResponse "Plan limit reached"
// @Failure      429 {object} usage.LimitResponse "Rate limited"
// @Failure      502 {object} echo.HTTPError "Generation failed"
// @Router       /v1/ai/flashcards [post]
func CreateFlashcardsHandler(c echo.Context) error {
	return runStudyTool(c, studyTool{
		Scope:      "flashcards",
		RateLimit:  10,
		ActionTask: usage.ActionFlashcards,
		BudgetTask: models.FlashcardsTask,
		ModelTask:  gemini.TaskFlashcard,
		Prompt: func(req *StudyToolRequest) string {
			return fmt.Sprintf(
				"Generate %d flashcards as a JSON array of {front, back} from the material below.\n\n%s",
				itemCount(req.Count, 20), req.Content)
		},
	})
}

type studyTool struct {
	Scope      string
	RateLimit  int
	ActionTask usage.ActionTaskType
	BudgetTask models.TokenTaskType
	ModelTask  gemini.TaskType
	Prompt     func(req *StudyToolRequest) string
}

func itemCount(requested, fallback int) int {
	if requested > 0 && requested <= 50 {
		return requested
	}
	return fallback
}

func runStudyTool(c echo.Context, tool studyTool) error {
	logger := c.Logger()

	rc, err := resolveRequestContext(c)
	if err != nil {
		return err
	}

	if ok, resp := enforceRateLimit(c, tool.Scope, rc.UserID, tool.RateLimit); !ok {
		return resp
	}

	req := new(StudyToolRequest)
	if err := c.Bind(req); err != nil {
		logger.Error("Failed to bind study tool request: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		}
	}
	if strings.TrimSpace(req.Content) == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Content is required",
		}
	}

	check := usage.CanPerformAction(rc.Access.PlanName, rc.Snapshot, nil, tool.ActionTask, usage.ActionOptions{
		TextInput: req.Content,
	}, rc.Access)
	if !check.Allowed {
		return denyAction(c, check)
	}

	result, err := gemini.Call(c.Request().Context(), gemini.CallOptions{
		Plan:             rc.Access.PlanName,
		BudgetTask:       tool.BudgetTask,
		Prompt:           tool.Prompt(req),
		Model:            gemini.SelectModel(tool.ModelTask, len(req.Content), 1, false),
		ResponseMIMEType: "application/json",
		Timeout:          60 * time.Second,
	})
	if err != nil {
		logger.Error("Study tool generation failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadGateway,
			Message: "Generation failed, please try again",
		}
	}

	tokensUsed := check.EstimatedTokens
	if result.UsageTokens != nil {
		tokensUsed = *result.UsageTokens
	}

	row := usage.Increment(rc.UserID, rc.Month, rc.Access.PlanName, models.UsageDeltas{
		TokensEstimated: check.EstimatedTokens,
		TokensUsed:      tokensUsed,
	})

	return c.JSON(http.StatusOK, StudyToolResponse{
		Result:        result.Text,
		TokensCharged: tokensUsed,
		Usage:         row.Snapshot(),
	})
}
