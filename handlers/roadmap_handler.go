// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"neurostudy-server/gemini"
	"neurostudy-server/models"
	"neurostudy-server/notifications"
	"neurostudy-server/sources"
	"neurostudy-server/usage"

	"github.com/labstack/echo/v4"
)

// CreateRoadmapHandler godoc
// @Summary      Create a study roadmap
// @Description  Normalizes the submitted sources, checks the user's plan quota, generates a roadmap and charges the estimated tokens against the monthly budget.
// @Tags         roadmaps
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Param        request  body  CreateRoadmapRequest  true  "Roadmap request"
// @Success      200 {object} CreateRoadmapResponse "Roadmap created successfully"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      402 {object} usage.LimitResponse "Plan limit reached"
// @Failure      422 {object} sources.PrepareSourcesResult "Sources could not be normalized"
// @Failure      429 {object} usage.LimitResponse "Rate limited"
// @Failure      502 {object} echo.HTTPError "Generation failed"
// @Router       /v1/ai/roadmap [post]
func CreateRoadmapHandler(c echo.Context) error {
	logger := c.Logger()

	rc, err := resolveRequestContext(c)
	if err != nil {
		return err
	}

	if ok, resp := enforceRateLimit(c, "roadmap", rc.UserID, 10); !ok {
		return resp
	}

	req := new(CreateRoadmapRequest)
	if err := c.Bind(req); err != nil {
		logger.Error("Failed to bind roadmap request: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		}
	}
	if len(req.Sources) == 0 {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "At least one source is required",
		}
	}

	check := usage.CanPerformAction(rc.Access.PlanName, rc.Snapshot, req.Sources, usage.ActionRoadmap, usage.ActionOptions{}, rc.Access)
	if !check.Allowed {
		return denyAction(c, check)
	}

	prep := sources.PrepareSourcesForRoadmap(req.Sources, rc.Access.PlanName, rc.Snapshot)
	if !prep.Success {
		status := http.StatusUnprocessableEntity
		if prep.Error == sources.ErrMonthlyLimit || prep.Error == sources.ErrRoadmapTooLarge {
			status = http.StatusPaymentRequired
		}
		return c.JSON(status, prep)
	}

	var content strings.Builder
	for _, src := range prep.Sources {
		fmt.Fprintf(&content, "## %s\n%s\n\n", src.Name, src.ExtractedText)
	}

	model := gemini.SelectModel(gemini.TaskStudyGuide, prep.TotalCharCount, len(prep.Sources), false)
	prompt := buildRoadmapPrompt(req.Title, req.Goal, content.String())

	result, err := gemini.Call(c.Request().Context(), gemini.CallOptions{
		Plan:       rc.Access.PlanName,
		BudgetTask: models.RoadmapTask,
		Prompt:     prompt,
		Model:      model,
		Timeout:    120 * time.Second,
	})
	if err != nil {
		logger.Error("Roadmap generation failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadGateway,
			Message: "Roadmap generation failed, please try again",
		}
	}

	tokensUsed := prep.EstimatedTokens
	if result.UsageTokens != nil {
		tokensUsed = *result.UsageTokens
	}

	row := usage.Increment(rc.UserID, rc.Month, rc.Access.PlanName, models.UsageDeltas{
		RoadmapsCreated:    1,
		YouTubeMinutesUsed: prep.TotalDurationMinutes,
		TokensEstimated:    prep.EstimatedTokens,
		TokensUsed:         tokensUsed,
	})

	maybeSendQuotaWarning(c, rc.UserID, rc.Access.PlanName, row)

	return c.JSON(http.StatusOK, CreateRoadmapResponse{
		Roadmap:       result.Text,
		Sources:       prep.Sources,
		TokensCharged: tokensUsed,
		Usage:         row.Snapshot(),
		Message:       "Roadmap created successfully",
	})
}

func buildRoadmapPrompt(title, goal, content string) string {
	var b strings.Builder
	b.WriteString("You are a study planner. Build a structured, week-by-week study roadmap in Markdown from the material below.\n")
	if title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}
	if goal != "" {
		fmt.Fprintf(&b, "Learning goal: %s\n", goal)
	}
	b.WriteString("\n# Material\n\n")
	b.WriteString(content)
	return b.String()
}

// maybeSendQuotaWarning emails the user once they cross 80% of the
// monthly roadmap quota. Best effort; failures only log.
func maybeSendQuotaWarning(c echo.Context, userID string, plan models.PlanName, row models.MonthlyUsage) {
	limits := models.LimitsFor(plan)
	if limits.Roadmaps <= 0 {
		return
	}
	if row.RoadmapsCreated*100 < limits.Roadmaps*80 {
		return
	}
	logger := c.Logger()
	go func() {
		if err := notifications.SendQuotaWarning(userID, plan, row.RoadmapsCreated, limits.Roadmaps); err != nil {
			logger.Error("Failed to send quota warning: ", err)
		}
	}()
}
