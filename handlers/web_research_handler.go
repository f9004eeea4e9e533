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

// WebResearchHandler godoc
// @Summary      Run a web research query
// @Description  Checks the monthly web research quota, runs the query and charges one search plus the used tokens.
// @Tags         research
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Param        request  body  WebResearchRequest  true  "Research request"
// @Success      200 {object} WebResearchResponse "Research completed"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      402 {object} usage.LimitResponse "Plan limit reached"
// @Failure      429 {object} usage.LimitResponse "Rate limited"
// @Failure      502 {object} echo.HTTPError "Research failed"
// @Router       /v1/ai/web-research [post]
func WebResearchHandler(c echo.Context) error {
	logger := c.Logger()

	rc, err := resolveRequestContext(c)
	if err != nil {
		return err
	}

	if ok, resp := enforceRateLimit(c, "research", rc.UserID, 10); !ok {
		return resp
	}

	req := new(WebResearchRequest)
	if err := c.Bind(req); err != nil {
		logger.Error("Failed to bind research request: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Query is required",
		}
	}

	check := usage.CanPerformAction(rc.Access.PlanName, rc.Snapshot, nil, usage.ActionWebSearch, usage.ActionOptions{}, rc.Access)
	if !check.Allowed {
		return denyAction(c, check)
	}

	prompt := fmt.Sprintf(
		"Research the following topic for a student and summarize the most useful resources with links.\n\nQuery: %s", req.Query)

	result, err := gemini.Call(c.Request().Context(), gemini.CallOptions{
		Plan:       rc.Access.PlanName,
		BudgetTask: models.RoadmapTask,
		Prompt:     prompt,
		Model:      gemini.SelectModel(gemini.TaskTool, 0, 0, false),
		Timeout:    60 * time.Second,
	})
	if err != nil {
		logger.Error("Web research failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadGateway,
			Message: "Research failed, please try again",
		}
	}

	tokensUsed := usage.EstimateTokensFromText(req.Query, models.RoadmapTask, rc.Access.PlanName)
	if result.UsageTokens != nil {
		tokensUsed = *result.UsageTokens
	}

	row := usage.Increment(rc.UserID, rc.Month, rc.Access.PlanName, models.UsageDeltas{
		WebSearchesUsed: 1,
		TokensUsed:      tokensUsed,
	})

	remaining := models.LimitsFor(rc.Access.PlanName).WebResearch - row.WebSearchesUsed
	if remaining < 0 {
		remaining = 0
	}

	return c.JSON(http.StatusOK, WebResearchResponse{
		Summary:           result.Text,
		SearchesRemaining: remaining,
		Usage:             row.Snapshot(),
	})
}
