// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"

	"neurostudy-server/models"

	"github.com/labstack/echo/v4"
)

// GetUserPlanHandler godoc
// @Summary      Get the current user's plan and usage
// @Description  Returns the user's plan, the current month's usage counters and the plan's limits.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Success      200 {object} GetUserPlanResponse "Plan retrieved successfully"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Router       /v1/users/plan [get]
func GetUserPlanHandler(c echo.Context) error {
	rc, err := resolveRequestContext(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GetUserPlanResponse{
		Plan:    string(rc.Access.PlanName),
		IsAdmin: rc.Access.IsAdmin,
		Usage:   rc.Snapshot,
		Limits:  models.LimitsFor(rc.Access.PlanName),
		Month:   rc.Month,
	})
}
