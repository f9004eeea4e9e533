// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"fmt"
	"net/http"

	"neurostudy-server/models"

	"github.com/labstack/echo/v4"
)

// GetPlansHandler godoc
// @Summary      Get available plans
// @Description  Retrieves the subscription plan catalog with pricing and the headline limits for display to clients.
// @Tags         plans
// @Accept       json
// @Produce      json
// @Success      200 {object} GetPlansResponse "Plans retrieved successfully"
// @Router       /v1/plans [get]
func GetPlansHandler(c echo.Context) error {
	var planOptions []PlanOption
	for _, name := range []models.PlanName{models.FreePlan, models.StarterPlan, models.ProPlan} {
		limits := models.LimitsFor(name)

		features := []string{
			fmt.Sprintf("%d study roadmaps/month", limits.Roadmaps),
			fmt.Sprintf("%d sources per roadmap", limits.SourcesPerStudy),
			fmt.Sprintf("%d pages per document", limits.PagesPerSource),
			fmt.Sprintf("%d video minutes/month", limits.YouTubeMinutes),
			fmt.Sprintf("%d web research queries/month", limits.WebResearch),
			fmt.Sprintf("%d chat messages/month", limits.ChatMessages),
		}

		planOptions = append(planOptions, PlanOption{
			Name:        string(name),
			Label:       models.PlanLabels[name],
			Price:       models.PlanPrices[name],
			Recommended: name == models.StarterPlan,
			Features:    features,
		})
	}

	return c.JSON(http.StatusOK, GetPlansResponse{
		Plans:   planOptions,
		Message: "Plans retrieved successfully",
	})
}
