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

// ChatHandler godoc
// @Summary      Send a study chat message
// @Description  Checks the per-message size and monthly chat token budget, generates a reply and charges the chat counters.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Param        request  body  ChatRequest  true  "Chat request"
// @Success      200 {object} ChatResponse "Reply generated"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      402 {object} usage.LimitResponse "Plan limit reached"
// @Failure      429 {object} usage.LimitResponse "Rate limited"
// @Failure      502 {object} echo.HTTPError "Generation failed"
// @Router       /v1/ai/chat [post]
func ChatHandler(c echo.Context) error {
	logger := c.Logger()

	rc, err := resolveRequestContext(c)
	if err != nil {
		return err
	}

	if ok, resp := enforceRateLimit(c, "chat", rc.UserID, 30); !ok {
		return resp
	}

	req := new(ChatRequest)
	if err := c.Bind(req); err != nil {
		logger.Error("Failed to bind chat request: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		}
	}
	if strings.TrimSpace(req.Message) == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Message is required",
		}
	}

	check := usage.CanPerformAction(rc.Access.PlanName, rc.Snapshot, nil, usage.ActionChat, usage.ActionOptions{
		TextInput:   req.Message,
		ChatHistory: req.History,
	}, rc.Access)
	if !check.Allowed {
		return denyAction(c, check)
	}

	result, err := gemini.Call(c.Request().Context(), gemini.CallOptions{
		Plan:       rc.Access.PlanName,
		BudgetTask: models.ChatTask,
		Prompt:     buildChatPrompt(req),
		Model:      gemini.SelectModel(gemini.TaskChat, 0, 0, false),
		Timeout:    30 * time.Second,
	})
	if err != nil {
		logger.Error("Chat generation failed: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadGateway,
			Message: "Reply generation failed, please try again",
		}
	}

	tokensUsed := check.EstimatedTokens
	if result.UsageTokens != nil {
		tokensUsed = *result.UsageTokens
	}

	row := usage.Increment(rc.UserID, rc.Month, rc.Access.PlanName, models.UsageDeltas{
		ChatMessages:        1,
		ChatTokensEstimated: check.EstimatedTokens,
		ChatTokensUsed:      tokensUsed,
	})

	return c.JSON(http.StatusOK, ChatResponse{
		Reply:         result.Text,
		TokensCharged: tokensUsed,
		Usage:         row.Snapshot(),
	})
}

func buildChatPrompt(req *ChatRequest) string {
	var b strings.Builder
	b.WriteString("You are a patient study tutor. Answer concisely and accurately.\n")
	if req.Context != "" {
		fmt.Fprintf(&b, "\n# Study context\n%s\n", req.Context)
	}
	history := req.History
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	if len(history) > 0 {
		b.WriteString("\n# Conversation\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Text)
		}
	}
	fmt.Fprintf(&b, "\nuser: %s\n", req.Message)
	return b.String()
}
