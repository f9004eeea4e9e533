// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"neurostudy-server/commons"
	"neurostudy-server/middlewares"
	"neurostudy-server/models"
	"neurostudy-server/ratelimit"
	"neurostudy-server/usage"

	"github.com/labstack/echo/v4"
)

// requestContext is the resolved per-request admission state every
// generation handler starts from.
type requestContext struct {
	UserID   string
	Month    string
	Access   usage.UserAccess
	Snapshot models.UsageSnapshot
}

func resolveRequestContext(c echo.Context) (*requestContext, error) {
	userID, err := middlewares.GetAuthenticatedUserID(c)
	if err != nil {
		return nil, &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Authentication required",
		}
	}

	access := usage.GetUserAccess(userID)
	month := commons.CurrentMonth()
	row := usage.EnsureRow(userID, month, access.PlanName)

	return &requestContext{
		UserID:   userID,
		Month:    month,
		Access:   access,
		Snapshot: row.Snapshot(),
	}, nil
}

// enforceRateLimit applies the fixed-window limiter for one scope. It
// writes the 429 response itself; the handler must return immediately
// when ok is false. Admins are rate limited like everyone else.
func enforceRateLimit(c echo.Context, scope, userID string, limit int) (bool, error) {
	result := ratelimit.Check(scope+":"+userID, ratelimit.Options{
		Window: time.Minute,
		Limit:  limit,
	})
	if result.Allowed {
		return true, nil
	}

	retryAfter := int(time.Until(result.ResetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
	return false, c.JSON(http.StatusTooManyRequests, usage.BuildLimitResponse(usage.ReasonRateLimited, ""))
}

// denyAction writes the 402 limit response for a failed admission check.
func denyAction(c echo.Context, check usage.ActionCheck) error {
	return c.JSON(http.StatusPaymentRequired, usage.BuildLimitResponse(check.Reason, check.ActionSuggestion))
}
