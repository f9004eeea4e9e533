// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"strings"

	"neurostudy-server/models"
	"neurostudy-server/sources"
	"neurostudy-server/usage"

	"github.com/labstack/echo/v4"
)

// TranscribeHandler godoc
// @Summary      Fetch and clean a video transcript
// @Description  Checks the per-video and monthly video minute quotas, fetches the transcript and charges the video minutes.
// @Tags         transcripts
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Param        request  body  TranscribeRequest  true  "Transcribe request"
// @Success      200 {object} TranscribeResponse "Transcript fetched"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      402 {object} usage.LimitResponse "Plan limit reached"
// @Failure      422 {object} CaptureSourceResponse "Transcript unavailable"
// @Failure      429 {object} usage.LimitResponse "Rate limited"
// @Router       /v1/youtube/transcribe [post]
func TranscribeHandler(c echo.Context) error {
	logger := c.Logger()

	rc, err := resolveRequestContext(c)
	if err != nil {
		return err
	}

	if ok, resp := enforceRateLimit(c, "transcribe", rc.UserID, 10); !ok {
		return resp
	}

	req := new(TranscribeRequest)
	if err := c.Bind(req); err != nil {
		logger.Error("Failed to bind transcribe request: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		}
	}
	if strings.TrimSpace(req.URL) == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "URL is required",
		}
	}

	check := usage.CanPerformAction(rc.Access.PlanName, rc.Snapshot, nil, usage.ActionYouTube, usage.ActionOptions{
		YouTubeMinutes: req.DurationMinutes,
	}, rc.Access)
	if !check.Allowed {
		return denyAction(c, check)
	}

	if !sources.IsTranscriptURL(req.URL) {
		return c.JSON(http.StatusUnprocessableEntity, CaptureSourceResponse{
			ResolvedType:     string(sources.SourceUnsupportedLink),
			Error:            string(sources.ErrUnsupportedLink),
			ActionSuggestion: string(sources.SuggestPasteTranscript),
		})
	}

	fetched := sources.FetchTranscript(req.URL)
	if fetched.Err != "" {
		logger.Error("Transcript fetch failed: ", fetched.Err)
		return c.JSON(http.StatusUnprocessableEntity, CaptureSourceResponse{
			ResolvedType:     string(sources.SourceLinkTranscript),
			Error:            string(sources.ErrFetchFailed),
			ActionSuggestion: string(sources.SuggestPasteTranscript),
		})
	}

	row := usage.Increment(rc.UserID, rc.Month, rc.Access.PlanName, models.UsageDeltas{
		YouTubeMinutesUsed: req.DurationMinutes,
	})

	return c.JSON(http.StatusOK, TranscribeResponse{
		Text:           fetched.Text,
		MinutesCharged: req.DurationMinutes,
		Usage:          row.Snapshot(),
	})
}
