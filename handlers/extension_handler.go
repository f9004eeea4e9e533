// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"

	"neurostudy-server/crypto"
	"neurostudy-server/db"
	"neurostudy-server/middlewares"
	"neurostudy-server/models"
	"neurostudy-server/sources"

	"github.com/labstack/echo/v4"
)

// CreateExtensionTokenHandler godoc
// @Summary      Create an extension token
// @Description  Issues a long-lived API token for the browser extension. The full token is returned once; only its hash is stored.
// @Tags         extension
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Param        request  body  CreateExtensionTokenRequest  true  "Token request"
// @Success      201 {object} CreateExtensionTokenResponse "Token created"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Failure      500 {object} echo.HTTPError "Internal server error"
// @Router       /v1/extension/tokens [post]
func CreateExtensionTokenHandler(c echo.Context) error {
	logger := c.Logger()

	userID, err := middlewares.GetAuthenticatedUserID(c)
	if err != nil {
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Authentication required",
		}
	}
	if db.Conn == nil {
		return &echo.HTTPError{
			Code:    http.StatusServiceUnavailable,
			Message: "Extension tokens require a configured database",
		}
	}

	req := new(CreateExtensionTokenRequest)
	if err := c.Bind(req); err != nil {
		logger.Error("Failed to bind extension token request: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		}
	}

	token, err := crypto.GenerateRandomString("ext_", 32, "hex")
	if err != nil {
		logger.Error("Failed to generate extension token: ", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create extension token",
		}
	}

	cryptoInstance := crypto.NewCrypto()
	hashedKey, err := cryptoInstance.HashToken(token)
	if err != nil {
		logger.Error("Failed to hash extension token: ", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create extension token",
		}
	}

	extToken := models.ExtensionToken{
		TokenID:   token[:middlewares.ExtensionTokenIDLength],
		HashedKey: hashedKey,
		Name:      req.Name,
		UserID:    userID,
	}
	if err := db.Conn.Create(&extToken).Error; err != nil {
		logger.Error("Failed to store extension token: ", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create extension token",
		}
	}

	return c.JSON(http.StatusCreated, CreateExtensionTokenResponse{
		Token:   token,
		TokenID: extToken.TokenID,
		Message: "Extension token created successfully",
	})
}

// CaptureSourceHandler godoc
// @Summary      Classify a captured source
// @Description  Resolves the kind of a source captured by the browser extension and returns a text preview, without charging any quota.
// @Tags         extension
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer {token}"
// @Param        request  body  sources.StudySource  true  "Captured source"
// @Success      200 {object} CaptureSourceResponse "Source classified"
// @Failure      401 {object} echo.HTTPError "Unauthorized"
// @Router       /v1/extension/capture [post]
func CaptureSourceHandler(c echo.Context) error {
	logger := c.Logger()

	if _, err := middlewares.GetAuthenticatedUserID(c); err != nil {
		return &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "Authentication required",
		}
	}

	src := new(sources.StudySource)
	if err := c.Bind(src); err != nil {
		logger.Error("Failed to bind captured source: ", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		}
	}

	resolved := sources.DetectSourceType(*src)
	resp := CaptureSourceResponse{ResolvedType: string(resolved)}

	switch resolved {
	case sources.SourceUnsupportedLink:
		resp.Error = string(sources.ErrUnsupportedLink)
		resp.ActionSuggestion = string(sources.SuggestPasteTranscript)

	case sources.SourceLinkTranscript:
		fetched := sources.FetchTranscript(src.Content)
		if fetched.Err != "" {
			resp.Error = string(sources.ErrFetchFailed)
			resp.ActionSuggestion = string(sources.SuggestPasteTranscript)
			break
		}
		resp.Preview = previewText(fetched.Text)
		resp.CharCount = len(fetched.Text)

	default:
		text := sources.GetSourceText(*src)
		resp.Preview = previewText(text)
		resp.CharCount = len(text)
	}

	return c.JSON(http.StatusOK, resp)
}

const previewLimit = 500

func previewText(text string) string {
	if len(text) > previewLimit {
		return text[:previewLimit]
	}
	return text
}
