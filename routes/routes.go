// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"neurostudy-server/commons"
	"neurostudy-server/handlers"
	"neurostudy-server/middlewares"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	commons.Logger.Debug("Registering v1 routes")
	api_v1 := e.Group("/v1")
	api_v1.GET("/plans", handlers.GetPlansHandler)
	api_v1.GET("/users/plan", handlers.GetUserPlanHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodIdentityToken, middlewares.AuthMethodExtensionToken))
	api_v1.POST("/ai/roadmap", handlers.CreateRoadmapHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodIdentityToken, middlewares.AuthMethodExtensionToken))
	api_v1.POST("/ai/chat", handlers.ChatHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodIdentityToken, middlewares.AuthMethodExtensionToken))
	api_v1.POST("/ai/quiz", handlers.CreateQuizHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodIdentityToken, middlewares.AuthMethodExtensionToken))
	api_v1.POST("/ai/flashcards", handlers.CreateFlashcardsHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodIdentityToken, middlewares.AuthMethodExtensionToken))
	api_v1.POST("/ai/web-research", handlers.WebResearchHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodIdentityToken, middlewares.AuthMethodExtensionToken))
	api_v1.POST("/youtube/transcribe", handlers.TranscribeHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodIdentityToken, middlewares.AuthMethodExtensionToken))
	api_v1.POST("/extension/tokens", handlers.CreateExtensionTokenHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodIdentityToken))
	api_v1.POST("/extension/capture", handlers.CaptureSourceHandler, middlewares.VerifyAuthMiddleware(middlewares.AuthMethodExtensionToken, middlewares.AuthMethodIdentityToken))
	commons.Logger.Info("v1 routes registered successfully")
}
