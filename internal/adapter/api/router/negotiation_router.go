package router

import (
	"artisanmarket/internal/adapter/api/handler"
	"artisanmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupNegotiationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	negotiationHandler := handler.GetNegotiationHandler()

	negotiations := e.Group("/v1/negotiations")
	negotiations.Use(authMiddleware.Authenticate)
	negotiations.POST("", negotiationHandler.CreateNegotiation)
	negotiations.GET("", negotiationHandler.ListMyNegotiations)
	negotiations.GET("/check-existing", negotiationHandler.CheckExistingNegotiation)
	negotiations.GET("/sent", negotiationHandler.ListSentNegotiations)
	negotiations.GET("/received", negotiationHandler.ListReceivedNegotiations)
	negotiations.GET("/stats", negotiationHandler.GetStats)
	negotiations.GET("/pending-counts", negotiationHandler.GetPendingCounts)
	negotiations.GET("/:id", negotiationHandler.GetNegotiation)
	negotiations.POST("/:id/respond", negotiationHandler.RespondToNegotiation)
	negotiations.POST("/:id/cancel", negotiationHandler.CancelNegotiation)
	negotiations.POST("/:id/mark-read", negotiationHandler.MarkAsRead)
}
