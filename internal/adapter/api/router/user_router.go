package router

import (
	"artisanmarket/internal/adapter/api/handler"
	"artisanmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)
	users.POST("/me", userHandler.RegisterProfile)
	users.GET("/me", userHandler.GetProfile)
	users.PUT("/me", userHandler.UpdateProfile)
	users.POST("/me/upgrade-to-artisan", userHandler.UpgradeToArtisan)
}
