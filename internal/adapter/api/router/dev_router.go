package router

import (
	"artisanmarket/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

// SetupDevRouter exposes the dev token endpoint outside production only.
func SetupDevRouter(e *echo.Echo, devTokenHandler *handler.DevTokenHandler, environment string) {
	if environment != "development" {
		return
	}

	e.POST("/v1/dev/token", devTokenHandler.MintToken)
}
