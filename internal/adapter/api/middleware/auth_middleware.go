package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"artisanmarket/internal/infrastructure/firebase"
)

type AuthMiddleware struct {
	authClient  *firebase.FirebaseAuthClient
	devMinter   *firebase.DevTokenMinter
	environment string
}

func NewAuthMiddleware(authClient *firebase.FirebaseAuthClient, devMinter *firebase.DevTokenMinter, environment string) *AuthMiddleware {
	return &AuthMiddleware{
		authClient:  authClient,
		devMinter:   devMinter,
		environment: environment,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		uid, err := m.verify(c.Request().Context(), parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set("uid", uid)

		return next(c)
	}
}

func (m *AuthMiddleware) verify(ctx context.Context, token string) (string, error) {
	uid, err := m.authClient.VerifyToken(ctx, token)
	if err == nil {
		return uid, nil
	}

	// Development-only fallback to locally minted tokens
	if m.environment == "development" && m.devMinter != nil {
		if uid, devErr := m.devMinter.Verify(token); devErr == nil {
			return uid, nil
		}
	}

	return "", err
}
