package handler

import (
	"artisanmarket/internal/infrastructure/firebase"
	"artisanmarket/pkg/errors"
	"artisanmarket/pkg/response"

	"github.com/labstack/echo/v4"
)

// DevTokenHandler mints bearer tokens for local development without a real
// Firebase project. Routed only when ENVIRONMENT=development.
type DevTokenHandler struct {
	minter *firebase.DevTokenMinter
}

func NewDevTokenHandler(minter *firebase.DevTokenMinter) *DevTokenHandler {
	return &DevTokenHandler{
		minter: minter,
	}
}

type devTokenRequest struct {
	UID string `json:"uid" validate:"required"`
}

func (h *DevTokenHandler) MintToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	token, err := h.minter.Mint(req.UID)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to mint dev token", err))
	}

	return response.Success(c, map[string]string{"token": token})
}
