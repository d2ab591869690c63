package handler

import (
	"artisanmarket/internal/usecase"
	"artisanmarket/pkg/response"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type registerProfileRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (h *UserHandler) RegisterProfile(c echo.Context) error {
	var req registerProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	user, err := h.userUseCase.RegisterProfile(c.Request().Context(), uid, usecase.RegisterProfileInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

type updateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Bio      string `json:"bio" validate:"omitempty,max=500"`
	Address  string `json:"address"`
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), uid, usecase.UpdateProfileInput{
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
		Bio:      req.Bio,
		Address:  req.Address,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

type upgradeToArtisanRequest struct {
	ShopName        string `json:"shop_name" validate:"required"`
	ShopDescription string `json:"shop_description" validate:"omitempty,max=2000"`
	CraftVillage    string `json:"craft_village"`
}

func (h *UserHandler) UpgradeToArtisan(c echo.Context) error {
	var req upgradeToArtisanRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	user, err := h.userUseCase.UpgradeToArtisan(c.Request().Context(), uid, usecase.UpgradeToArtisanInput{
		ShopName:        req.ShopName,
		ShopDescription: req.ShopDescription,
		CraftVillage:    req.CraftVillage,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
