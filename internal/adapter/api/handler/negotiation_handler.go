package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/domain/repository"
	"artisanmarket/internal/usecase"
	"artisanmarket/pkg/response"
	"artisanmarket/pkg/utils"
)

type NegotiationHandler struct {
	negotiationUseCase *usecase.NegotiationUseCase
	sessionUseCase     *usecase.SessionUseCase
}

func NewNegotiationHandler(negotiationUseCase *usecase.NegotiationUseCase, sessionUseCase *usecase.SessionUseCase) *NegotiationHandler {
	return &NegotiationHandler{
		negotiationUseCase: negotiationUseCase,
		sessionUseCase:     sessionUseCase,
	}
}

type createNegotiationRequest struct {
	ProductID      string  `json:"product_id" validate:"required"`
	VariantID      string  `json:"variant_id"`
	ProposedPrice  float64 `json:"proposed_price" validate:"required,gt=0"`
	Quantity       int     `json:"quantity" validate:"omitempty,min=1"`
	CustomerReason string  `json:"customer_reason" validate:"omitempty,max=1000"`
	ExpiresInDays  int     `json:"expires_in_days" validate:"omitempty,oneof=1 3 7"`
}

func (h *NegotiationHandler) CreateNegotiation(c echo.Context) error {
	var req createNegotiationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	customerID := c.Get("uid").(string)

	negotiation, err := h.negotiationUseCase.CreateNegotiation(
		c.Request().Context(),
		customerID,
		usecase.CreateNegotiationInput{
			ProductID:      req.ProductID,
			VariantID:      req.VariantID,
			ProposedPrice:  req.ProposedPrice,
			Quantity:       req.Quantity,
			CustomerReason: req.CustomerReason,
			ExpiresInDays:  req.ExpiresInDays,
		},
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, negotiation)
}

type respondNegotiationRequest struct {
	Action       string  `json:"action" validate:"required,oneof=accept reject counter"`
	CounterPrice float64 `json:"counter_price" validate:"required_if=Action counter"`
	Message      string  `json:"message" validate:"omitempty,max=1000"`
}

func (h *NegotiationHandler) RespondToNegotiation(c echo.Context) error {
	var req respondNegotiationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	negotiation, err := h.negotiationUseCase.RespondToNegotiation(
		c.Request().Context(),
		userID,
		c.Param("id"),
		usecase.RespondToNegotiationInput{
			Action:       req.Action,
			CounterPrice: req.CounterPrice,
			Message:      req.Message,
		},
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, negotiation)
}

type cancelNegotiationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

func (h *NegotiationHandler) CancelNegotiation(c echo.Context) error {
	var req cancelNegotiationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	negotiation, err := h.negotiationUseCase.CancelNegotiation(c.Request().Context(), userID, c.Param("id"), req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, negotiation)
}

func (h *NegotiationHandler) GetNegotiation(c echo.Context) error {
	userID := c.Get("uid").(string)

	negotiation, err := h.negotiationUseCase.GetNegotiation(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, negotiation)
}

func (h *NegotiationHandler) CheckExistingNegotiation(c echo.Context) error {
	userID := c.Get("uid").(string)

	target := entity.NegotiationTarget{
		ProductID: c.QueryParam("product_id"),
		VariantID: c.QueryParam("variant_id"),
	}
	if target.ProductID == "" {
		return response.Error(c, echo.NewHTTPError(400, "product_id is required"))
	}

	result, err := h.negotiationUseCase.CheckExistingNegotiation(c.Request().Context(), userID, target)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *NegotiationHandler) listByRole(c echo.Context, role entity.NegotiationActor) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	query := repository.NegotiationQuery{
		Status:    entity.NegotiationStatus(c.QueryParam("status")),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	summaries, total, err := h.negotiationUseCase.ListNegotiations(
		c.Request().Context(), userID, role, query, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, summaries, total, pagination.Page, pagination.PageSize)
}

func (h *NegotiationHandler) ListSentNegotiations(c echo.Context) error {
	return h.listByRole(c, entity.ActorCustomer)
}

func (h *NegotiationHandler) ListReceivedNegotiations(c echo.Context) error {
	return h.listByRole(c, entity.ActorArtisan)
}

func (h *NegotiationHandler) ListMyNegotiations(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	query := repository.NegotiationQuery{
		Status:    entity.NegotiationStatus(c.QueryParam("status")),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	summaries, total, err := h.negotiationUseCase.ListMine(
		c.Request().Context(), userID, query, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, summaries, total, pagination.Page, pagination.PageSize)
}

func (h *NegotiationHandler) GetStats(c echo.Context) error {
	userID := c.Get("uid").(string)

	role := entity.ActorCustomer
	if c.QueryParam("role") == "artisan" {
		role = entity.ActorArtisan
	}

	var dateFrom, dateTo *time.Time
	if v := c.QueryParam("dateFrom"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			dateFrom = &t
		}
	}
	if v := c.QueryParam("dateTo"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			dateTo = &t
		}
	}

	stats, err := h.negotiationUseCase.GetStats(c.Request().Context(), userID, role, dateFrom, dateTo)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}

func (h *NegotiationHandler) GetPriceBounds(c echo.Context) error {
	bounds, err := h.negotiationUseCase.GetPriceBounds(
		c.Request().Context(),
		c.Param("id"),
		c.QueryParam("variant_id"),
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bounds)
}

func (h *NegotiationHandler) GetPendingCounts(c echo.Context) error {
	userID := c.Get("uid").(string)

	counts, err := h.sessionUseCase.PendingCounts(userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, counts)
}

type markAsReadRequest struct {
	Side string `json:"side" validate:"required,oneof=sent received"`
}

func (h *NegotiationHandler) MarkAsRead(c echo.Context) error {
	var req markAsReadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.sessionUseCase.MarkAsRead(userID, req.Side, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"marked": true})
}
