package handler

import (
	"artisanmarket/internal/usecase"
	"artisanmarket/pkg/response"
	"artisanmarket/pkg/utils"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type createReviewRequest struct {
	ProductID     string   `json:"product_id" validate:"required"`
	NegotiationID string   `json:"negotiation_id"`
	Rating        int      `json:"rating" validate:"required,min=1,max=5"`
	Content       string   `json:"content" validate:"omitempty,max=2000"`
	Images        []string `json:"images"`
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	reviewerID := c.Get("uid").(string)

	review, err := h.reviewUseCase.CreateReview(c.Request().Context(), reviewerID, usecase.CreateReviewInput{
		ProductID:     req.ProductID,
		NegotiationID: req.NegotiationID,
		Rating:        req.Rating,
		Content:       req.Content,
		Images:        req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

func (h *ReviewHandler) ListProductReviews(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	reviews, total, err := h.reviewUseCase.ListByProduct(
		c.Request().Context(), c.Param("id"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, reviews, total, pagination.Page, pagination.PageSize)
}
