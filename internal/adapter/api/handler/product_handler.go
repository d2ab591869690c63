package handler

import (
	"artisanmarket/internal/usecase"
	"artisanmarket/pkg/response"
	"artisanmarket/pkg/utils"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

type productImageRequest struct {
	URL          string `json:"url" validate:"required,url"`
	DisplayOrder int    `json:"display_order"`
}

type productVariantRequest struct {
	Name          string  `json:"name" validate:"required"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	DiscountPrice float64 `json:"discount_price"`
	Stock         int     `json:"stock" validate:"min=0"`
}

type createProductRequest struct {
	Name             string                  `json:"name" validate:"required"`
	Description      string                  `json:"description"`
	Category         string                  `json:"category" validate:"required"`
	Price            float64                 `json:"price" validate:"required,gt=0"`
	DiscountPrice    float64                 `json:"discount_price"`
	Stock            int                     `json:"stock" validate:"min=0"`
	Status           string                  `json:"status" validate:"required,oneof=draft active"`
	AllowNegotiation bool                    `json:"allow_negotiation"`
	Variants         []productVariantRequest `json:"variants"`
	Images           []productImageRequest   `json:"images"`
}

func (r createProductRequest) toInput() usecase.CreateProductInput {
	variants := make([]usecase.ProductVariantInput, len(r.Variants))
	for i, v := range r.Variants {
		variants[i] = usecase.ProductVariantInput{
			Name:          v.Name,
			Price:         v.Price,
			DiscountPrice: v.DiscountPrice,
			Stock:         v.Stock,
		}
	}

	images := make([]usecase.ProductImageInput, len(r.Images))
	for i, img := range r.Images {
		images[i] = usecase.ProductImageInput{
			URL:          img.URL,
			DisplayOrder: img.DisplayOrder,
		}
	}

	return usecase.CreateProductInput{
		Name:             r.Name,
		Description:      r.Description,
		Category:         r.Category,
		Price:            r.Price,
		DiscountPrice:    r.DiscountPrice,
		Stock:            r.Stock,
		Status:           r.Status,
		AllowNegotiation: r.AllowNegotiation,
		Variants:         variants,
		Images:           images,
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	artisanID := c.Get("uid").(string)

	product, err := h.productUseCase.CreateProduct(c.Request().Context(), artisanID, req.toInput())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	artisanID := c.Get("uid").(string)

	product, err := h.productUseCase.UpdateProduct(c.Request().Context(), artisanID, c.Param("id"), req.toInput())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productUseCase.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	filter := map[string]interface{}{"status": "active"}
	if category := c.QueryParam("category"); category != "" {
		filter["category"] = category
	}

	products, total, err := h.productUseCase.ListProducts(
		c.Request().Context(), filter, c.QueryParam("sort"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, pagination.Page, pagination.PageSize)
}

func (h *ProductHandler) ListMyProducts(c echo.Context) error {
	artisanID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	products, total, err := h.productUseCase.ListByArtisan(
		c.Request().Context(), artisanID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, pagination.Page, pagination.PageSize)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	artisanID := c.Get("uid").(string)

	if err := h.productUseCase.DeleteProduct(c.Request().Context(), artisanID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"deleted": true})
}
