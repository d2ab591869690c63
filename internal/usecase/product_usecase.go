package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/domain/repository"
	"artisanmarket/pkg/errors"
	"artisanmarket/pkg/logger"
)

type ProductUseCase struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewProductUseCase(productRepo repository.ProductRepository, userRepo repository.UserRepository) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

type ProductImageInput struct {
	URL          string
	DisplayOrder int
}

type ProductVariantInput struct {
	Name          string
	Price         float64
	DiscountPrice float64
	Stock         int
}

type CreateProductInput struct {
	Name             string
	Description      string
	Category         string
	Price            float64
	DiscountPrice    float64
	Stock            int
	Status           string
	AllowNegotiation bool
	Variants         []ProductVariantInput
	Images           []ProductImageInput
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, artisanID string, input CreateProductInput) (*entity.Product, error) {
	artisan, err := uc.userRepo.GetByID(ctx, artisanID)
	if err != nil {
		return nil, err
	}
	if !artisan.IsArtisan() {
		return nil, errors.Forbidden("Only artisans can list products", nil)
	}

	variants := make([]entity.ProductVariant, len(input.Variants))
	for i, v := range input.Variants {
		variants[i] = entity.ProductVariant{
			ID:            uuid.NewString(),
			Name:          v.Name,
			Price:         v.Price,
			DiscountPrice: v.DiscountPrice,
			Stock:         v.Stock,
		}
	}

	images := make([]entity.ProductImage, len(input.Images))
	for i, img := range input.Images {
		images[i] = entity.ProductImage{
			ID:           uuid.NewString(),
			URL:          img.URL,
			DisplayOrder: img.DisplayOrder,
		}
	}

	product := &entity.Product{
		ArtisanID:        artisanID,
		Name:             input.Name,
		Description:      input.Description,
		Category:         input.Category,
		Price:            input.Price,
		DiscountPrice:    input.DiscountPrice,
		Stock:            input.Stock,
		Status:           input.Status,
		AllowNegotiation: input.AllowNegotiation,
		Variants:         variants,
		Images:           images,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, artisanID, productID string, input CreateProductInput) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.ArtisanID != artisanID {
		return nil, errors.Forbidden("You don't own this product", nil)
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Category = input.Category
	product.Price = input.Price
	product.DiscountPrice = input.DiscountPrice
	product.Stock = input.Stock
	product.Status = input.Status
	product.AllowNegotiation = input.AllowNegotiation

	// Variants keep their ids across updates, matched by name; new names
	// get fresh ids
	existingByName := make(map[string]string, len(product.Variants))
	for _, v := range product.Variants {
		existingByName[v.Name] = v.ID
	}

	variants := make([]entity.ProductVariant, len(input.Variants))
	for i, v := range input.Variants {
		id := existingByName[v.Name]
		if id == "" {
			id = uuid.NewString()
		}
		variants[i] = entity.ProductVariant{
			ID:            id,
			Name:          v.Name,
			Price:         v.Price,
			DiscountPrice: v.DiscountPrice,
			Stock:         v.Stock,
		}
	}
	product.Variants = variants

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := uc.productRepo.IncrementViews(ctx, productID); err != nil {
		logger.Warn("Failed to increment views for product %s: %v", productID, err)
	}

	return product, nil
}

func (uc *ProductUseCase) ListProducts(ctx context.Context, filter map[string]interface{}, sort string, limit, offset int) ([]*entity.Product, int64, error) {
	return uc.productRepo.List(ctx, filter, sort, limit, offset)
}

func (uc *ProductUseCase) ListByArtisan(ctx context.Context, artisanID string, limit, offset int) ([]*entity.Product, int64, error) {
	return uc.productRepo.List(ctx, map[string]interface{}{"artisanId": artisanID}, "", limit, offset)
}

func (uc *ProductUseCase) DeleteProduct(ctx context.Context, artisanID, productID string) error {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if product.ArtisanID != artisanID {
		return errors.Forbidden("You don't own this product", nil)
	}

	return uc.productRepo.SoftDelete(ctx, productID)
}
