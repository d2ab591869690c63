package usecase

import (
	"context"
	"time"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/domain/repository"
	"artisanmarket/pkg/errors"
	"artisanmarket/pkg/logger"
)

type ReviewUseCase struct {
	reviewRepo      repository.ReviewRepository
	negotiationRepo repository.NegotiationRepository
	productRepo     repository.ProductRepository
	userRepo        repository.UserRepository
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	negotiationRepo repository.NegotiationRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:      reviewRepo,
		negotiationRepo: negotiationRepo,
		productRepo:     productRepo,
		userRepo:        userRepo,
	}
}

type CreateReviewInput struct {
	ProductID     string
	NegotiationID string
	Rating        int
	Content       string
	Images        []string
}

func (uc *ReviewUseCase) CreateReview(ctx context.Context, reviewerID string, input CreateReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.BadRequest("Rating must be between 1 and 5", nil)
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if product.ArtisanID == reviewerID {
		return nil, errors.BadRequest("Cannot review your own product", nil)
	}

	// A review tied to a negotiation requires that negotiation to be the
	// reviewer's own and completed
	if input.NegotiationID != "" {
		negotiation, err := uc.negotiationRepo.GetByID(ctx, input.NegotiationID)
		if err != nil {
			return nil, err
		}
		if negotiation.CustomerID != reviewerID {
			return nil, errors.Forbidden("You can only review your own purchases", nil)
		}
		if negotiation.Status != entity.NegotiationCompleted {
			return nil, errors.BadRequest("You can only review a completed purchase", nil)
		}

		already, err := uc.reviewRepo.HasReviewForNegotiation(ctx, reviewerID, input.NegotiationID)
		if err != nil {
			return nil, err
		}
		if already {
			return nil, errors.Conflict("You already reviewed this purchase", nil)
		}
	}

	review := &entity.Review{
		ProductID:     input.ProductID,
		NegotiationID: input.NegotiationID,
		ReviewerID:    reviewerID,
		ArtisanID:     product.ArtisanID,
		Rating:        input.Rating,
		Content:       input.Content,
		Images:        input.Images,
		Status:        "active",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	uc.applyRating(ctx, product, input.Rating)

	return review, nil
}

func (uc *ReviewUseCase) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Review, int64, error) {
	return uc.reviewRepo.ListByProduct(ctx, productID, limit, offset)
}

// applyRating folds a new rating into the product's and the artisan's
// running averages. Failures here don't fail the review itself.
func (uc *ReviewUseCase) applyRating(ctx context.Context, product *entity.Product, rating int) {
	total := product.RatingAverage*float64(product.RatingCount) + float64(rating)
	product.RatingCount++
	product.RatingAverage = total / float64(product.RatingCount)

	if err := uc.productRepo.Update(ctx, product); err != nil {
		logger.Warn("Failed to update product rating for %s: %v", product.ID, err)
	}

	artisan, err := uc.userRepo.GetByID(ctx, product.ArtisanID)
	if err != nil {
		logger.Warn("Failed to load artisan %s for rating update: %v", product.ArtisanID, err)
		return
	}

	artisanTotal := artisan.ArtisanRating*float64(artisan.ArtisanReviewCount) + float64(rating)
	artisan.ArtisanReviewCount++
	artisan.ArtisanRating = artisanTotal / float64(artisan.ArtisanReviewCount)

	if err := uc.userRepo.Update(ctx, artisan); err != nil {
		logger.Warn("Failed to update artisan rating for %s: %v", artisan.ID, err)
	}
}
