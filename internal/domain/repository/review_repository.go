package repository

import (
	"context"

	"artisanmarket/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Review, int64, error)
	HasReviewForNegotiation(ctx context.Context, reviewerID, negotiationID string) (bool, error)
}
