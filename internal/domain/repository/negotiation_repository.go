package repository

import (
	"context"
	"time"

	"artisanmarket/internal/domain/entity"
)

// NegotiationQuery narrows a per-user negotiation listing.
type NegotiationQuery struct {
	Status    entity.NegotiationStatus // empty = all
	SortBy    string                   // createdAt or updatedAt
	SortOrder string                   // asc or desc
}

type NegotiationRepository interface {
	Create(ctx context.Context, negotiation *entity.Negotiation) error
	GetByID(ctx context.Context, id string) (*entity.Negotiation, error)
	Update(ctx context.Context, negotiation *entity.Negotiation) error

	// FindActiveByTarget returns the customer's active (pending or
	// counter-offered) negotiation for the target, or nil when none exists.
	// Absence is a valid result, not an error.
	FindActiveByTarget(ctx context.Context, customerID string, target entity.NegotiationTarget) (*entity.Negotiation, error)

	ListByUser(ctx context.Context, userID string, role entity.NegotiationActor, query NegotiationQuery, limit, offset int) ([]*entity.Negotiation, int64, error)

	// ListOverdue returns active negotiations whose deadline has passed.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Negotiation, error)

	Stats(ctx context.Context, userID string, role entity.NegotiationActor, dateFrom, dateTo *time.Time) (*entity.NegotiationStats, error)
}
