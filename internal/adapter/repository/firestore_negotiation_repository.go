package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/domain/repository"
	"artisanmarket/pkg/errors"
)

var activeStatuses = []string{
	string(entity.NegotiationPending),
	string(entity.NegotiationCounterOffered),
}

type firestoreNegotiationRepository struct {
	client *firestore.Client
}

func NewFirestoreNegotiationRepository(client *firestore.Client) repository.NegotiationRepository {
	return &firestoreNegotiationRepository{
		client: client,
	}
}

func (r *firestoreNegotiationRepository) Create(ctx context.Context, negotiation *entity.Negotiation) error {
	if negotiation.ID == "" {
		doc := r.client.Collection("negotiations").NewDoc()
		negotiation.ID = doc.ID
	}

	now := time.Now()
	if negotiation.CreatedAt.IsZero() {
		negotiation.CreatedAt = now
	}
	negotiation.UpdatedAt = now

	_, err := r.client.Collection("negotiations").Doc(negotiation.ID).Set(ctx, negotiation)
	if err != nil {
		return errors.Internal("Failed to create negotiation", err)
	}

	return nil
}

func (r *firestoreNegotiationRepository) GetByID(ctx context.Context, id string) (*entity.Negotiation, error) {
	doc, err := r.client.Collection("negotiations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Negotiation", err)
		}
		return nil, errors.Internal("Failed to get negotiation", err)
	}

	var negotiation entity.Negotiation
	if err := doc.DataTo(&negotiation); err != nil {
		return nil, errors.Internal("Failed to parse negotiation data", err)
	}

	return &negotiation, nil
}

func (r *firestoreNegotiationRepository) Update(ctx context.Context, negotiation *entity.Negotiation) error {
	negotiation.UpdatedAt = time.Now()

	_, err := r.client.Collection("negotiations").Doc(negotiation.ID).Set(ctx, negotiation)
	if err != nil {
		return errors.Internal("Failed to update negotiation", err)
	}

	return nil
}

func (r *firestoreNegotiationRepository) FindActiveByTarget(ctx context.Context, customerID string, target entity.NegotiationTarget) (*entity.Negotiation, error) {
	query := r.client.Collection("negotiations").
		Where("customerId", "==", customerID).
		Where("target.productId", "==", target.ProductID).
		Where("status", "in", activeStatuses)

	if target.ForVariant() {
		query = query.Where("target.variantId", "==", target.VariantID)
	} else {
		query = query.Where("target.variantId", "==", "")
	}

	iter := query.Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		// No active negotiation is a valid result
		return nil, nil
	}
	if err != nil {
		return nil, errors.Internal("Failed to query active negotiation", err)
	}

	var negotiation entity.Negotiation
	if err := doc.DataTo(&negotiation); err != nil {
		return nil, errors.Internal("Failed to parse negotiation data", err)
	}

	return &negotiation, nil
}

func (r *firestoreNegotiationRepository) ListByUser(ctx context.Context, userID string, role entity.NegotiationActor, q repository.NegotiationQuery, limit, offset int) ([]*entity.Negotiation, int64, error) {
	field := "customerId"
	if role == entity.ActorArtisan {
		field = "artisanId"
	}

	query := r.client.Collection("negotiations").Where(field, "==", userID)

	if q.Status != "" {
		query = query.Where("status", "==", string(q.Status))
	}

	sortField := "createdAt"
	if q.SortBy == "updatedAt" {
		sortField = "updatedAt"
	}
	order := firestore.Desc
	if strings.EqualFold(q.SortOrder, "asc") {
		order = firestore.Asc
	}
	query = query.OrderBy(sortField, order)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count negotiations", err)
	}
	total := int64(len(allDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var negotiations []*entity.Negotiation

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate negotiations", err)
		}
		var negotiation entity.Negotiation
		if err := doc.DataTo(&negotiation); err != nil {
			return nil, 0, errors.Internal("Failed to parse negotiation data", err)
		}
		negotiations = append(negotiations, &negotiation)
	}

	return negotiations, total, nil
}

func (r *firestoreNegotiationRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Negotiation, error) {
	query := r.client.Collection("negotiations").
		Where("status", "in", activeStatuses).
		Where("expiresAt", "<=", now)

	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var negotiations []*entity.Negotiation

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to query overdue negotiations", err)
		}
		var negotiation entity.Negotiation
		if err := doc.DataTo(&negotiation); err != nil {
			return nil, errors.Internal("Failed to parse negotiation data", err)
		}
		negotiations = append(negotiations, &negotiation)
	}

	return negotiations, nil
}

func (r *firestoreNegotiationRepository) Stats(ctx context.Context, userID string, role entity.NegotiationActor, dateFrom, dateTo *time.Time) (*entity.NegotiationStats, error) {
	field := "customerId"
	if role == entity.ActorArtisan {
		field = "artisanId"
	}

	query := r.client.Collection("negotiations").Where(field, "==", userID)
	if dateFrom != nil {
		query = query.Where("createdAt", ">=", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("createdAt", "<=", *dateTo)
	}

	iter := query.Documents(ctx)
	stats := &entity.NegotiationStats{}
	var discountSum float64
	var succeeded int

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to aggregate negotiation stats", err)
		}
		var negotiation entity.Negotiation
		if err := doc.DataTo(&negotiation); err != nil {
			return nil, errors.Internal("Failed to parse negotiation data", err)
		}

		stats.TotalNegotiations++
		switch negotiation.Status {
		case entity.NegotiationPending, entity.NegotiationCounterOffered:
			stats.PendingNegotiations++
		case entity.NegotiationAccepted, entity.NegotiationCompleted:
			stats.AcceptedNegotiations++
		case entity.NegotiationRejected:
			stats.RejectedNegotiations++
		case entity.NegotiationExpired:
			stats.ExpiredNegotiations++
		}

		if negotiation.FinalPrice != nil && negotiation.OriginalPrice > 0 {
			succeeded++
			discountSum += (1 - *negotiation.FinalPrice/negotiation.OriginalPrice) * 100
		}
	}

	if succeeded > 0 {
		stats.AverageDiscount = discountSum / float64(succeeded)
	}
	if stats.TotalNegotiations > 0 {
		stats.SuccessRate = float64(stats.AcceptedNegotiations) / float64(stats.TotalNegotiations) * 100
	}

	return stats, nil
}
