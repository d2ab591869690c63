package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/domain/repository"
	"artisanmarket/internal/domain/service"
	"artisanmarket/internal/infrastructure/ratelimit"
	ws "artisanmarket/internal/infrastructure/websocket"
	"artisanmarket/internal/store"
	"artisanmarket/pkg/errors"
	"artisanmarket/pkg/logger"
)

type NegotiationUseCase struct {
	negotiationRepo repository.NegotiationRepository
	productRepo     repository.ProductRepository
	userRepo        repository.UserRepository
	wsManager       *ws.Manager
	bus             *store.Bus
	rateLimiter     *ratelimit.RateLimiter
}

func NewNegotiationUseCase(
	negotiationRepo repository.NegotiationRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	wsManager *ws.Manager,
	bus *store.Bus,
) *NegotiationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &NegotiationUseCase{
		negotiationRepo: negotiationRepo,
		productRepo:     productRepo,
		userRepo:        userRepo,
		wsManager:       wsManager,
		bus:             bus,
		rateLimiter:     rateLimiter,
	}
}

type CreateNegotiationInput struct {
	ProductID      string
	VariantID      string
	ProposedPrice  float64
	Quantity       int
	CustomerReason string
	ExpiresInDays  int
}

type RespondToNegotiationInput struct {
	Action       string // accept, reject, counter
	CounterPrice float64
	Message      string
}

// NegotiationResponse is the negotiation-with-details shape returned by the
// mutating operations and the detail fetch.
type NegotiationResponse struct {
	*entity.Negotiation
	Product  *entity.Product         `json:"product,omitempty"`
	Customer entity.NegotiationParty `json:"customer"`
	Artisan  entity.NegotiationParty `json:"artisan"`
	Bounds   service.PriceBounds     `json:"price_bounds"`
}

type CheckExistingResult struct {
	HasActive   bool                 `json:"has_active"`
	Negotiation *NegotiationResponse `json:"negotiation,omitempty"`
}

// CreateNegotiation opens a negotiation for a product or one of its
// variants on behalf of the customer. The original price and available
// stock are snapshotted here and bound the whole exchange.
func (uc *NegotiationUseCase) CreateNegotiation(ctx context.Context, customerID string, input CreateNegotiationInput) (*NegotiationResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(customerID, "create_negotiation")
	if !allowed {
		return nil, errors.TooManyRequests("Too many negotiation requests. Please wait before trying again", waitTime.Seconds())
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if product.ArtisanID == customerID {
		return nil, errors.BadRequest("Cannot negotiate on your own product", nil)
	}
	if product.Status != "active" {
		return nil, errors.BadRequest("Product is not available", nil)
	}
	if !product.AllowNegotiation {
		return nil, errors.BadRequest("Product does not allow price negotiation", nil)
	}

	target := entity.NegotiationTarget{ProductID: input.ProductID, VariantID: input.VariantID}

	currentPrice, availableQty, err := resolveTarget(product, target)
	if err != nil {
		return nil, err
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	expiresInDays := input.ExpiresInDays
	if expiresInDays == 0 {
		expiresInDays = service.DefaultExpiresInDays
	}

	fieldErrs := service.ValidateCreateNegotiation(service.CreateNegotiationParams{
		CurrentPrice:      currentPrice,
		AvailableQuantity: availableQty,
		ProposedPrice:     input.ProposedPrice,
		Quantity:          quantity,
		Reason:            input.CustomerReason,
		ExpiresInDays:     expiresInDays,
	})
	if len(fieldErrs) > 0 {
		return nil, errors.Validation(fieldErrs)
	}

	existing, err := uc.negotiationRepo.FindActiveByTarget(ctx, customerID, target)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Expired(time.Now()) {
		// Signal the caller to refetch the active negotiation, not fail hard
		return nil, errors.Conflict("An active negotiation already exists for this product", existing.ID)
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(expiresInDays) * 24 * time.Hour)

	negotiation := &entity.Negotiation{
		Target:         target,
		CustomerID:     customerID,
		ArtisanID:      product.ArtisanID,
		OriginalPrice:  currentPrice,
		ProposedPrice:  input.ProposedPrice,
		Quantity:       quantity,
		CustomerReason: input.CustomerReason,
		Status:         entity.NegotiationPending,
		History: []entity.NegotiationEvent{{
			ID:        uuid.NewString(),
			Actor:     entity.ActorCustomer,
			Action:    entity.ActionPropose,
			Price:     input.ProposedPrice,
			Message:   input.CustomerReason,
			CreatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: &expiresAt,
	}

	if err := uc.negotiationRepo.Create(ctx, negotiation); err != nil {
		return nil, err
	}

	uc.publish(ctx, store.EventNegotiationCreated, negotiation, product)

	return uc.buildResponse(ctx, negotiation, product)
}

// RespondToNegotiation is the single mutation path for accept, reject and
// counter. Only the party the negotiation currently awaits may act.
func (uc *NegotiationUseCase) RespondToNegotiation(ctx context.Context, userID, negotiationID string, input RespondToNegotiationInput) (*NegotiationResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "respond_negotiation")
	if !allowed {
		return nil, errors.TooManyRequests("Too many responses. Please wait before trying again", waitTime.Seconds())
	}

	negotiation, err := uc.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, err
	}

	role, isParty := negotiation.RoleOf(userID)
	if !isParty {
		return nil, errors.Forbidden("You are not a party to this negotiation", nil)
	}

	if !negotiation.Status.Active() {
		return nil, errors.BadRequest("Negotiation is no longer active", nil)
	}

	now := time.Now()
	if negotiation.Expired(now) {
		uc.expire(ctx, negotiation)
		return nil, errors.BadRequest("Negotiation has expired", nil)
	}

	if role != negotiation.Responder() {
		return nil, errors.Forbidden("It is not your turn to respond to this negotiation", nil)
	}

	if msgErrs := service.ValidateResponseMessage(input.Message); len(msgErrs) > 0 {
		return nil, errors.Validation(msgErrs)
	}

	switch input.Action {
	case "accept":
		final := negotiation.CurrentOffer()
		negotiation.FinalPrice = &final
		negotiation.Status = entity.NegotiationAccepted
		negotiation.History = append(negotiation.History, entity.NegotiationEvent{
			ID:        uuid.NewString(),
			Actor:     role,
			Action:    entity.ActionAccept,
			Price:     final,
			Message:   input.Message,
			CreatedAt: now,
		})

	case "reject":
		negotiation.Status = entity.NegotiationRejected
		negotiation.History = append(negotiation.History, entity.NegotiationEvent{
			ID:        uuid.NewString(),
			Actor:     role,
			Action:    entity.ActionReject,
			Price:     negotiation.CurrentOffer(),
			Message:   input.Message,
			CreatedAt: now,
		})

	case "counter":
		// The artisan must narrow from the offer on the table; the
		// customer only has to improve on their own retained ask, so a
		// reply below the artisan's counter stays valid
		floor := negotiation.CurrentOffer()
		if role == entity.ActorCustomer {
			floor = negotiation.ProposedPrice
		}
		fieldErrs := service.ValidateCounterOffer(service.CounterOfferParams{
			OriginalPrice: negotiation.OriginalPrice,
			LastOffer:     floor,
			CounterPrice:  input.CounterPrice,
			Message:       input.Message,
		})
		if len(fieldErrs) > 0 {
			return nil, errors.Validation(fieldErrs)
		}

		negotiation.History = append(negotiation.History, entity.NegotiationEvent{
			ID:        uuid.NewString(),
			Actor:     role,
			Action:    entity.ActionCounter,
			Price:     input.CounterPrice,
			Message:   input.Message,
			CreatedAt: now,
		})

		if role == entity.ActorArtisan {
			// Control passes to the customer; their ask stays on record
			negotiation.Status = entity.NegotiationCounterOffered
		} else {
			// The customer's counter becomes their new ask and control
			// returns to the artisan
			negotiation.ProposedPrice = input.CounterPrice
			negotiation.Status = entity.NegotiationPending
		}

	default:
		return nil, errors.BadRequest("Invalid response action", nil)
	}

	if role == entity.ActorArtisan && input.Message != "" {
		negotiation.ArtisanResponse = input.Message
	}

	if err := uc.negotiationRepo.Update(ctx, negotiation); err != nil {
		return nil, err
	}

	uc.publish(ctx, store.EventNegotiationUpdated, negotiation, nil)

	return uc.buildResponse(ctx, negotiation, nil)
}

// CancelNegotiation withdraws an active negotiation. Only the customer may
// cancel; the artisan's equivalent is a reject response.
func (uc *NegotiationUseCase) CancelNegotiation(ctx context.Context, userID, negotiationID, reason string) (*NegotiationResponse, error) {
	negotiation, err := uc.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, err
	}

	if negotiation.CustomerID != userID {
		return nil, errors.Forbidden("Only the customer can cancel a negotiation", nil)
	}

	if !negotiation.Status.Active() {
		return nil, errors.BadRequest("Negotiation is no longer active", nil)
	}

	negotiation.Status = entity.NegotiationRejected
	negotiation.History = append(negotiation.History, entity.NegotiationEvent{
		ID:        uuid.NewString(),
		Actor:     entity.ActorCustomer,
		Action:    entity.ActionCancel,
		Price:     negotiation.CurrentOffer(),
		Message:   reason,
		CreatedAt: time.Now(),
	})

	if err := uc.negotiationRepo.Update(ctx, negotiation); err != nil {
		return nil, err
	}

	uc.publish(ctx, store.EventNegotiationUpdated, negotiation, nil)

	return uc.buildResponse(ctx, negotiation, nil)
}

// GetNegotiation returns the full negotiation for one of its parties.
func (uc *NegotiationUseCase) GetNegotiation(ctx context.Context, userID, negotiationID string) (*NegotiationResponse, error) {
	negotiation, err := uc.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, err
	}

	if _, isParty := negotiation.RoleOf(userID); !isParty {
		return nil, errors.Forbidden("You don't have permission to view this negotiation", nil)
	}

	if negotiation.Expired(time.Now()) {
		uc.expire(ctx, negotiation)
	}

	return uc.buildResponse(ctx, negotiation, nil)
}

// CheckExistingNegotiation reports whether the customer already has an
// active negotiation for the target. Callers consult this before offering
// a create action. An empty result is valid, never an error.
func (uc *NegotiationUseCase) CheckExistingNegotiation(ctx context.Context, customerID string, target entity.NegotiationTarget) (*CheckExistingResult, error) {
	negotiation, err := uc.negotiationRepo.FindActiveByTarget(ctx, customerID, target)
	if err != nil {
		return nil, err
	}
	if negotiation == nil {
		return &CheckExistingResult{HasActive: false}, nil
	}

	if negotiation.Expired(time.Now()) {
		uc.expire(ctx, negotiation)
		return &CheckExistingResult{HasActive: false}, nil
	}

	resp, err := uc.buildResponse(ctx, negotiation, nil)
	if err != nil {
		return nil, err
	}
	return &CheckExistingResult{HasActive: true, Negotiation: resp}, nil
}

// ListNegotiations pages through one side of a user's negotiations as
// summaries, newest first.
func (uc *NegotiationUseCase) ListNegotiations(ctx context.Context, userID string, role entity.NegotiationActor, query repository.NegotiationQuery, limit, offset int) ([]entity.NegotiationSummary, int64, error) {
	if role == entity.ActorArtisan {
		user, err := uc.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, 0, err
		}
		if !user.IsArtisan() {
			return nil, 0, errors.Forbidden("Only artisans can view received negotiations", nil)
		}
	}

	negotiations, total, err := uc.negotiationRepo.ListByUser(ctx, userID, role, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]entity.NegotiationSummary, 0, len(negotiations))
	for _, n := range negotiations {
		summary, err := uc.summarize(ctx, n, nil)
		if err != nil {
			logger.Warn("Skipping negotiation %s in listing: %v", n.ID, err)
			continue
		}
		summaries = append(summaries, summary)
	}

	return summaries, total, nil
}

// ListMine merges both sides of a user's negotiations into one listing,
// newest first. Unlike the received listing it is open to every role; a
// customer simply contributes nothing on the artisan side.
func (uc *NegotiationUseCase) ListMine(ctx context.Context, userID string, query repository.NegotiationQuery, limit, offset int) ([]entity.NegotiationSummary, int64, error) {
	fetch := limit + offset

	sent, sentTotal, err := uc.negotiationRepo.ListByUser(ctx, userID, entity.ActorCustomer, query, fetch, 0)
	if err != nil {
		return nil, 0, err
	}
	received, receivedTotal, err := uc.negotiationRepo.ListByUser(ctx, userID, entity.ActorArtisan, query, fetch, 0)
	if err != nil {
		return nil, 0, err
	}

	merged := make([]*entity.Negotiation, 0, len(sent)+len(received))
	seen := make(map[string]bool, len(sent))
	for _, n := range sent {
		seen[n.ID] = true
		merged = append(merged, n)
	}
	for _, n := range received {
		if !seen[n.ID] {
			merged = append(merged, n)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if offset >= len(merged) {
		merged = nil
	} else {
		merged = merged[offset:]
		if limit > 0 && limit < len(merged) {
			merged = merged[:limit]
		}
	}

	summaries := make([]entity.NegotiationSummary, 0, len(merged))
	for _, n := range merged {
		summary, err := uc.summarize(ctx, n, nil)
		if err != nil {
			logger.Warn("Skipping negotiation %s in listing: %v", n.ID, err)
			continue
		}
		summaries = append(summaries, summary)
	}

	return summaries, sentTotal + receivedTotal, nil
}

// GetStats aggregates one side's negotiation counters over a date range.
func (uc *NegotiationUseCase) GetStats(ctx context.Context, userID string, role entity.NegotiationActor, dateFrom, dateTo *time.Time) (*entity.NegotiationStats, error) {
	return uc.negotiationRepo.Stats(ctx, userID, role, dateFrom, dateTo)
}

// GetPriceBounds exposes the acceptable ask range for a product or variant,
// so a storefront can fail fast before submitting.
func (uc *NegotiationUseCase) GetPriceBounds(ctx context.Context, productID, variantID string) (*service.PriceBounds, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	currentPrice, _, err := resolveTarget(product, entity.NegotiationTarget{ProductID: productID, VariantID: variantID})
	if err != nil {
		return nil, err
	}

	bounds := service.NegotiablePriceBounds(currentPrice)
	return &bounds, nil
}

// CompleteNegotiation is the checkout hook: an accepted negotiation whose
// order was fulfilled moves to completed. The final price is untouched.
func (uc *NegotiationUseCase) CompleteNegotiation(ctx context.Context, negotiationID string) (*entity.Negotiation, error) {
	negotiation, err := uc.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, err
	}

	if negotiation.Status != entity.NegotiationAccepted {
		return nil, errors.BadRequest("Only accepted negotiations can be completed", nil)
	}

	negotiation.Status = entity.NegotiationCompleted
	if err := uc.negotiationRepo.Update(ctx, negotiation); err != nil {
		return nil, err
	}

	uc.publish(ctx, store.EventNegotiationUpdated, negotiation, nil)

	return negotiation, nil
}

// ExpireOverdue sweeps active negotiations whose deadline has passed.
func (uc *NegotiationUseCase) ExpireOverdue(ctx context.Context) error {
	overdue, err := uc.negotiationRepo.ListOverdue(ctx, time.Now(), 100)
	if err != nil {
		return err
	}

	for _, negotiation := range overdue {
		uc.expire(ctx, negotiation)
	}

	return nil
}

// StartExpirySweep runs ExpireOverdue on a fixed period until the context
// is cancelled.
func (uc *NegotiationUseCase) StartExpirySweep(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := uc.ExpireOverdue(ctx); err != nil {
					logger.Error("Negotiation expiry sweep error: %v", err)
				}
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()

	logger.Info("Negotiation expiry sweep started (every %v)", period)
}

func (uc *NegotiationUseCase) expire(ctx context.Context, negotiation *entity.Negotiation) {
	negotiation.Status = entity.NegotiationExpired
	negotiation.History = append(negotiation.History, entity.NegotiationEvent{
		ID:        uuid.NewString(),
		Actor:     negotiation.Responder(),
		Action:    entity.ActionExpire,
		Price:     negotiation.CurrentOffer(),
		CreatedAt: time.Now(),
	})

	if err := uc.negotiationRepo.Update(ctx, negotiation); err != nil {
		logger.LogNegotiationError(negotiation.ID, "expire", err)
		return
	}

	uc.publish(ctx, store.EventNegotiationUpdated, negotiation, nil)
}

// publish pushes the lifecycle event onto the session bus and to both
// parties' live connections. Delivery failures are not retried; sessions
// rebuild from the repository on reconnect.
func (uc *NegotiationUseCase) publish(ctx context.Context, eventType store.EventType, negotiation *entity.Negotiation, product *entity.Product) {
	summary, err := uc.summarize(ctx, negotiation, product)
	if err != nil {
		logger.Error("Failed to build summary for negotiation %s: %v", negotiation.ID, err)
		return
	}

	uc.bus.Publish(store.Event{Type: eventType, Summary: summary})

	if uc.wsManager != nil {
		uc.wsManager.SendEvent(negotiation.CustomerID, string(eventType), summary)
		uc.wsManager.SendEvent(negotiation.ArtisanID, string(eventType), summary)
	}
}

func (uc *NegotiationUseCase) summarize(ctx context.Context, negotiation *entity.Negotiation, product *entity.Product) (entity.NegotiationSummary, error) {
	if product == nil {
		var err error
		product, err = uc.productRepo.GetByID(ctx, negotiation.Target.ProductID)
		if err != nil {
			return entity.NegotiationSummary{}, err
		}
	}

	customer, err := uc.userRepo.GetByID(ctx, negotiation.CustomerID)
	if err != nil {
		return entity.NegotiationSummary{}, err
	}
	artisan, err := uc.userRepo.GetByID(ctx, negotiation.ArtisanID)
	if err != nil {
		return entity.NegotiationSummary{}, err
	}

	summary := entity.NegotiationSummary{
		ID:            negotiation.ID,
		Target:        negotiation.Target,
		ProductName:   product.Name,
		ProductImage:  product.PrimaryImage(),
		Customer:      entity.NegotiationParty{ID: customer.ID, DisplayName: customer.DisplayName()},
		Artisan:       entity.NegotiationParty{ID: artisan.ID, DisplayName: artisan.DisplayName()},
		Status:        negotiation.Status,
		OriginalPrice: negotiation.OriginalPrice,
		ProposedPrice: negotiation.ProposedPrice,
		FinalPrice:    negotiation.FinalPrice,
		Quantity:      negotiation.Quantity,
		CreatedAt:     negotiation.CreatedAt,
		UpdatedAt:     negotiation.UpdatedAt,
		ExpiresAt:     negotiation.ExpiresAt,
	}

	if negotiation.Target.ForVariant() {
		if variant, ok := product.Variant(negotiation.Target.VariantID); ok {
			summary.VariantName = variant.Name
		}
	}

	return summary, nil
}

func (uc *NegotiationUseCase) buildResponse(ctx context.Context, negotiation *entity.Negotiation, product *entity.Product) (*NegotiationResponse, error) {
	if product == nil {
		var err error
		product, err = uc.productRepo.GetByID(ctx, negotiation.Target.ProductID)
		if err != nil {
			return nil, err
		}
	}

	customer, err := uc.userRepo.GetByID(ctx, negotiation.CustomerID)
	if err != nil {
		return nil, err
	}
	artisan, err := uc.userRepo.GetByID(ctx, negotiation.ArtisanID)
	if err != nil {
		return nil, err
	}

	currentPrice, _, err := resolveTarget(product, negotiation.Target)
	if err != nil {
		// The variant may have been removed after the fact; fall back to
		// the snapshot so the response stays renderable
		currentPrice = negotiation.OriginalPrice
	}

	return &NegotiationResponse{
		Negotiation: negotiation,
		Product:     product,
		Customer:    entity.NegotiationParty{ID: customer.ID, DisplayName: customer.DisplayName()},
		Artisan:     entity.NegotiationParty{ID: artisan.ID, DisplayName: artisan.DisplayName()},
		Bounds:      service.NegotiablePriceBounds(currentPrice),
	}, nil
}

// resolveTarget yields the active price and available stock the negotiation
// is bounded by: the variant's when one is targeted, the product's
// otherwise.
func resolveTarget(product *entity.Product, target entity.NegotiationTarget) (float64, int, error) {
	if target.ForVariant() {
		variant, ok := product.Variant(target.VariantID)
		if !ok {
			return 0, 0, errors.NotFound("Product variant", nil)
		}
		return variant.ActivePrice(), variant.Stock, nil
	}
	return product.ActivePrice(), product.Stock, nil
}
