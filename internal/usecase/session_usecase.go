package usecase

import (
	"context"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/domain/repository"
	"artisanmarket/internal/store"
	"artisanmarket/pkg/errors"
)

// How much of each side a fresh session preloads; older entries are paged
// in through the list endpoints.
const sessionPreloadLimit = 50

// SessionUseCase owns the per-user negotiation session: the sent/received
// stores, the event bridge routing push events into them, and the badge
// surface. One session per signed-in user; opening again after a user
// switch starts from clean stores.
type SessionUseCase struct {
	negotiationUC *NegotiationUseCase
	userRepo      repository.UserRepository
	registry      *store.Registry
	bus           *store.Bus
	notifier      store.Notifier
}

func NewSessionUseCase(
	negotiationUC *NegotiationUseCase,
	userRepo repository.UserRepository,
	registry *store.Registry,
	bus *store.Bus,
	notifier store.Notifier,
) *SessionUseCase {
	return &SessionUseCase{
		negotiationUC: negotiationUC,
		userRepo:      userRepo,
		registry:      registry,
		bus:           bus,
		notifier:      notifier,
	}
}

// Open installs fresh session stores for the user, wires a bridge onto the
// push channel and loads both sides. The returned bridge must be Closed when
// the session ends. A reconnect replaces the registry slot; the displaced
// session's teardown only touches its own stores, so it can race this Open
// without wiping the new session.
func (uc *SessionUseCase) Open(ctx context.Context, userID string) (*store.SessionStores, *store.EventBridge, error) {
	stores := uc.registry.Attach(userID)

	bridge := store.NewEventBridge(userID, stores, uc.notifier)
	bridge.Subscribe(uc.bus)

	if err := uc.Refresh(ctx, userID, stores); err != nil {
		bridge.Close()
		uc.registry.Detach(userID, stores)
		return nil, nil, err
	}

	return stores, bridge, nil
}

// Close tears one session down: unsubscribes the bridge, clears its stores
// and releases the registry slot if this session still holds it.
func (uc *SessionUseCase) Close(userID string, bridge *store.EventBridge) {
	if bridge == nil {
		return
	}
	bridge.Close()
	uc.registry.Detach(userID, bridge.Stores())
}

// Refresh reloads both stores from the repository. A failed load leaves the
// affected store's previous entries intact and records the error.
func (uc *SessionUseCase) Refresh(ctx context.Context, userID string, stores *store.SessionStores) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	query := repository.NegotiationQuery{SortBy: "createdAt", SortOrder: "desc"}

	stores.Sent.SetLoading(true)
	sent, _, err := uc.negotiationUC.ListNegotiations(ctx, userID, entity.ActorCustomer, query, sessionPreloadLimit, 0)
	if err != nil {
		stores.Sent.SetError(err)
		return err
	}
	stores.Sent.ReplaceAll(sent)

	if !user.IsArtisan() {
		return nil
	}

	stores.Received.SetLoading(true)
	received, _, err := uc.negotiationUC.ListNegotiations(ctx, userID, entity.ActorArtisan, query, sessionPreloadLimit, 0)
	if err != nil {
		stores.Received.SetError(err)
		return err
	}
	stores.Received.ReplaceAll(received)

	return nil
}

// PendingCounts is the badge surface: how many negotiations await the user
// on each side.
type PendingCounts struct {
	Sent     int `json:"sent"`
	Received int `json:"received"`
}

func (uc *SessionUseCase) PendingCounts(userID string) (*PendingCounts, error) {
	stores, ok := uc.registry.Get(userID)
	if !ok {
		return nil, errors.NotFound("Negotiation session", nil)
	}
	return &PendingCounts{
		Sent:     stores.Sent.PendingCount(),
		Received: stores.Received.PendingCount(),
	}, nil
}

// MarkAsRead drops one pending entry's badge contribution on the given side.
func (uc *SessionUseCase) MarkAsRead(userID, side, negotiationID string) error {
	stores, ok := uc.registry.Get(userID)
	if !ok {
		return errors.NotFound("Negotiation session", nil)
	}

	switch side {
	case "sent":
		stores.Sent.MarkAsRead(negotiationID)
	case "received":
		stores.Received.MarkAsRead(negotiationID)
	default:
		return errors.BadRequest("Side must be sent or received", nil)
	}
	return nil
}
