package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisanmarket/internal/domain/entity"
	"artisanmarket/internal/store"
	"artisanmarket/pkg/errors"
)

type sessionFixture struct {
	*negotiationFixture
	sessionUC *SessionUseCase
	registry  *store.Registry
	notifier  *recordingNotifier
}

type recordingNotifier struct {
	sent []store.Notification
}

func (r *recordingNotifier) Notify(userID string, n store.Notification) {
	r.sent = append(r.sent, n)
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := newNegotiationFixture(t)
	registry := store.NewRegistry()
	notifier := &recordingNotifier{}

	return &sessionFixture{
		negotiationFixture: f,
		sessionUC:          NewSessionUseCase(f.uc, f.users, registry, f.bus, notifier),
		registry:           registry,
		notifier:           notifier,
	}
}

func TestSessionOpenPreloadsBothSides(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	created := f.create(t, 850_000)

	// The artisan's session preloads the received side
	stores, bridge, err := f.sessionUC.Open(ctx, "art-1")
	require.NoError(t, err)
	defer f.sessionUC.Close("art-1", bridge)

	received := stores.Received.Snapshot()
	require.Len(t, received.Entries, 1)
	assert.Equal(t, created.ID, received.Entries[0].ID)
	assert.Equal(t, 1, received.PendingCount)
	assert.Empty(t, stores.Sent.Snapshot().Entries)
}

func TestSessionCustomerHasNoReceivedSide(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	f.create(t, 850_000)

	stores, bridge, err := f.sessionUC.Open(ctx, "cust-1")
	require.NoError(t, err)
	defer f.sessionUC.Close("cust-1", bridge)

	assert.Len(t, stores.Sent.Snapshot().Entries, 1)
	assert.Empty(t, stores.Received.Snapshot().Entries)
}

func TestSessionLiveEventFlow(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	stores, bridge, err := f.sessionUC.Open(ctx, "art-1")
	require.NoError(t, err)
	defer f.sessionUC.Close("art-1", bridge)

	assert.Equal(t, 0, stores.Received.PendingCount())

	// A create lands in the open session through the bridge, without a
	// refresh
	created := f.create(t, 850_000)

	received := stores.Received.Snapshot()
	require.Len(t, received.Entries, 1)
	assert.Equal(t, created.ID, received.Entries[0].ID)
	assert.Equal(t, 1, received.PendingCount)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, created.ID, f.notifier.sent[0].NegotiationID)

	// The artisan's own response updates the entry quietly
	_, err = f.uc.RespondToNegotiation(ctx, "art-1", created.ID, RespondToNegotiationInput{Action: "accept"})
	require.NoError(t, err)

	received = stores.Received.Snapshot()
	assert.Equal(t, entity.NegotiationAccepted, received.Entries[0].Status)
	assert.Equal(t, 0, received.PendingCount)
	assert.Len(t, f.notifier.sent, 1)
}

func TestSessionPendingCountsAndMarkAsRead(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	created := f.create(t, 850_000)

	_, bridge, err := f.sessionUC.Open(ctx, "art-1")
	require.NoError(t, err)
	defer f.sessionUC.Close("art-1", bridge)

	counts, err := f.sessionUC.PendingCounts("art-1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Received)
	assert.Equal(t, 0, counts.Sent)

	require.NoError(t, f.sessionUC.MarkAsRead("art-1", "received", created.ID))

	counts, err = f.sessionUC.PendingCounts("art-1")
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Received)

	assert.True(t, errors.Is(f.sessionUC.MarkAsRead("art-1", "upside-down", created.ID), "BAD_REQUEST"))
}

func TestSessionPendingCountsWithoutSession(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.sessionUC.PendingCounts("nobody")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	assert.True(t, errors.Is(f.sessionUC.MarkAsRead("nobody", "sent", "n1"), "NOT_FOUND"))
}

func TestSessionCloseStopsRouting(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	stores, bridge, err := f.sessionUC.Open(ctx, "art-1")
	require.NoError(t, err)

	f.sessionUC.Close("art-1", bridge)

	_, err = f.sessionUC.PendingCounts("art-1")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	// Events after close no longer reach the detached stores
	f.create(t, 850_000)
	assert.Empty(t, stores.Received.Snapshot().Entries)
}

func TestSessionReconnectSurvivesStaleTeardown(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	created := f.create(t, 850_000)

	_, oldBridge, err := f.sessionUC.Open(ctx, "art-1")
	require.NoError(t, err)

	// A fast reconnect opens the new session before the old connection's
	// teardown has run
	newStores, newBridge, err := f.sessionUC.Open(ctx, "art-1")
	require.NoError(t, err)
	defer f.sessionUC.Close("art-1", newBridge)

	f.sessionUC.Close("art-1", oldBridge)

	// The late teardown must not wipe the new session's entries or its
	// registry slot
	snap := newStores.Received.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, created.ID, snap.Entries[0].ID)

	counts, err := f.sessionUC.PendingCounts("art-1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Received)

	// Live events still land in the surviving session
	_, err = f.uc.RespondToNegotiation(ctx, "art-1", created.ID, RespondToNegotiationInput{Action: "accept"})
	require.NoError(t, err)
	assert.Equal(t, entity.NegotiationAccepted, newStores.Received.Snapshot().Entries[0].Status)
}

func TestSessionOpenFailsForUnknownUser(t *testing.T) {
	f := newSessionFixture(t)

	_, _, err := f.sessionUC.Open(context.Background(), "ghost")
	require.Error(t, err)

	// The failed open released the registry slot
	_, ok := f.registry.Get("ghost")
	assert.False(t, ok)
}
