package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"artisanmarket/internal/domain/entity"
)

type capturedNotification struct {
	userID string
	n      Notification
}

type recordingNotifier struct {
	sent []capturedNotification
}

func (r *recordingNotifier) Notify(userID string, n Notification) {
	r.sent = append(r.sent, capturedNotification{userID: userID, n: n})
}

func pushSummary(id, customerID, artisanID string, status entity.NegotiationStatus) entity.NegotiationSummary {
	s := summary(id, status)
	s.Customer = entity.NegotiationParty{ID: customerID, DisplayName: "Khách"}
	s.Artisan = entity.NegotiationParty{ID: artisanID, DisplayName: "Gốm Bát Tràng"}
	return s
}

func TestEventBridge_CreatedRoutesToArtisan(t *testing.T) {
	bus := NewBus()
	stores := NewSessionStores()
	notifier := &recordingNotifier{}

	bridge := NewEventBridge("artisan-1", stores, notifier)
	bridge.Subscribe(bus)
	defer bridge.Close()

	bus.Publish(Event{
		Type:    EventNegotiationCreated,
		Summary: pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationPending),
	})

	assert.Equal(t, 1, stores.Received.PendingCount())
	assert.Empty(t, stores.Sent.Snapshot().Entries)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, "artisan-1", notifier.sent[0].userID)
	assert.Equal(t, "n1", notifier.sent[0].n.NegotiationID)
}

func TestEventBridge_CreatedRoutesToCustomer(t *testing.T) {
	bus := NewBus()
	stores := NewSessionStores()

	bridge := NewEventBridge("customer-1", stores, nil)
	bridge.Subscribe(bus)
	defer bridge.Close()

	bus.Publish(Event{
		Type:    EventNegotiationCreated,
		Summary: pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationPending),
	})

	assert.Len(t, stores.Sent.Snapshot().Entries, 1)
	assert.Empty(t, stores.Received.Snapshot().Entries)
}

func TestEventBridge_IgnoresOtherParties(t *testing.T) {
	bus := NewBus()
	stores := NewSessionStores()
	notifier := &recordingNotifier{}

	bridge := NewEventBridge("bystander", stores, notifier)
	bridge.Subscribe(bus)
	defer bridge.Close()

	bus.Publish(Event{
		Type:    EventNegotiationCreated,
		Summary: pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationPending),
	})
	bus.Publish(Event{
		Type:    EventNegotiationUpdated,
		Summary: pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationAccepted),
	})

	assert.Empty(t, stores.Sent.Snapshot().Entries)
	assert.Empty(t, stores.Received.Snapshot().Entries)
	assert.Empty(t, notifier.sent)
}

func TestEventBridge_UpdatedNotifiesCustomerByStatus(t *testing.T) {
	cases := []struct {
		status   entity.NegotiationStatus
		severity string
	}{
		{entity.NegotiationAccepted, "success"},
		{entity.NegotiationRejected, "info"},
		{entity.NegotiationCounterOffered, "info"},
		{entity.NegotiationExpired, "info"},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			bus := NewBus()
			stores := NewSessionStores()
			notifier := &recordingNotifier{}

			bridge := NewEventBridge("customer-1", stores, notifier)
			bridge.Subscribe(bus)
			defer bridge.Close()

			stores.Sent.ReplaceAll([]entity.NegotiationSummary{
				pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationPending),
			})

			bus.Publish(Event{
				Type:    EventNegotiationUpdated,
				Summary: pushSummary("n1", "customer-1", "artisan-1", tc.status),
			})

			snap := stores.Sent.Snapshot()
			assert.Equal(t, tc.status, snap.Entries[0].Status)
			assert.Len(t, notifier.sent, 1)
			assert.Equal(t, tc.severity, notifier.sent[0].n.Severity)
		})
	}
}

func TestEventBridge_UpdatedQuietForArtisan(t *testing.T) {
	bus := NewBus()
	stores := NewSessionStores()
	notifier := &recordingNotifier{}

	bridge := NewEventBridge("artisan-1", stores, notifier)
	bridge.Subscribe(bus)
	defer bridge.Close()

	stores.Received.ReplaceAll([]entity.NegotiationSummary{
		pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationPending),
	})

	bus.Publish(Event{
		Type:    EventNegotiationUpdated,
		Summary: pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationCounterOffered),
	})

	assert.Equal(t, entity.NegotiationCounterOffered, stores.Received.Snapshot().Entries[0].Status)
	assert.Empty(t, notifier.sent)
}

func TestEventBridge_CloseStopsRouting(t *testing.T) {
	bus := NewBus()
	stores := NewSessionStores()

	bridge := NewEventBridge("customer-1", stores, nil)
	bridge.Subscribe(bus)

	bus.Publish(Event{
		Type:    EventNegotiationCreated,
		Summary: pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationPending),
	})
	assert.Len(t, stores.Sent.Snapshot().Entries, 1)

	bridge.Close()
	bridge.Close() // idempotent

	// Stores were reset and later events no longer land
	assert.Empty(t, stores.Sent.Snapshot().Entries)
	bus.Publish(Event{
		Type:    EventNegotiationCreated,
		Summary: pushSummary("n2", "customer-1", "artisan-1", entity.NegotiationPending),
	})
	assert.Empty(t, stores.Sent.Snapshot().Entries)
}

func TestEventBridge_SubscribeAfterCloseIsNoOp(t *testing.T) {
	bus := NewBus()
	stores := NewSessionStores()

	bridge := NewEventBridge("customer-1", stores, nil)
	bridge.Close()
	bridge.Subscribe(bus)

	bus.Publish(Event{
		Type:    EventNegotiationCreated,
		Summary: pushSummary("n1", "customer-1", "artisan-1", entity.NegotiationPending),
	})

	assert.Empty(t, stores.Sent.Snapshot().Entries)
}
