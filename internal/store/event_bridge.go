package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"artisanmarket/internal/domain/entity"
)

// Notification is the user-facing message a bridge emits alongside a store
// mutation.
type Notification struct {
	ID            string `json:"id"`
	Severity      string `json:"severity"` // "success" or "info"
	Message       string `json:"message"`
	NegotiationID string `json:"negotiation_id"`
	CreatedAt     string `json:"created_at"`
}

// Notifier delivers notifications to a user's live session.
type Notifier interface {
	Notify(userID string, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(userID string, n Notification)

func (f NotifierFunc) Notify(userID string, n Notification) {
	f(userID, n)
}

// EventBridge routes negotiation push events into one user's session
// stores. It is bound to the identity it was created for: a new sign-in
// gets a new bridge, and Close tears the old routing down atomically so
// events can never land in a previous user's stores.
type EventBridge struct {
	userID   string
	stores   *SessionStores
	notifier Notifier

	mu     sync.Mutex
	sub    *Subscription
	closed bool
}

func NewEventBridge(userID string, stores *SessionStores, notifier Notifier) *EventBridge {
	return &EventBridge{
		userID:   userID,
		stores:   stores,
		notifier: notifier,
	}
}

// Stores returns the session stores this bridge routes into.
func (b *EventBridge) Stores() *SessionStores {
	return b.stores
}

// Subscribe attaches the bridge to the push channel. Subscribing an already
// attached or closed bridge is a no-op.
func (b *EventBridge) Subscribe(bus *Bus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.sub != nil {
		return
	}
	b.sub = bus.Subscribe(b.handle)
}

// Close detaches the bridge and resets both stores. Idempotent.
func (b *EventBridge) Close() {
	b.mu.Lock()
	sub := b.sub
	b.sub = nil
	alreadyClosed := b.closed
	b.closed = true
	b.mu.Unlock()

	if alreadyClosed {
		return
	}
	if sub != nil {
		sub.Unsubscribe()
	}
	b.stores.ClearAll()
}

func (b *EventBridge) handle(e Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	switch e.Type {
	case EventNegotiationCreated:
		b.handleCreated(e.Summary)
	case EventNegotiationUpdated:
		b.handleUpdated(e.Summary)
	}
}

// The two identity checks are independent, not exclusive: a user who is
// somehow both parties gets both store updates.
func (b *EventBridge) handleCreated(summary entity.NegotiationSummary) {
	if summary.Artisan.ID == b.userID {
		b.stores.Received.PrependOne(summary)
		b.notify("info", "Bạn nhận được yêu cầu thương lượng mới", summary.ID)
	}
	if summary.Customer.ID == b.userID {
		b.stores.Sent.PrependOne(summary)
		b.notify("info", "Đã gửi yêu cầu thương lượng", summary.ID)
	}
}

func (b *EventBridge) handleUpdated(summary entity.NegotiationSummary) {
	if summary.Customer.ID == b.userID {
		b.stores.Sent.UpdateOne(summary)

		switch summary.Status {
		case entity.NegotiationAccepted:
			b.notify("success", "Đề nghị của bạn đã được chấp nhận", summary.ID)
		case entity.NegotiationRejected:
			b.notify("info", "Đề nghị của bạn đã bị từ chối", summary.ID)
		case entity.NegotiationCounterOffered:
			b.notify("info", "Bạn nhận được đề nghị giá mới từ nghệ nhân", summary.ID)
		case entity.NegotiationExpired:
			b.notify("info", "Yêu cầu thương lượng đã hết hạn", summary.ID)
		}
	}
	if summary.Artisan.ID == b.userID {
		// The artisan just acted in the common case; update quietly
		b.stores.Received.UpdateOne(summary)
	}
}

func (b *EventBridge) notify(severity, message, negotiationID string) {
	if b.notifier == nil {
		return
	}
	b.notifier.Notify(b.userID, Notification{
		ID:            uuid.NewString(),
		Severity:      severity,
		Message:       message,
		NegotiationID: negotiationID,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}
