package entity

import (
	"time"
)

type NegotiationStatus string

const (
	NegotiationPending        NegotiationStatus = "pending"
	NegotiationCounterOffered NegotiationStatus = "counter_offered"
	NegotiationAccepted       NegotiationStatus = "accepted"
	NegotiationRejected       NegotiationStatus = "rejected"
	NegotiationExpired        NegotiationStatus = "expired"
	NegotiationCompleted      NegotiationStatus = "completed"
)

// Active reports whether the negotiation still awaits a response.
func (s NegotiationStatus) Active() bool {
	return s == NegotiationPending || s == NegotiationCounterOffered
}

// Terminal states accept no further mutation.
func (s NegotiationStatus) Terminal() bool {
	return s == NegotiationRejected || s == NegotiationExpired || s == NegotiationCompleted
}

type NegotiationActor string

const (
	ActorCustomer NegotiationActor = "customer"
	ActorArtisan  NegotiationActor = "artisan"
)

type NegotiationAction string

const (
	ActionPropose NegotiationAction = "propose"
	ActionCounter NegotiationAction = "counter"
	ActionAccept  NegotiationAction = "accept"
	ActionReject  NegotiationAction = "reject"
	ActionCancel  NegotiationAction = "cancel"
	ActionExpire  NegotiationAction = "expire"
)

// NegotiationEvent is one append-only history entry. Entries are never
// deleted or reordered once recorded.
type NegotiationEvent struct {
	ID        string            `json:"id" firestore:"id"`
	Actor     NegotiationActor  `json:"actor" firestore:"actor"`
	Action    NegotiationAction `json:"action" firestore:"action"`
	Price     float64           `json:"price" firestore:"price"`
	Message   string            `json:"message,omitempty" firestore:"message,omitempty"`
	CreatedAt time.Time         `json:"created_at" firestore:"createdAt"`
}

// NegotiationTarget identifies what is being negotiated over: the base
// product, or exactly one of its variants. VariantID is empty for the base
// product; callers branch on ForVariant rather than probing field presence.
// The empty string is persisted (no omitempty on the firestore tag) so the
// active-negotiation equality query can match base-product documents.
type NegotiationTarget struct {
	ProductID string `json:"product_id" firestore:"productId"`
	VariantID string `json:"variant_id,omitempty" firestore:"variantId"`
}

func (t NegotiationTarget) ForVariant() bool {
	return t.VariantID != ""
}

type Negotiation struct {
	ID         string            `json:"id" firestore:"id"`
	Target     NegotiationTarget `json:"target" firestore:"target"`
	CustomerID string            `json:"customer_id" firestore:"customerId"`
	ArtisanID  string            `json:"artisan_id" firestore:"artisanId"`

	// OriginalPrice is a snapshot of the product/variant price at create
	// time and never changes afterwards. ProposedPrice is the customer's
	// current ask. FinalPrice is set exactly once, when the negotiation
	// reaches accepted.
	OriginalPrice float64  `json:"original_price" firestore:"originalPrice"`
	ProposedPrice float64  `json:"proposed_price" firestore:"proposedPrice"`
	FinalPrice    *float64 `json:"final_price,omitempty" firestore:"finalPrice,omitempty"`
	Quantity      int      `json:"quantity" firestore:"quantity"`

	CustomerReason  string             `json:"customer_reason,omitempty" firestore:"customerReason,omitempty"`
	ArtisanResponse string             `json:"artisan_response,omitempty" firestore:"artisanResponse,omitempty"`
	History         []NegotiationEvent `json:"negotiation_history" firestore:"negotiationHistory"`

	Status NegotiationStatus `json:"status" firestore:"status"`

	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" firestore:"expiresAt,omitempty"`
}

// Responder is the party expected to act next: the artisan while the
// customer's offer is pending, the customer once a counter is on the table.
// Empty for terminal and accepted states.
func (n *Negotiation) Responder() NegotiationActor {
	switch n.Status {
	case NegotiationPending:
		return ActorArtisan
	case NegotiationCounterOffered:
		return ActorCustomer
	}
	return ""
}

// RoleOf maps a user id onto their side of this negotiation.
func (n *Negotiation) RoleOf(userID string) (NegotiationActor, bool) {
	switch userID {
	case n.CustomerID:
		return ActorCustomer, true
	case n.ArtisanID:
		return ActorArtisan, true
	}
	return "", false
}

// CurrentOffer is the price currently on the table: the most recent
// propose/counter entry, falling back to the customer's ask.
func (n *Negotiation) CurrentOffer() float64 {
	for i := len(n.History) - 1; i >= 0; i-- {
		e := n.History[i]
		if e.Action == ActionPropose || e.Action == ActionCounter {
			return e.Price
		}
	}
	return n.ProposedPrice
}

// Expired reports whether the deadline has passed while still awaiting a
// response.
func (n *Negotiation) Expired(now time.Time) bool {
	return n.Status.Active() && n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}

// NegotiationParty is the denormalized identity block carried on summaries
// and push payloads.
type NegotiationParty struct {
	ID          string `json:"id" firestore:"id"`
	DisplayName string `json:"display_name" firestore:"displayName"`
}

// NegotiationSummary is the list-friendly projection used for paginated
// views, badge counts and push events. It carries no history.
type NegotiationSummary struct {
	ID           string            `json:"id" firestore:"id"`
	Target       NegotiationTarget `json:"target" firestore:"target"`
	ProductName  string            `json:"product_name" firestore:"productName"`
	ProductImage string            `json:"product_image,omitempty" firestore:"productImage,omitempty"`
	VariantName  string            `json:"variant_name,omitempty" firestore:"variantName,omitempty"`

	Customer NegotiationParty `json:"customer" firestore:"customer"`
	Artisan  NegotiationParty `json:"artisan" firestore:"artisan"`

	Status        NegotiationStatus `json:"status" firestore:"status"`
	OriginalPrice float64           `json:"original_price" firestore:"originalPrice"`
	ProposedPrice float64           `json:"proposed_price" firestore:"proposedPrice"`
	FinalPrice    *float64          `json:"final_price,omitempty" firestore:"finalPrice,omitempty"`
	Quantity      int               `json:"quantity" firestore:"quantity"`

	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" firestore:"expiresAt,omitempty"`
}

// NegotiationStats are the aggregate counters served to dashboards.
type NegotiationStats struct {
	TotalNegotiations    int     `json:"total_negotiations"`
	PendingNegotiations  int     `json:"pending_negotiations"`
	AcceptedNegotiations int     `json:"accepted_negotiations"`
	RejectedNegotiations int     `json:"rejected_negotiations"`
	ExpiredNegotiations  int     `json:"expired_negotiations"`
	AverageDiscount      float64 `json:"average_discount"`
	SuccessRate          float64 `json:"success_rate"`
}
