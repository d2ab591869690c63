package entity

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiationTargetPersistsEmptyVariant(t *testing.T) {
	// Base-product negotiations must store variantId as an explicit empty
	// string; an omitted field can never be matched by an equality query
	field, ok := reflect.TypeOf(NegotiationTarget{}).FieldByName("VariantID")
	require.True(t, ok)
	assert.Equal(t, "variantId", field.Tag.Get("firestore"))
}

func TestCurrentOffer(t *testing.T) {
	n := &Negotiation{
		ProposedPrice: 850_000,
		History: []NegotiationEvent{
			{Action: ActionPropose, Price: 850_000},
			{Action: ActionCounter, Price: 920_000},
			{Action: ActionReject, Price: 920_000},
		},
	}

	// The most recent propose/counter wins; trailing non-offer entries are
	// skipped
	assert.Equal(t, 920_000.0, n.CurrentOffer())

	n.History = nil
	assert.Equal(t, 850_000.0, n.CurrentOffer())
}

func TestResponder(t *testing.T) {
	n := &Negotiation{Status: NegotiationPending}
	assert.Equal(t, ActorArtisan, n.Responder())

	n.Status = NegotiationCounterOffered
	assert.Equal(t, ActorCustomer, n.Responder())

	n.Status = NegotiationAccepted
	assert.Empty(t, n.Responder())
}

func TestExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	n := &Negotiation{Status: NegotiationPending, ExpiresAt: &past}
	assert.True(t, n.Expired(time.Now()))

	// Terminal states never expire, deadline or not
	n.Status = NegotiationRejected
	assert.False(t, n.Expired(time.Now()))

	n.Status = NegotiationPending
	n.ExpiresAt = nil
	assert.False(t, n.Expired(time.Now()))
}
