package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegotiablePriceBounds(t *testing.T) {
	bounds := NegotiablePriceBounds(1_000_000)

	assert.Equal(t, 1_000_000.0, bounds.CurrentPrice)
	assert.Equal(t, 700_000.0, bounds.MinNegotiablePrice)
	assert.Equal(t, 950_000.0, bounds.MaxNegotiablePrice)
}

func TestValidateCreateNegotiation_Valid(t *testing.T) {
	errs := ValidateCreateNegotiation(CreateNegotiationParams{
		CurrentPrice:      1_000_000,
		AvailableQuantity: 10,
		ProposedPrice:     850_000,
		Quantity:          1,
		ExpiresInDays:     3,
	})

	assert.Empty(t, errs)
}

func TestValidateCreateNegotiation_AboveCurrentPrice(t *testing.T) {
	for _, price := range []float64{1_000_000, 1_200_000} {
		errs := ValidateCreateNegotiation(CreateNegotiationParams{
			CurrentPrice:      1_000_000,
			AvailableQuantity: 10,
			ProposedPrice:     price,
			Quantity:          1,
		})

		assert.Equal(t, "Giá đề nghị phải thấp hơn giá hiện tại", errs["proposedPrice"])
	}
}

func TestValidateCreateNegotiation_BelowFloor(t *testing.T) {
	errs := ValidateCreateNegotiation(CreateNegotiationParams{
		CurrentPrice:      1_000_000,
		AvailableQuantity: 10,
		ProposedPrice:     650_000,
		Quantity:          1,
	})

	// The computed floor is shown to the user
	assert.Contains(t, errs["proposedPrice"], "700.000₫")
}

func TestValidateCreateNegotiation_FloorIsInclusive(t *testing.T) {
	errs := ValidateCreateNegotiation(CreateNegotiationParams{
		CurrentPrice:      1_000_000,
		AvailableQuantity: 10,
		ProposedPrice:     700_000,
		Quantity:          1,
	})

	assert.NotContains(t, errs, "proposedPrice")
}

func TestValidateCreateNegotiation_Quantity(t *testing.T) {
	errs := ValidateCreateNegotiation(CreateNegotiationParams{
		CurrentPrice:      500_000,
		AvailableQuantity: 3,
		ProposedPrice:     400_000,
		Quantity:          0,
	})
	assert.Contains(t, errs, "quantity")

	errs = ValidateCreateNegotiation(CreateNegotiationParams{
		CurrentPrice:      500_000,
		AvailableQuantity: 3,
		ProposedPrice:     400_000,
		Quantity:          4,
	})
	assert.Contains(t, errs["quantity"], "3")

	errs = ValidateCreateNegotiation(CreateNegotiationParams{
		CurrentPrice:      500_000,
		AvailableQuantity: 3,
		ProposedPrice:     400_000,
		Quantity:          3,
	})
	assert.NotContains(t, errs, "quantity")
}

func TestValidateCreateNegotiation_ReasonCap(t *testing.T) {
	errs := ValidateCreateNegotiation(CreateNegotiationParams{
		CurrentPrice:      500_000,
		AvailableQuantity: 5,
		ProposedPrice:     400_000,
		Quantity:          1,
		Reason:            strings.Repeat("a", ReasonMaxLength+1),
	})

	assert.Contains(t, errs, "customerReason")
}

func TestValidateCreateNegotiation_ExpiryDays(t *testing.T) {
	for _, days := range []int{1, 3, 7} {
		errs := ValidateCreateNegotiation(CreateNegotiationParams{
			CurrentPrice:      500_000,
			AvailableQuantity: 5,
			ProposedPrice:     400_000,
			Quantity:          1,
			ExpiresInDays:     days,
		})
		assert.NotContains(t, errs, "expiresInDays")
	}

	errs := ValidateCreateNegotiation(CreateNegotiationParams{
		CurrentPrice:      500_000,
		AvailableQuantity: 5,
		ProposedPrice:     400_000,
		Quantity:          1,
		ExpiresInDays:     5,
	})
	assert.Contains(t, errs, "expiresInDays")
}

func TestValidateCounterOffer_Narrowing(t *testing.T) {
	// A counter must land strictly between the last offer and the
	// original price
	errs := ValidateCounterOffer(CounterOfferParams{
		OriginalPrice: 1_000_000,
		LastOffer:     850_000,
		CounterPrice:  900_000,
	})
	assert.Empty(t, errs)

	errs = ValidateCounterOffer(CounterOfferParams{
		OriginalPrice: 1_000_000,
		LastOffer:     850_000,
		CounterPrice:  1_000_000,
	})
	assert.Equal(t, "Giá phản hồi phải thấp hơn giá gốc", errs["counterPrice"])

	errs = ValidateCounterOffer(CounterOfferParams{
		OriginalPrice: 1_000_000,
		LastOffer:     850_000,
		CounterPrice:  850_000,
	})
	assert.Contains(t, errs["counterPrice"], "cao hơn")

	errs = ValidateCounterOffer(CounterOfferParams{
		OriginalPrice: 1_000_000,
		LastOffer:     850_000,
		CounterPrice:  800_000,
	})
	assert.Contains(t, errs, "counterPrice")
}

func TestValidateCounterOffer_MessageCap(t *testing.T) {
	errs := ValidateCounterOffer(CounterOfferParams{
		OriginalPrice: 1_000_000,
		LastOffer:     850_000,
		CounterPrice:  900_000,
		Message:       strings.Repeat("b", ResponseMaxLength+1),
	})

	assert.Contains(t, errs, "message")
}

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "700.000₫", FormatVND(700_000))
	assert.Equal(t, "1.250.000₫", FormatVND(1_250_000))
	assert.Equal(t, "999₫", FormatVND(999))
	assert.Equal(t, "0₫", FormatVND(0))
}
