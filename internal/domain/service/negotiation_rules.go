package service

import (
	"fmt"
	"unicode/utf8"
)

// Business bounds for a price negotiation. A negotiation is strictly a
// discount request: the first ask is nudged below list price, and no
// price below 70% of list is ever accepted.
const (
	MaxNegotiableRatio = 0.95
	MinNegotiableRatio = 0.70

	ReasonMaxLength   = 1000
	ResponseMaxLength = 1000

	DefaultExpiresInDays = 3
)

// AllowedExpiryDays are the selectable negotiation lifetimes.
var AllowedExpiryDays = []int{1, 3, 7}

// PriceBounds are the acceptable ask bounds for a given current price.
type PriceBounds struct {
	CurrentPrice       float64 `json:"current_price"`
	MinNegotiablePrice float64 `json:"min_negotiable_price"`
	MaxNegotiablePrice float64 `json:"max_negotiable_price"`
}

// NegotiablePriceBounds computes the ask bounds from the product or
// variant's active price (discounted price when a discount applies).
func NegotiablePriceBounds(currentPrice float64) PriceBounds {
	return PriceBounds{
		CurrentPrice:       currentPrice,
		MinNegotiablePrice: currentPrice * MinNegotiableRatio,
		MaxNegotiablePrice: currentPrice * MaxNegotiableRatio,
	}
}

// ValidExpiryDays reports whether days is one of the selectable lifetimes.
func ValidExpiryDays(days int) bool {
	for _, d := range AllowedExpiryDays {
		if d == days {
			return true
		}
	}
	return false
}

type CreateNegotiationParams struct {
	CurrentPrice      float64
	AvailableQuantity int
	ProposedPrice     float64
	Quantity          int
	Reason            string
	ExpiresInDays     int
}

// ValidateCreateNegotiation checks a customer's initial offer. It returns a
// field-keyed map of messages; an empty map signals validity. Messages are
// user-facing Vietnamese copy, never faults.
func ValidateCreateNegotiation(p CreateNegotiationParams) map[string]string {
	errs := map[string]string{}
	bounds := NegotiablePriceBounds(p.CurrentPrice)

	if p.ProposedPrice <= 0 {
		errs["proposedPrice"] = "Giá đề nghị không hợp lệ"
	} else if p.ProposedPrice >= p.CurrentPrice {
		errs["proposedPrice"] = "Giá đề nghị phải thấp hơn giá hiện tại"
	} else if p.ProposedPrice < bounds.MinNegotiablePrice {
		errs["proposedPrice"] = fmt.Sprintf("Giá đề nghị không được thấp hơn %s (70%% giá hiện tại)", FormatVND(bounds.MinNegotiablePrice))
	}

	if p.Quantity < 1 {
		errs["quantity"] = "Số lượng phải lớn hơn 0"
	} else if p.Quantity > p.AvailableQuantity {
		errs["quantity"] = fmt.Sprintf("Số lượng vượt quá tồn kho (còn %d sản phẩm)", p.AvailableQuantity)
	}

	if utf8.RuneCountInString(p.Reason) > ReasonMaxLength {
		errs["customerReason"] = fmt.Sprintf("Lý do không được vượt quá %d ký tự", ReasonMaxLength)
	}

	if p.ExpiresInDays != 0 && !ValidExpiryDays(p.ExpiresInDays) {
		errs["expiresInDays"] = "Thời hạn thương lượng phải là 1, 3 hoặc 7 ngày"
	}

	return errs
}

type CounterOfferParams struct {
	OriginalPrice float64
	// LastOffer is the floor the counter must strictly exceed: the offer on
	// the table for an artisan reply, the customer's own retained ask for a
	// customer reply. Every counter stays strictly below the original price.
	LastOffer    float64
	CounterPrice float64
	Message      string
}

// ValidateCounterOffer checks a counter-offer from either side under the
// strictly-narrowing rule.
func ValidateCounterOffer(p CounterOfferParams) map[string]string {
	errs := map[string]string{}

	if p.CounterPrice <= 0 {
		errs["counterPrice"] = "Giá phản hồi không hợp lệ"
	} else if p.CounterPrice >= p.OriginalPrice {
		errs["counterPrice"] = "Giá phản hồi phải thấp hơn giá gốc"
	} else if p.CounterPrice <= p.LastOffer {
		errs["counterPrice"] = fmt.Sprintf("Giá phản hồi phải cao hơn mức đề nghị hiện tại (%s)", FormatVND(p.LastOffer))
	}

	if utf8.RuneCountInString(p.Message) > ResponseMaxLength {
		errs["message"] = fmt.Sprintf("Phản hồi không được vượt quá %d ký tự", ResponseMaxLength)
	}

	return errs
}

// ValidateResponseMessage checks a bare accept/reject message.
func ValidateResponseMessage(message string) map[string]string {
	errs := map[string]string{}
	if utf8.RuneCountInString(message) > ResponseMaxLength {
		errs["message"] = fmt.Sprintf("Phản hồi không được vượt quá %d ký tự", ResponseMaxLength)
	}
	return errs
}

// FormatVND renders a price the way the storefront shows it, with dot
// thousand separators and the đồng sign.
func FormatVND(amount float64) string {
	n := int64(amount)
	if n < 0 {
		n = 0
	}

	s := fmt.Sprintf("%d", n)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	return string(out) + "₫"
}
