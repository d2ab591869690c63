package entity

import (
	"time"
)

// Review is left by a customer for a product, typically after a completed
// negotiation or purchase.
type Review struct {
	ID            string    `json:"id" firestore:"id"`
	ProductID     string    `json:"product_id" firestore:"productId"`
	NegotiationID string    `json:"negotiation_id,omitempty" firestore:"negotiationId,omitempty"`
	ReviewerID    string    `json:"reviewer_id" firestore:"reviewerId"`
	ArtisanID     string    `json:"artisan_id" firestore:"artisanId"`
	Rating        int       `json:"rating" firestore:"rating"` // 1-5
	Content       string    `json:"content" firestore:"content"`
	Images        []string  `json:"images,omitempty" firestore:"images,omitempty"`
	Status        string    `json:"status" firestore:"status"` // "active", "hidden", "deleted"
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
}
