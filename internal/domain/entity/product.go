package entity

import (
	"time"
)

type ProductImage struct {
	ID           string `json:"id" firestore:"id"`
	URL          string `json:"url" firestore:"url"`
	DisplayOrder int    `json:"display_order" firestore:"displayOrder"`
}

// ProductVariant is one purchasable configuration of a product (a color,
// a size, a wood type) with its own price and stock.
type ProductVariant struct {
	ID            string  `json:"id" firestore:"id"`
	Name          string  `json:"name" firestore:"name"`
	Price         float64 `json:"price" firestore:"price"`
	DiscountPrice float64 `json:"discount_price,omitempty" firestore:"discountPrice,omitempty"`
	Stock         int     `json:"stock" firestore:"stock"`
}

// ActivePrice is the price a buyer actually pays right now.
func (v *ProductVariant) ActivePrice() float64 {
	if v.DiscountPrice > 0 && v.DiscountPrice < v.Price {
		return v.DiscountPrice
	}
	return v.Price
}

type Product struct {
	ID            string           `json:"id" firestore:"id"`
	ArtisanID     string           `json:"artisan_id" firestore:"artisanId"`
	Name          string           `json:"name" firestore:"name"`
	Description   string           `json:"description" firestore:"description"`
	Category      string           `json:"category" firestore:"category"`
	Price         float64          `json:"price" firestore:"price"`
	DiscountPrice float64          `json:"discount_price,omitempty" firestore:"discountPrice,omitempty"`
	Variants      []ProductVariant `json:"variants,omitempty" firestore:"variants,omitempty"`
	Images        []ProductImage   `json:"images" firestore:"images"`
	Status        string           `json:"status" firestore:"status"` // draft, active, deleted
	Stock         int              `json:"stock" firestore:"stock"`
	SoldCount     int              `json:"sold_count" firestore:"soldCount"`

	AllowNegotiation bool `json:"allow_negotiation" firestore:"allowNegotiation"`

	RatingAverage float64 `json:"rating_average" firestore:"ratingAverage"`
	RatingCount   int     `json:"rating_count" firestore:"ratingCount"`

	Views     int        `json:"views" firestore:"views"`
	Featured  bool       `json:"featured" firestore:"featured"`
	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" firestore:"deletedAt,omitempty"`
}

// ActivePrice is the price a buyer actually pays for the base product.
func (p *Product) ActivePrice() float64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

// Variant finds a variant by id.
func (p *Product) Variant(variantID string) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// PrimaryImage is the image shown on listings and summaries.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	primary := p.Images[0]
	for _, img := range p.Images[1:] {
		if img.DisplayOrder < primary.DisplayOrder {
			primary = img
		}
	}
	return primary.URL
}
