package entity

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleArtisan  = "artisan"
	RoleAdmin    = "admin"
)

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Username string `json:"username" firestore:"username"`
	Phone    string `json:"phone" firestore:"phone"`
	Bio      string `json:"bio" firestore:"bio"`
	Role     string `json:"role" firestore:"role"`
	Status   string `json:"status" firestore:"status"`

	FullName string `json:"full_name,omitempty" firestore:"fullName,omitempty"`
	Address  string `json:"address,omitempty" firestore:"address,omitempty"`

	// Shop fields, set once the user is approved as an artisan
	ShopName        string `json:"shop_name,omitempty" firestore:"shopName,omitempty"`
	ShopDescription string `json:"shop_description,omitempty" firestore:"shopDescription,omitempty"`
	CraftVillage    string `json:"craft_village,omitempty" firestore:"craftVillage,omitempty"`

	ArtisanRating      float64 `json:"artisan_rating,omitempty" firestore:"artisanRating,omitempty"`
	ArtisanReviewCount int     `json:"artisan_review_count,omitempty" firestore:"artisanReviewCount,omitempty"`

	AvatarURL string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	LastSeen  time.Time `json:"last_seen" firestore:"lastSeen"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// DisplayName is what counterparties see on negotiations and reviews.
func (u *User) DisplayName() string {
	if u.Role == RoleArtisan && u.ShopName != "" {
		return u.ShopName
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// IsArtisan gates the "received" negotiation surface.
func (u *User) IsArtisan() bool {
	return u.Role == RoleArtisan
}
