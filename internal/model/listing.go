package model

import "time"

// Listing types accepted by the listing service.
const (
	ListingTypeRent = "rent"
	ListingTypeSale = "sale"
)

// Listing is a record owned by the listing service.
// UserID references a User but is not enforced by either service.
type Listing struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	ListingType string `json:"listing_type"`
	Price       int64  `json:"price"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// NewListing is the input for creating a listing.
type NewListing struct {
	UserID      int64
	ListingType string
	Price       int64
}

// IsValidListingType reports whether t is a supported listing type.
func IsValidListingType(t string) bool {
	return t == ListingTypeRent || t == ListingTypeSale
}

// Build returns a Listing stamped with the given creation time.
func (n NewListing) Build(now time.Time) *Listing {
	ts := now.UnixMicro()
	return &Listing{
		UserID:      n.UserID,
		ListingType: n.ListingType,
		Price:       n.Price,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// ListingFilter selects a page of listings, optionally for one owner.
type ListingFilter struct {
	Page   Page
	UserID *int64
}
