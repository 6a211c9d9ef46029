// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/listhub/listhub/internal/model"
)

// Validation messages returned by the public API.
const (
	MsgNameRequired        = "name is required"
	MsgUserIDRequired      = "user_id is required"
	MsgUserIDInvalid       = "user_id must be a positive integer"
	MsgListingTypeRequired = "listing_type is required"
	MsgPriceRequired       = "price is required"
	MsgPriceInvalid        = "price must be a positive integer"
	MsgInvalidJSON         = "invalid JSON body"
)

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Name string `json:"name"`
}

// Validate returns the validation errors, if any.
func (r CreateUserRequest) Validate() []string {
	if strings.TrimSpace(r.Name) == "" {
		return []string{MsgNameRequired}
	}
	return nil
}

// CreateListingRequest represents the request body for creating a listing.
// Numeric fields stay raw so that a missing value and a wrong type report
// different errors.
type CreateListingRequest struct {
	UserID      json.RawMessage `json:"user_id"`
	ListingType string          `json:"listing_type"`
	Price       json.RawMessage `json:"price"`
}

// ToNewListing validates the request and converts it.
// errs lists every problem found; the returned value is only meaningful when errs is empty.
func (r CreateListingRequest) ToNewListing() (model.NewListing, []string) {
	var errs []string

	userID, msg := positiveInt(r.UserID, MsgUserIDRequired, MsgUserIDInvalid)
	if msg != "" {
		errs = append(errs, msg)
	}

	listingType := strings.TrimSpace(r.ListingType)
	if listingType == "" {
		errs = append(errs, MsgListingTypeRequired)
	}

	price, msg := positiveInt(r.Price, MsgPriceRequired, MsgPriceInvalid)
	if msg != "" {
		errs = append(errs, msg)
	}

	return model.NewListing{UserID: userID, ListingType: listingType, Price: price}, errs
}

func positiveInt(raw json.RawMessage, missing, invalid string) (int64, string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, missing
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil || v <= 0 {
		return 0, invalid
	}
	return v, ""
}
