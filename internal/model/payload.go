package model

import (
	"encoding/json"
	"fmt"
)

// ListingsField is the top-level key carrying the listing sequence.
const ListingsField = "listings"

// emptyObject is the owner placeholder for listings whose user_id does not resolve.
var emptyObject = json.RawMessage(`{}`)

// EmptyUser returns the placeholder attached to unresolved listings.
func EmptyUser() json.RawMessage {
	return append(json.RawMessage(nil), emptyObject...)
}

// RawListing is one listing object as returned by the listing service.
// Fields are kept raw so that anything the gateway does not interpret passes through.
type RawListing map[string]json.RawMessage

// UserID decodes the user_id field. ok is false when the field is missing
// or is not an integer.
func (l RawListing) UserID() (id int64, ok bool) {
	raw, exists := l["user_id"]
	if !exists || string(raw) == "null" {
		return 0, false
	}
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, false
	}
	return id, true
}

// Clone returns a shallow copy of the listing.
func (l RawListing) Clone() RawListing {
	out := make(RawListing, len(l)+1)
	for k, v := range l {
		out[k] = v
	}
	return out
}

// ListingsPayload is the listing service's list response.
// Fields holds every top-level field except listings.
type ListingsPayload struct {
	Fields   map[string]json.RawMessage
	Listings []RawListing
}

// DecodeListingsPayload parses a list response body.
// A missing or null listings field decodes as an empty sequence.
func DecodeListingsPayload(body []byte) (*ListingsPayload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode listings payload: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode listings payload: body is null")
	}

	payload := &ListingsPayload{Fields: fields, Listings: []RawListing{}}
	raw, ok := fields[ListingsField]
	delete(fields, ListingsField)
	if !ok {
		return payload, nil
	}

	var listings []RawListing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, fmt.Errorf("decode listings field: %w", err)
	}
	for i, l := range listings {
		if l == nil {
			return nil, fmt.Errorf("decode listings field: element %d is not an object", i)
		}
	}
	if listings != nil {
		payload.Listings = listings
	}
	return payload, nil
}

// MarshalJSON writes the payload back as a single object.
func (p *ListingsPayload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		out[k] = v
	}
	listings := p.Listings
	if listings == nil {
		listings = []RawListing{}
	}
	out[ListingsField] = listings
	return json.Marshal(out)
}

// UsersPayload is the user service's list response.
type UsersPayload struct {
	Result bool   `json:"result"`
	Users  []User `json:"users"`
}

// Envelope is the uniform response wrapper used for failures.
type Envelope struct {
	Result bool     `json:"result"`
	Errors []string `json:"errors,omitempty"`
}

// Failure returns a failure envelope carrying msgs.
func Failure(msgs ...string) Envelope {
	return Envelope{Result: false, Errors: msgs}
}
