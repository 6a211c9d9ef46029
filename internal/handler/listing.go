package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/listhub/listhub/internal/model"
)

// Validation messages returned by the listing service.
const (
	MsgInvalidUserID      = "invalid user_id"
	MsgInvalidListingType = "invalid listing_type. Supported values: 'rent', 'sale'"
	MsgPriceNotInteger    = "invalid price. Must be an integer"
	MsgPriceNotPositive   = "invalid price. Must be greater than 0"
)

// ListingStore persists listings.
type ListingStore interface {
	CreateListing(ctx context.Context, l *model.Listing) error
	// ListListings returns one page of listings, newest first.
	ListListings(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error)
}

// ListingHandler serves the listing service's /listings routes.
type ListingHandler struct {
	store  ListingStore
	logger *slog.Logger
	now    func() time.Time
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(store ListingStore, logger *slog.Logger) *ListingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingHandler{
		store:  store,
		logger: logger.With("component", "handler.listing"),
		now:    time.Now,
	}
}

type listingsResponse struct {
	Result   bool            `json:"result"`
	Listings []model.Listing `json:"listings"`
}

type listingResponse struct {
	Result  bool           `json:"result"`
	Listing *model.Listing `json:"listing"`
}

// List handles GET /listings[?page_num&page_size&user_id].
// Results are always paginated.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _, errs := parsePage(q)

	filter := model.ListingFilter{Page: page}
	if v, ok := lookup(q, "user_id"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, MsgInvalidUserID)
		} else {
			filter.UserID = &id
		}
	}
	if len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, errs...)
		return
	}

	listings, err := h.store.ListListings(r.Context(), filter)
	if err != nil {
		h.logger.Error("list_listings_failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch listings")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	writeJSON(w, http.StatusOK, listingsResponse{Result: true, Listings: listings})
}

// Create handles POST /listings with form-encoded user_id, listing_type and price.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	in, errs := parseNewListing(r)
	if len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, errs...)
		return
	}

	listing := in.Build(h.now())
	if err := h.store.CreateListing(r.Context(), listing); err != nil {
		h.logger.Error("create_listing_failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to create listing")
		return
	}

	h.logger.Info("listing_created", "listing_id", listing.ID, "user_id", listing.UserID)
	writeJSON(w, http.StatusOK, listingResponse{Result: true, Listing: listing})
}

func parseNewListing(r *http.Request) (model.NewListing, []string) {
	var (
		in   model.NewListing
		errs []string
	)

	userID, err := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("user_id")), 10, 64)
	if err != nil {
		errs = append(errs, MsgInvalidUserID)
	}
	in.UserID = userID

	in.ListingType = strings.TrimSpace(r.PostForm.Get("listing_type"))
	if !model.IsValidListingType(in.ListingType) {
		errs = append(errs, MsgInvalidListingType)
	}

	price, err := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("price")), 10, 64)
	switch {
	case err != nil:
		errs = append(errs, MsgPriceNotInteger)
	case price <= 0:
		errs = append(errs, MsgPriceNotPositive)
	}
	in.Price = price

	return in, errs
}
