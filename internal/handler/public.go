package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/listhub/listhub/internal/handler/dto"
	"github.com/listhub/listhub/internal/middleware"
	"github.com/listhub/listhub/internal/model"
	"github.com/listhub/listhub/internal/upstream"
)

// Generic messages for failed upstream calls. The cause is logged only.
const (
	MsgFetchUsersFailed    = "Internal error fetching users"
	MsgCreateUserFailed    = "Internal error creating user"
	MsgFetchListingsFailed = "Internal error fetching listings"
	MsgCreateListingFailed = "Internal error creating listing"
)

// UpstreamProxy is the part of the upstream client used by proxy routes.
type UpstreamProxy interface {
	ListUsers(ctx context.Context, rawQuery string) (*upstream.Response, error)
	CreateUser(ctx context.Context, name string) (*upstream.Response, error)
	CreateListing(ctx context.Context, in model.NewListing) (*upstream.Response, error)
}

// Enricher produces the owner-enriched listings page.
type Enricher interface {
	Enrich(ctx context.Context, rawQuery string) (*model.ListingsPayload, error)
}

// PublicHandler serves /public-api routes.
type PublicHandler struct {
	upstream UpstreamProxy
	enricher Enricher
	logger   *slog.Logger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(up UpstreamProxy, enricher Enricher, logger *slog.Logger) *PublicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicHandler{
		upstream: up,
		enricher: enricher,
		logger:   logger.With("component", "handler.public"),
	}
}

// ListUsers handles GET /public-api/users.
// The query string is forwarded verbatim.
func (h *PublicHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	resp, err := h.upstream.ListUsers(r.Context(), r.URL.RawQuery)
	h.mirror(w, r, resp, err, MsgFetchUsersFailed)
}

// CreateUser handles POST /public-api/users.
func (h *PublicHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, errs...)
		return
	}

	resp, err := h.upstream.CreateUser(r.Context(), req.Name)
	h.mirror(w, r, resp, err, MsgCreateUserFailed)
}

// ListListings handles GET /public-api/listings.
// Every listing carries its owner under "user", or {} when the owner is unknown.
func (h *PublicHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	payload, err := h.enricher.Enrich(r.Context(), r.URL.RawQuery)
	if err != nil {
		h.logger.Error("enrich_listings_failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeFailure(w, http.StatusInternalServerError, MsgFetchListingsFailed)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// CreateListing handles POST /public-api/listings.
func (h *PublicHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateListingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, errs := req.ToNewListing()
	if len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, errs...)
		return
	}

	resp, err := h.upstream.CreateListing(r.Context(), in)
	h.mirror(w, r, resp, err, MsgCreateListingFailed)
}

// mirror hands the backend's answer back to the caller. Backend error
// envelopes keep their status; transport failures and unreadable bodies
// become a 500 with failMsg.
func (h *PublicHandler) mirror(w http.ResponseWriter, r *http.Request, resp *upstream.Response, err error, failMsg string) {
	if err == nil {
		writeRaw(w, resp.StatusCode, resp.Body)
		return
	}

	var uerr *upstream.Error
	if errors.As(err, &uerr) && uerr.Mirrorable() {
		writeRaw(w, uerr.StatusCode, uerr.Body)
		return
	}

	h.logger.Error("upstream_proxy_failed",
		"request_id", middleware.GetRequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	writeFailure(w, http.StatusInternalServerError, failMsg)
}

// decodeBody decodes a JSON request body into dst and writes the 400 or 413
// response itself when that fails.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeFailure(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	writeFailure(w, http.StatusBadRequest, dto.MsgInvalidJSON)
	return false
}
