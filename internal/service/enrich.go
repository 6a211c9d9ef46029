// Package service provides the gateway's business logic.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/listhub/listhub/internal/metrics"
	"github.com/listhub/listhub/internal/middleware"
	"github.com/listhub/listhub/internal/model"
)

// userField is the key the owner record is attached under.
const userField = "user"

// UpstreamFetcher is the part of the upstream client the enricher needs.
type UpstreamFetcher interface {
	FetchListings(ctx context.Context, rawQuery string) (*model.ListingsPayload, error)
	FetchAllUsers(ctx context.Context) ([]model.User, error)
}

// ListingEnricher joins a page of listings with the owners' user records.
type ListingEnricher struct {
	upstream UpstreamFetcher
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewListingEnricher creates a new ListingEnricher.
func NewListingEnricher(upstream UpstreamFetcher, logger *slog.Logger, recorder metrics.Recorder) *ListingEnricher {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ListingEnricher{
		upstream: upstream,
		logger:   logger.With("component", "service.enricher"),
		metrics:  recorder,
	}
}

// Enrich fetches the listings selected by rawQuery together with every user,
// then attaches each listing's owner under "user".
//
// Both fetches are in flight at once. The operation is all or nothing: if
// either fetch fails, the other is cancelled and the first error is returned.
// Top-level fields of the listings payload other than "listings" pass through.
func (e *ListingEnricher) Enrich(ctx context.Context, rawQuery string) (*model.ListingsPayload, error) {
	var (
		payload *model.ListingsPayload
		users   []model.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := e.upstream.FetchListings(gctx, rawQuery)
		if err != nil {
			return fmt.Errorf("fetch listings: %w", err)
		}
		payload = p
		return nil
	})
	g.Go(func() error {
		u, err := e.upstream.FetchAllUsers(gctx)
		if err != nil {
			return fmt.Errorf("fetch users: %w", err)
		}
		users = u
		return nil
	})

	if err := g.Wait(); err != nil {
		e.metrics.IncEnrichment(metrics.EnrichmentFailed)
		return nil, err
	}

	listings, unresolved, err := EnrichListings(payload.Listings, BuildUserIndex(users))
	if err != nil {
		e.metrics.IncEnrichment(metrics.EnrichmentFailed)
		return nil, err
	}

	e.metrics.IncEnrichment(metrics.EnrichmentSuccess)
	if unresolved > 0 {
		e.metrics.AddUnresolvedOwners(unresolved)
		e.logger.DebugContext(ctx, "listings without a resolvable owner",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.Int("unresolved", unresolved),
			slog.Int("listings", len(listings)),
		)
	}

	return &model.ListingsPayload{Fields: payload.Fields, Listings: listings}, nil
}

// EnrichListings returns copies of listings, in order, each carrying its owner
// from idx under "user". A listing whose user_id does not resolve gets an
// empty object; unresolved counts those listings.
// The input listings are not modified.
func EnrichListings(listings []model.RawListing, idx UserIndex) (out []model.RawListing, unresolved int, err error) {
	out = make([]model.RawListing, 0, len(listings))
	for _, l := range listings {
		enriched := l.Clone()

		enriched[userField] = model.EmptyUser()
		id, ok := l.UserID()
		u, found := idx.Lookup(id)
		if !ok || !found {
			unresolved++
			out = append(out, enriched)
			continue
		}

		raw, err := json.Marshal(u)
		if err != nil {
			return nil, 0, fmt.Errorf("encode user %d: %w", id, err)
		}
		enriched[userField] = raw
		out = append(out, enriched)
	}
	return out, unresolved, nil
}
