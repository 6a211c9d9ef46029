package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/listhub/listhub/internal/model"
)

// Key layout.
const (
	listingSeqKey      = "listings:seq"
	listingKeyPrefix   = "listing:"
	listingsAllKey     = "listings:all"
	userListingsPrefix = "listings:user:"
)

func listingKey(id int64) string {
	return listingKeyPrefix + strconv.FormatInt(id, 10)
}

func userListingsKey(userID int64) string {
	return userListingsPrefix + strconv.FormatInt(userID, 10)
}

// CreateListing allocates an ID and stores the listing with its indexes.
// The record and both index entries are written in one MULTI/EXEC.
func (s *Store) CreateListing(ctx context.Context, l *model.Listing) error {
	id, err := s.client.Incr(ctx, listingSeqKey).Result()
	if err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	l.ID = id

	member := strconv.FormatInt(id, 10)
	score := float64(l.CreatedAt)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, listingKey(id), toHash(l))
		pipe.ZAdd(ctx, listingsAllKey, redis.Z{Score: score, Member: member})
		pipe.ZAdd(ctx, userListingsKey(l.UserID), redis.Z{Score: score, Member: member})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis multi failed: %w", err)
	}

	return nil
}

// ListListings returns one page of listings, newest first.
// Index entries whose record is gone are skipped.
func (s *Store) ListListings(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error) {
	index := listingsAllKey
	if filter.UserID != nil {
		index = userListingsKey(*filter.UserID)
	}

	start := int64(filter.Page.Offset())
	stop := start + int64(filter.Page.Size) - 1

	ids, err := s.client.ZRevRange(ctx, index, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange failed: %w", err)
	}
	if len(ids) == 0 {
		return []model.Listing{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, listingKeyPrefix+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis pipeline failed: %w", err)
	}

	listings := make([]model.Listing, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		l, err := fromHash(fields)
		if err != nil {
			return nil, fmt.Errorf("decode listing %s: %w", ids[i], err)
		}
		listings = append(listings, *l)
	}

	return listings, nil
}

func toHash(l *model.Listing) map[string]any {
	return map[string]any{
		"id":           l.ID,
		"user_id":      l.UserID,
		"listing_type": l.ListingType,
		"price":        l.Price,
		"created_at":   l.CreatedAt,
		"updated_at":   l.UpdatedAt,
	}
}

func fromHash(fields map[string]string) (*model.Listing, error) {
	l := &model.Listing{ListingType: fields["listing_type"]}

	ints := []struct {
		name string
		dst  *int64
	}{
		{"id", &l.ID},
		{"user_id", &l.UserID},
		{"price", &l.Price},
		{"created_at", &l.CreatedAt},
		{"updated_at", &l.UpdatedAt},
	}
	for _, f := range ints {
		v, err := strconv.ParseInt(fields[f.name], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		*f.dst = v
	}

	return l, nil
}
