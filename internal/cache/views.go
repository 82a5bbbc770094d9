// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// viewKeyPrefix is the Valkey key prefix for cached view counts.
	viewKeyPrefix = "views:"

	// DefaultViewTTL is how long a view count stays cached.
	DefaultViewTTL = 5 * time.Minute
)

// ViewCounter records and counts page views.
type ViewCounter interface {
	Track(ctx context.Context, slug string) error
	Count(ctx context.Context, slug string) (int64, error)
}

// ViewCache wraps a ViewCounter with a Valkey read-through cache. Counting
// views is a COUNT(*) over page_views, so the result is kept for a TTL and
// dropped whenever a new view is tracked for the same page. A nil client
// disables caching and every call goes to the wrapped counter.
type ViewCache struct {
	client *redis.Client
	next   ViewCounter
	ttl    time.Duration
}

// NewViewCache creates a view cache in front of next.
func NewViewCache(client *redis.Client, next ViewCounter, ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	return &ViewCache{client: client, next: next, ttl: ttl}
}

// Track records a view and invalidates the cached count for slug.
func (vc *ViewCache) Track(ctx context.Context, slug string) error {
	if err := vc.next.Track(ctx, slug); err != nil {
		return err
	}
	if vc.client == nil {
		return nil
	}
	if err := vc.client.Del(ctx, viewKeyPrefix+slug).Err(); err != nil {
		slog.Warn("view cache invalidate error", "slug", slug, "error", err)
	}
	return nil
}

// Count returns the view count for slug, from the cache when present.
// Cache errors fall through to the wrapped counter.
func (vc *ViewCache) Count(ctx context.Context, slug string) (int64, error) {
	if vc.client == nil {
		return vc.next.Count(ctx, slug)
	}

	n, err := vc.client.Get(ctx, viewKeyPrefix+slug).Int64()
	switch {
	case err == nil:
		slog.Debug("view cache hit", "slug", slug)
		return n, nil
	case !errors.Is(err, redis.Nil):
		slog.Warn("view cache get error", "slug", slug, "error", err)
	}

	n, err = vc.next.Count(ctx, slug)
	if err != nil {
		return 0, err
	}
	if err := vc.client.Set(ctx, viewKeyPrefix+slug, n, vc.ttl).Err(); err != nil {
		slog.Warn("view cache set error", "slug", slug, "error", err)
	}
	return n, nil
}
