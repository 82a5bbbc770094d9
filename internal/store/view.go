package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ViewStore records page views.
type ViewStore struct {
	db *sql.DB
}

// NewViewStore returns a new ViewStore.
func NewViewStore(db *sql.DB) *ViewStore {
	return &ViewStore{db: db}
}

// Track records one view of the page identified by slug.
func (s *ViewStore) Track(ctx context.Context, slug string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO page_views (slug) VALUES ($1)`, slug); err != nil {
		return fmt.Errorf("track view: %w", err)
	}
	return nil
}

// Count returns the number of recorded views for slug.
func (s *ViewStore) Count(ctx context.Context, slug string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM page_views WHERE slug = $1`, slug).Scan(&n); err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return n, nil
}
