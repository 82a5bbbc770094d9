package store

import (
	"context"
	"database/sql"
	"fmt"
)

// LikeStore keeps one like counter per post.
type LikeStore struct {
	db *sql.DB
}

// NewLikeStore returns a new LikeStore.
func NewLikeStore(db *sql.DB) *LikeStore {
	return &LikeStore{db: db}
}

// Get returns the like count of a post, 0 when it has none.
func (s *LikeStore) Get(ctx context.Context, postID string) (int, error) {
	var likes int
	err := s.db.QueryRowContext(ctx, `SELECT likes FROM post_likes WHERE post_id = $1`, postID).Scan(&likes)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get likes: %w", err)
	}
	return likes, nil
}

// Increment adds one like and returns the new total. The read and write
// happen in a single statement so concurrent likes are never lost.
func (s *LikeStore) Increment(ctx context.Context, postID string) (int, error) {
	var likes int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO post_likes (post_id, likes) VALUES ($1, 1)
		ON CONFLICT (post_id) DO UPDATE SET likes = post_likes.likes + 1
		RETURNING likes
	`, postID).Scan(&likes)
	if err != nil {
		return 0, fmt.Errorf("increment likes: %w", err)
	}
	return likes, nil
}
