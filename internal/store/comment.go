// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"flik/internal/models"
)

// CommentStore manages visitor comments.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, post_id, email, content, date`

func (s *CommentStore) list(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Email, &c.Content, &c.Date); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListByPost returns the comments of a post, newest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	items, err := s.list(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE post_id = $1
		ORDER BY date DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments by post: %w", err)
	}
	return items, nil
}

// ListAll returns every comment, newest first.
func (s *CommentStore) ListAll(ctx context.Context) ([]models.Comment, error) {
	items, err := s.list(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return items, nil
}

// Create stores a comment and returns it with its id and date.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	var result models.Comment
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (id, post_id, email, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+commentColumns,
		uuid.NewString(), c.PostID, c.Email, c.Content,
	).Scan(&result.ID, &result.PostID, &result.Email, &result.Content, &result.Date)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &result, nil
}
