// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flik/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.slug, p.title, p.excerpt, p.content, p.image,
	p.date, p.created_at, p.category_id, p.featured`

func scanPost(row scanner) (*models.Post, error) {
	var p models.Post
	if err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.Image,
		&p.Date, &p.CreatedAt, &p.CategoryID, &p.Featured,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// buildListQuery renders the SELECT for q along with its arguments.
func buildListQuery(q models.PostQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Search != "" {
		n := arg(containsPattern(q.Search))
		where = append(where, "(p.title ILIKE "+n+" OR p.content ILIKE "+n+" OR p.excerpt ILIKE "+n+")")
	}
	if q.ExcludeSlug != "" {
		where = append(where, "p.slug <> "+arg(q.ExcludeSlug))
	}
	if q.TagSlug != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = `+arg(q.TagSlug)+`)`)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + postColumns + " FROM posts p")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if q.Ascending {
		sb.WriteString(" ORDER BY p.created_at ASC, p.id ASC")
	} else {
		sb.WriteString(" ORDER BY p.created_at DESC, p.id DESC")
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(q.Limit))
	}
	return sb.String(), args
}

// ListPosts returns the posts selected by q. The zero query returns every
// post, newest first.
func (s *PostStore) ListPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error) {
	query, args := buildListQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindPostBySlug retrieves a post by its slug. Returns nil if not found.
func (s *PostStore) FindPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.slug = $1`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns it with the generated ID. A zero
// Date defaults to the current time.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts AS p (id, slug, title, excerpt, content, image, date, category_id, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		uuid.NewString(), p.Slug, p.Title, p.Excerpt, p.Content, p.Image, date, p.CategoryID, p.Featured,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update overwrites the editable fields of the post currently stored under
// originalSlug, which may itself change. Returns nil if no post matched.
func (s *PostStore) Update(ctx context.Context, originalSlug string, p *models.Post) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE posts AS p SET
			slug = $1, title = $2, excerpt = $3, content = $4, image = $5,
			date = $6, category_id = $7, featured = $8
		WHERE p.slug = $9
		RETURNING `+postColumns,
		p.Slug, p.Title, p.Excerpt, p.Content, p.Image, p.Date, p.CategoryID, p.Featured, originalSlug,
	)
	result, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return result, nil
}

// DeleteBySlug removes a post. Its post_tags rows cascade.
func (s *PostStore) DeleteBySlug(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Count returns the total number of posts.
func (s *PostStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}
