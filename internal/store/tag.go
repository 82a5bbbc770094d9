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

// TagStore manages tags and the post_tags join table.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// ListWithCounts returns all tags ordered by name, each with the number of
// posts carrying it.
func (s *TagStore) ListWithCounts(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.slug, t.name, COUNT(pt.post_id) AS post_count
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.PostCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `SELECT id, slug, name FROM tags WHERE slug = $1`, slug).
		Scan(&t.ID, &t.Slug, &t.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return &t, nil
}

// Create inserts a new tag and returns it.
func (s *TagStore) Create(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	var result models.Tag
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (id, slug, name) VALUES ($1, $2, $3)
		RETURNING id, slug, name
	`, uuid.NewString(), t.Slug, t.Name).Scan(&result.ID, &result.Slug, &result.Name)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &result, nil
}

// ListTagsForPosts returns the tags of every given post in one query, keyed
// by post id. Posts without tags are absent from the map.
func (s *TagStore) ListTagsForPosts(ctx context.Context, postIDs []string) (map[string][]models.PostTag, error) {
	out := make(map[string][]models.PostTag)
	if len(postIDs) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.slug, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::text[]::uuid[])
		ORDER BY t.name
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("list post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			t      models.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Slug, &t.Name); err != nil {
			return nil, fmt.Errorf("scan post tag: %w", err)
		}
		out[postID] = append(out[postID], models.PostTag{TagID: t.ID, Tag: t})
	}
	return out, rows.Err()
}

// ReplacePostTags makes tagIDs the exact tag set of the post. Only the
// difference between the current and desired sets is written, inside a
// single transaction, so a failure leaves the previous tags intact.
func (s *TagStore) ReplacePostTags(ctx context.Context, postID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT tag_id FROM post_tags WHERE post_id = $1 FOR UPDATE`, postID)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	current := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan post tag: %w", err)
		}
		current[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}

	add, remove := diffTagSets(current, tagIDs)

	if len(remove) > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM post_tags WHERE post_id = $1 AND tag_id = ANY($2::text[]::uuid[])`,
			postID, remove,
		); err != nil {
			return fmt.Errorf("remove post tags: %w", err)
		}
	}

	for _, id := range add {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, id,
		); err != nil {
			return fmt.Errorf("add post tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post tags: %w", err)
	}
	return nil
}

// diffTagSets returns the ids in desired but not current, and the ids in
// current but not desired. Duplicates in desired are ignored.
func diffTagSets(current map[string]bool, desired []string) (add, remove []string) {
	want := make(map[string]bool, len(desired))
	for _, id := range desired {
		if want[id] {
			continue
		}
		want[id] = true
		if !current[id] {
			add = append(add, id)
		}
	}
	for id := range current {
		if !want[id] {
			remove = append(remove, id)
		}
	}
	return add, remove
}
