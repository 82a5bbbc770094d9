// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// Post is a blog article. Content holds editor-produced HTML and is rendered
// as-is. Date is the editable publication date shown to readers, while
// CreatedAt is assigned by the database and drives default ordering.
type Post struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content"`
	Image      string    `json:"image"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"created_at"`
	CategoryID *string   `json:"category_id"`
	Featured   bool      `json:"featured"`

	// Category is resolved from CategoryID by the repository. It is the
	// zero Category when the reference is null or dangling.
	Category Category `json:"category"`
	// Tags is only populated when the caller asked for tags.
	Tags []PostTag `json:"post_tags"`
}

// InCategory reports whether the post references the given category id.
func (p *Post) InCategory(categoryID string) bool {
	return p.CategoryID != nil && *p.CategoryID == categoryID
}

// PublishedAt is the display date: Date when set, CreatedAt otherwise.
func (p *Post) PublishedAt() time.Time {
	if p.Date.IsZero() {
		return p.CreatedAt
	}
	return p.Date
}

// Matches reports whether query occurs, ignoring case, in the title,
// content or excerpt. An empty query matches every post.
func (p *Post) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Content), q) ||
		strings.Contains(strings.ToLower(p.Excerpt), q)
}

// PostQuery describes the filter, order and limit applied when loading posts.
// The zero value loads every post newest first.
type PostQuery struct {
	// Search restricts results to posts matching Post.Matches.
	Search string
	// ExcludeSlug drops the post with this slug.
	ExcludeSlug string
	// TagSlug restricts results to posts carrying the tag with this slug.
	TagSlug string
	// Ascending orders by created_at oldest first.
	Ascending bool
	// Limit caps the number of rows; zero means no limit.
	Limit int
}
