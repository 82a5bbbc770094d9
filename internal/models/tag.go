// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Tag is a free-form label attached to posts through the post_tags join table.
type Tag struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`

	PostCount int `json:"post_count,omitempty"`
}

// PostTag is one denormalized row of the post_tags join, carrying the
// resolved tag alongside its id.
type PostTag struct {
	TagID string `json:"tag_id"`
	Tag   Tag    `json:"tag"`
}
