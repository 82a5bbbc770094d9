// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category groups posts under a single URL-addressable topic.
// A post belongs to at most one category.
type Category struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Virtual field populated by store methods that aggregate.
	PostCount int `json:"post_count,omitempty"`
}

// IsZero reports whether c is the unresolved-category sentinel.
func (c Category) IsZero() bool {
	return c.Slug == "" && c.Name == ""
}
