package models

import (
	"testing"
	"time"
)

// TestPostMatches verifies the case-insensitive search across title,
// content and excerpt.
func TestPostMatches(t *testing.T) {
	p := &Post{
		Title:   "Introducción a Go",
		Excerpt: "Concurrencia con goroutines",
		Content: "<p>Los canales son la base</p>",
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "title exact case", query: "Go", want: true},
		{name: "title lower case", query: "introducción", want: true},
		{name: "excerpt upper case", query: "GOROUTINES", want: true},
		{name: "content match", query: "canales", want: true},
		{name: "content markup", query: "<p>", want: true},
		{name: "empty query", query: "", want: true},
		{name: "no match", query: "rust", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Matches(tt.query); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

// TestPostInCategory covers null, matching and mismatching references.
func TestPostInCategory(t *testing.T) {
	c1 := "c1"

	tests := []struct {
		name       string
		categoryID *string
		want       bool
	}{
		{name: "null reference", categoryID: nil, want: false},
		{name: "matching", categoryID: &c1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{CategoryID: tt.categoryID}
			if got := p.InCategory("c1"); got != tt.want {
				t.Errorf("InCategory(c1) = %v, want %v", got, tt.want)
			}
		})
	}

	other := "c2"
	p := &Post{CategoryID: &other}
	if p.InCategory("c1") {
		t.Error("post in c2 should not be in c1")
	}
}

// TestCategoryIsZero ensures the unresolved sentinel is recognised.
func TestCategoryIsZero(t *testing.T) {
	if !(Category{}).IsZero() {
		t.Error("zero Category should report IsZero")
	}
	if (Category{Slug: "tech", Name: "Tech"}).IsZero() {
		t.Error("resolved Category should not report IsZero")
	}
}

func TestPostPublishedAt(t *testing.T) {
	created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	published := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	p := Post{CreatedAt: created}
	if got := p.PublishedAt(); !got.Equal(created) {
		t.Errorf("zero Date: got %v, want CreatedAt %v", got, created)
	}

	p.Date = published
	if got := p.PublishedAt(); !got.Equal(published) {
		t.Errorf("with Date: got %v, want %v", got, published)
	}
}
