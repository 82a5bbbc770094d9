// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sitemap assembles the list of public URLs for /sitemap.xml and
// /robots.txt, and groups posts by category for the human-readable site map.
package sitemap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"flik/internal/blog"
	"flik/internal/models"
)

// StaticPaths are the fixed pages listed before any content.
var StaticPaths = []string{"/", "/about", "/contact", "/privacy", "/terminos", "/mapa"}

// Entry is one URL with its last modification time.
type Entry struct {
	URL          string
	LastModified time.Time
}

// PostLister returns every post newest first. *blog.Repository satisfies it.
type PostLister interface {
	ListAll(ctx context.Context, opts ...blog.Option) ([]models.Post, error)
}

// TagLister returns every tag.
type TagLister interface {
	ListWithCounts(ctx context.Context) ([]models.Tag, error)
}

// Assembler builds sitemap entries from the current content.
type Assembler struct {
	posts      PostLister
	categories blog.CategoryReader
	tags       TagLister
	baseURL    string
	now        func() time.Time
}

// NewAssembler creates an Assembler producing absolute URLs under baseURL.
func NewAssembler(posts PostLister, categories blog.CategoryReader, tags TagLister, baseURL string) *Assembler {
	return &Assembler{
		posts:      posts,
		categories: categories,
		tags:       tags,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// Build returns static pages, posts, categories and tags in that order.
// Posts use their publication date, falling back to the creation time when
// it is unset. Posts without a slug are skipped. Categories and tags carry
// the current time since they have no modification timestamp.
func (a *Assembler) Build(ctx context.Context) ([]Entry, error) {
	var (
		posts      []models.Post
		categories []models.Category
		tags       []models.Tag
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if posts, err = a.posts.ListAll(gctx); err != nil {
			return fmt.Errorf("sitemap posts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = a.categories.ListCategories(gctx); err != nil {
			return fmt.Errorf("sitemap categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if tags, err = a.tags.ListWithCounts(gctx); err != nil {
			return fmt.Errorf("sitemap tags: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := a.now()
	entries := make([]Entry, 0, len(StaticPaths)+len(posts)+len(categories)+len(tags))

	for _, p := range StaticPaths {
		entries = append(entries, Entry{URL: a.url(p), LastModified: now})
	}

	for _, p := range posts {
		if p.Slug == "" {
			continue
		}
		entries = append(entries, Entry{URL: a.url("/posts/" + p.Slug), LastModified: p.PublishedAt()})
	}

	for _, c := range categories {
		if c.Slug == "" {
			continue
		}
		entries = append(entries, Entry{URL: a.url("/categories/" + c.Slug), LastModified: now})
	}

	for _, t := range tags {
		if t.Slug == "" {
			continue
		}
		entries = append(entries, Entry{URL: a.url("/tags/" + t.Slug), LastModified: now})
	}

	return entries, nil
}

func (a *Assembler) url(path string) string {
	return a.baseURL + path
}

// Robots returns the robots.txt body advertising the sitemap under baseURL.
func Robots(baseURL string) string {
	return "User-agent: *\nAllow: /\nSitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n"
}
