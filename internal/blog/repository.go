// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog is the read side of the site: it loads posts from the data
// store, resolves their category and tags, and computes the related and
// previous/next navigation shown on a post page. Every call re-reads the
// store; nothing is cached between requests.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"flik/internal/models"
)

// RelatedLimit is the maximum number of posts ListRelated returns.
const RelatedLimit = 3

// ErrNotFound is returned by GetBySlug when no post has the requested slug.
var ErrNotFound = errors.New("post not found")

// CategoryReader loads the full category set.
type CategoryReader interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// PostReader loads posts. FindPostBySlug returns (nil, nil) when the slug
// does not exist.
type PostReader interface {
	ListPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error)
	FindPostBySlug(ctx context.Context, slug string) (*models.Post, error)
}

// TagReader loads the post_tags join for a batch of posts, keyed by post id.
type TagReader interface {
	ListTagsForPosts(ctx context.Context, postIDs []string) (map[string][]models.PostTag, error)
}

// Adjacent holds the neighbours of a post in ascending creation order.
// Either side is nil at the ends of the sequence.
type Adjacent struct {
	Prev *models.Post
	Next *models.Post
}

type options struct {
	includeTags bool
}

// Option configures a single repository call.
type Option func(*options)

// WithTags resolves each post's tags through the join table.
func WithTags() Option {
	return func(o *options) { o.includeTags = true }
}

// WithoutTags leaves Post.Tags empty. This is the default for lists.
func WithoutTags() Option {
	return func(o *options) { o.includeTags = false }
}

func buildOptions(defaults options, opts []Option) options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// Repository answers the post queries used by the public pages.
type Repository struct {
	categories CategoryReader
	posts      PostReader
	tags       TagReader
}

// New creates a Repository over the given readers.
func New(categories CategoryReader, posts PostReader, tags TagReader) *Repository {
	return &Repository{categories: categories, posts: posts, tags: tags}
}

// load fetches categories and posts concurrently. Both must succeed.
func (r *Repository) load(ctx context.Context, q models.PostQuery) ([]models.Category, []models.Post, error) {
	var (
		categories []models.Category
		posts      []models.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = r.categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		posts, err = r.posts.ListPosts(gctx, q)
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return categories, posts, nil
}

// annotate resolves Category on every post and fills Tags when requested.
// Posts whose category reference is null or dangling get the zero Category.
func (r *Repository) annotate(ctx context.Context, categories []models.Category, posts []models.Post, o options) error {
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	for i := range posts {
		posts[i].Category = models.Category{}
		if posts[i].CategoryID != nil {
			if c, ok := byID[*posts[i].CategoryID]; ok {
				posts[i].Category = c
			}
		}
		posts[i].Tags = []models.PostTag{}
	}

	if !o.includeTags || len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	tags, err := r.tags.ListTagsForPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("list post tags: %w", err)
	}
	for i := range posts {
		if pt, ok := tags[posts[i].ID]; ok {
			posts[i].Tags = pt
		}
	}
	return nil
}

// ListAll returns every post, newest first.
func (r *Repository) ListAll(ctx context.Context, opts ...Option) ([]models.Post, error) {
	o := buildOptions(options{}, opts)

	categories, posts, err := r.load(ctx, models.PostQuery{})
	if err != nil {
		return nil, err
	}
	if err := r.annotate(ctx, categories, posts, o); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetBySlug returns one post with its category and tags. It returns
// ErrNotFound when the slug does not resolve.
func (r *Repository) GetBySlug(ctx context.Context, slug string, opts ...Option) (*models.Post, error) {
	o := buildOptions(options{includeTags: true}, opts)

	var (
		categories []models.Category
		post       *models.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = r.categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		post, err = r.posts.FindPostBySlug(gctx, slug)
		if err != nil {
			return fmt.Errorf("find post %q: %w", slug, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	one := []models.Post{*post}
	if err := r.annotate(ctx, categories, one, o); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// ListByCategory returns the posts of the category with the given slug,
// newest first. An unknown slug yields an empty list and no error.
func (r *Repository) ListByCategory(ctx context.Context, categorySlug string, opts ...Option) ([]models.Post, error) {
	o := buildOptions(options{}, opts)

	categories, posts, err := r.load(ctx, models.PostQuery{})
	if err != nil {
		return nil, err
	}

	category, ok := findCategory(categories, categorySlug)
	if !ok {
		return []models.Post{}, nil
	}

	filtered := inCategory(posts, category.ID)
	if err := r.annotate(ctx, categories, filtered, o); err != nil {
		return nil, err
	}
	return filtered, nil
}

// Search returns posts whose title, content or excerpt contains query,
// ignoring case, newest first.
func (r *Repository) Search(ctx context.Context, query string, opts ...Option) ([]models.Post, error) {
	o := buildOptions(options{}, opts)

	categories, posts, err := r.load(ctx, models.PostQuery{Search: query})
	if err != nil {
		return nil, err
	}
	if err := r.annotate(ctx, categories, posts, o); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByTag returns the posts carrying the tag with the given slug, newest
// first. An unknown tag yields an empty list.
func (r *Repository) ListByTag(ctx context.Context, tagSlug string, opts ...Option) ([]models.Post, error) {
	o := buildOptions(options{}, opts)

	categories, posts, err := r.load(ctx, models.PostQuery{TagSlug: tagSlug})
	if err != nil {
		return nil, err
	}
	if err := r.annotate(ctx, categories, posts, o); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListRelated returns up to RelatedLimit other posts from the same category,
// newest first. The post with excludeSlug never appears in the result.
func (r *Repository) ListRelated(ctx context.Context, categorySlug, excludeSlug string, opts ...Option) ([]models.Post, error) {
	o := buildOptions(options{}, opts)

	categories, posts, err := r.load(ctx, models.PostQuery{ExcludeSlug: excludeSlug})
	if err != nil {
		return nil, err
	}

	category, ok := findCategory(categories, categorySlug)
	if !ok {
		return []models.Post{}, nil
	}

	related := make([]models.Post, 0, RelatedLimit)
	for _, p := range inCategory(posts, category.ID) {
		if p.Slug == excludeSlug {
			continue
		}
		related = append(related, p)
		if len(related) == RelatedLimit {
			break
		}
	}

	if err := r.annotate(ctx, categories, related, o); err != nil {
		return nil, err
	}
	return related, nil
}

// ListAdjacent returns the posts created immediately before and after the
// post with the given slug. A store failure or unknown slug yields an empty
// Adjacent rather than an error.
func (r *Repository) ListAdjacent(ctx context.Context, slug string) Adjacent {
	posts, err := r.posts.ListPosts(ctx, models.PostQuery{Ascending: true})
	if err != nil {
		slog.Warn("adjacent posts unavailable", "slug", slug, "error", err)
		return Adjacent{}
	}

	idx := -1
	for i := range posts {
		if posts[i].Slug == slug {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Adjacent{}
	}

	var adj Adjacent
	if idx > 0 {
		prev := posts[idx-1]
		adj.Prev = &prev
	}
	if idx < len(posts)-1 {
		next := posts[idx+1]
		adj.Next = &next
	}
	return adj
}

func findCategory(categories []models.Category, slug string) (models.Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return models.Category{}, false
}

// inCategory filters posts by category id preserving order.
func inCategory(posts []models.Post, categoryID string) []models.Post {
	out := make([]models.Post, 0)
	for i := range posts {
		if posts[i].InCategory(categoryID) {
			out = append(out, posts[i])
		}
	}
	return out
}
