// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"flik/internal/blog"
	"flik/internal/cache"
	"flik/internal/models"
	"flik/internal/pagination"
	"flik/internal/render"
	"flik/internal/sitemap"
)

// Page sizes of the paginated listings.
const (
	HomePageSize     = pagination.DefaultPageSize
	CategoryPageSize = 15
	SearchPageSize   = pagination.DefaultPageSize
	TagPageSize      = 15
)

// TagIndex lists tags and resolves one by slug.
type TagIndex interface {
	ListWithCounts(ctx context.Context) ([]models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
}

// LikeReader returns the like count of a post.
type LikeReader interface {
	Get(ctx context.Context, postID string) (int, error)
}

// Public groups handlers for the public-facing site.
type Public struct {
	renderer   *render.Renderer
	posts      *blog.Repository
	categories blog.CategoryReader
	tags       TagIndex
	comments   blog.CommentReader
	likes      LikeReader
	views      cache.ViewCounter
	sitemap    *sitemap.Assembler
	baseURL    string
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, posts *blog.Repository, categories blog.CategoryReader, tags TagIndex, comments blog.CommentReader, likes LikeReader, views cache.ViewCounter, baseURL string) *Public {
	return &Public{
		renderer:   renderer,
		posts:      posts,
		categories: categories,
		tags:       tags,
		comments:   comments,
		likes:      likes,
		views:      views,
		sitemap:    sitemap.NewAssembler(posts, categories, tags, baseURL),
		baseURL:    baseURL,
	}
}

// pageData builds the template data shared by every page. The category menu
// is best effort: a failure leaves it empty.
func (p *Public) pageData(ctx context.Context, title string, data map[string]any) *render.PageData {
	cats, err := p.categories.ListCategories(ctx)
	if err != nil {
		slog.Warn("list categories for menu failed", "error", err)
	}
	return &render.PageData{Title: title, Categories: cats, Data: data}
}

func (p *Public) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	p.renderer.Page(w, r, http.StatusNotFound, "404", p.pageData(r.Context(), msg, map[string]any{"message": msg}))
}

func (p *Public) serverError(w http.ResponseWriter, msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
}

// NotFound renders the localized 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.notFound(w, r, "Página no encontrada")
}

// Home lists every post newest first, HomePageSize per page.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := p.posts.ListAll(ctx)
	if err != nil {
		p.serverError(w, "list posts failed", err)
		return
	}

	page := pagination.Paginate(posts, pagination.ParsePage(r.URL.Query().Get("page")), HomePageSize)
	p.renderer.Page(w, r, http.StatusOK, "home", p.pageData(ctx, "", map[string]any{
		"list":  render.PostList{Posts: page.Items},
		"pager": render.Pager{Page: page, Base: "/"},
	}))
}

// Search lists posts matching ?q=, SearchPageSize per page. Comments are
// counted for the visible page only.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	posts, err := p.posts.Search(ctx, query)
	if err != nil {
		p.serverError(w, "search posts failed", err, "query", query)
		return
	}

	page := pagination.Paginate(posts, pagination.ParsePage(r.URL.Query().Get("page")), SearchPageSize)
	p.renderer.Page(w, r, http.StatusOK, "search", p.pageData(ctx, "Búsqueda: "+query, map[string]any{
		"query": query,
		"list":  render.PostList{Posts: page.Items, Counts: blog.CountComments(ctx, p.comments, page.Items)},
		"pager": render.Pager{Page: page, Base: "/search?q=" + url.QueryEscape(query)},
	}))
}

// Category lists the posts of one category, CategoryPageSize per page, with
// comment counts.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	cats, err := p.categories.ListCategories(ctx)
	if err != nil {
		p.serverError(w, "list categories failed", err)
		return
	}
	var category *models.Category
	for i := range cats {
		if cats[i].Slug == slugParam {
			category = &cats[i]
			break
		}
	}
	if category == nil {
		p.notFound(w, r, "Categoría no encontrada")
		return
	}

	posts, err := p.posts.ListByCategory(ctx, slugParam)
	if err != nil {
		p.serverError(w, "list category posts failed", err, "category", slugParam)
		return
	}

	page := pagination.Paginate(posts, pagination.ParsePage(r.URL.Query().Get("page")), CategoryPageSize)
	p.renderer.Page(w, r, http.StatusOK, "category", &render.PageData{
		Title:       category.Name,
		Description: category.Description,
		Categories:  cats,
		Data: map[string]any{
			"category": category,
			"list":     render.PostList{Posts: page.Items, Counts: blog.CountComments(ctx, p.comments, page.Items)},
			"pager":    render.Pager{Page: page, Base: "/categories/" + url.PathEscape(slugParam)},
		},
	})
}

// Tags lists every tag with its post count.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tags, err := p.tags.ListWithCounts(ctx)
	if err != nil {
		p.serverError(w, "list tags failed", err)
		return
	}

	p.renderer.Page(w, r, http.StatusOK, "tags", p.pageData(ctx, "Explora temas por etiquetas", map[string]any{
		"tags": tags,
	}))
}

// Tag lists the posts carrying one tag, TagPageSize per page.
func (p *Public) Tag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	tag, err := p.tags.FindBySlug(ctx, slugParam)
	if err != nil {
		p.serverError(w, "find tag failed", err, "tag", slugParam)
		return
	}
	if tag == nil {
		p.notFound(w, r, "Etiqueta no encontrada")
		return
	}

	posts, err := p.posts.ListByTag(ctx, slugParam)
	if err != nil {
		p.serverError(w, "list tag posts failed", err, "tag", slugParam)
		return
	}

	page := pagination.Paginate(posts, pagination.ParsePage(r.URL.Query().Get("page")), TagPageSize)
	p.renderer.Page(w, r, http.StatusOK, "tag", p.pageData(ctx, "#"+tag.Name, map[string]any{
		"tag":   tag,
		"list":  render.PostList{Posts: page.Items},
		"pager": render.Pager{Page: page, Base: "/tags/" + url.PathEscape(slugParam)},
	}))
}

// Post renders one post with its comments, related posts, neighbours and
// counters. Only the post itself is required; every extra degrades to empty.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	post, err := p.posts.GetBySlug(ctx, slugParam)
	if errors.Is(err, blog.ErrNotFound) {
		p.notFound(w, r, "Artículo no encontrado")
		return
	}
	if err != nil {
		p.serverError(w, "get post failed", err, "slug", slugParam)
		return
	}

	var (
		related  []models.Post
		comments []models.Comment
		likes    int
		views    int64
		adjacent blog.Adjacent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if post.Category.IsZero() {
			return nil
		}
		var err error
		if related, err = p.posts.ListRelated(gctx, post.Category.Slug, post.Slug); err != nil {
			slog.Warn("list related posts failed", "error", err, "slug", post.Slug)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if comments, err = p.comments.ListByPost(gctx, post.ID); err != nil {
			slog.Warn("list comments failed", "error", err, "post_id", post.ID)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if likes, err = p.likes.Get(gctx, post.ID); err != nil {
			slog.Warn("get likes failed", "error", err, "post_id", post.ID)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if views, err = p.views.Count(gctx, post.Slug); err != nil {
			slog.Warn("count views failed", "error", err, "slug", post.Slug)
		}
		return nil
	})
	g.Go(func() error {
		adjacent = p.posts.ListAdjacent(gctx, post.Slug)
		return nil
	})
	_ = g.Wait()

	if comments == nil {
		comments = []models.Comment{}
	}

	data := p.pageData(ctx, post.Title, map[string]any{
		"post":     post,
		"related":  related,
		"comments": comments,
		"likes":    likes,
		"views":    views,
		"adjacent": adjacent,
	})
	data.Description = post.Excerpt
	p.renderer.Page(w, r, http.StatusOK, "post", data)
}

// Mapa renders the human-readable site map: posts grouped by category.
// ?modo=categorias switches the heading to the category overview variant.
func (p *Public) Mapa(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		cats  []models.Category
		posts []models.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = p.categories.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = p.posts.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		p.serverError(w, "load site map failed", err)
		return
	}

	title, heading := "Mapa del sitio", "Mapa del sitio"
	if r.URL.Query().Get("modo") == "categorias" {
		title, heading = "Categorías", "Blog de tecnología en español"
	}

	p.renderer.Page(w, r, http.StatusOK, "mapa", &render.PageData{
		Title:      title,
		Categories: cats,
		Data: map[string]any{
			"heading": heading,
			"groups":  sitemap.GroupByCategory(cats, posts),
		},
	})
}

// Static renders a page whose template needs no data besides the menu.
func (p *Public) Static(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.renderer.Page(w, r, http.StatusOK, name, p.pageData(r.Context(), title, nil))
	}
}

// Sitemap serves /sitemap.xml.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	entries, err := p.sitemap.Build(r.Context())
	if err != nil {
		p.serverError(w, "build sitemap failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := sitemap.WriteXML(w, entries); err != nil {
		slog.Error("write sitemap failed", "error", err)
	}
}

// Robots serves /robots.txt. The X-Robots-Tag opts the site out of AI
// training crawlers.
func (p *Public) Robots(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "public, max-age=3600, no-transform")
	h.Set("X-Robots-Tag", "noai, noimageai")
	_, _ = w.Write([]byte(sitemap.Robots(p.baseURL)))
}
