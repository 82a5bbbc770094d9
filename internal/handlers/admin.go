package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"flik/internal/blog"
	"flik/internal/models"
	"flik/internal/render"
	"flik/internal/sanitize"
	"flik/internal/slug"
)

const msgTaxonomyFailed = "No se pudo crear la categoría o las etiquetas."

// PostWriter persists posts edited in the admin.
type PostWriter interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, originalSlug string, p *models.Post) (*models.Post, error)
	DeleteBySlug(ctx context.Context, slug string) error
	Count(ctx context.Context) (int, error)
}

// CategoryManager lists categories and creates new ones from the post form.
// FindBySlug returns (nil, nil) when the slug does not exist.
type CategoryManager interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}

// TagAssigner lists and creates tags and replaces the tag set of a post.
type TagAssigner interface {
	ListWithCounts(ctx context.Context) ([]models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	Create(ctx context.Context, t *models.Tag) (*models.Tag, error)
	ReplacePostTags(ctx context.Context, postID string, tagIDs []string) error
}

// Admin groups the post management handlers.
type Admin struct {
	renderer   *render.Renderer
	posts      *blog.Repository
	writer     PostWriter
	categories CategoryManager
	tags       TagAssigner
}

// NewAdmin creates the Admin handler group.
func NewAdmin(renderer *render.Renderer, posts *blog.Repository, writer PostWriter, categories CategoryManager, tags TagAssigner) *Admin {
	return &Admin{
		renderer:   renderer,
		posts:      posts,
		writer:     writer,
		categories: categories,
		tags:       tags,
	}
}

// List shows every post with edit and delete actions.
func (a *Admin) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := a.posts.ListAll(ctx)
	if err != nil {
		slog.Error("admin list posts failed", "error", err)
		http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
		return
	}
	total, err := a.writer.Count(ctx)
	if err != nil {
		slog.Warn("count posts failed", "error", err)
		total = len(posts)
	}

	a.renderer.Page(w, r, http.StatusOK, "admin_list", &render.PageData{
		Title: "Administración",
		Data:  map[string]any{"posts": posts, "total": total},
	})
}

// New shows an empty post form.
func (a *Admin) New(w http.ResponseWriter, r *http.Request) {
	a.renderForm(w, r, http.StatusOK, &models.Post{}, false, nil, "")
}

// Create stores a new post from the form.
func (a *Admin) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, errs, err := a.preparePost(ctx, parsePostForm(r))
	if err != nil {
		slog.Error("create taxonomy failed", "error", err)
		a.renderForm(w, r, http.StatusInternalServerError, post, false, nil, msgTaxonomyFailed)
		return
	}
	if len(errs) > 0 {
		a.renderForm(w, r, http.StatusUnprocessableEntity, post, false, errs, "")
		return
	}

	created, err := a.writer.Create(ctx, post)
	if err != nil {
		slog.Error("create post failed", "error", err, "slug", post.Slug)
		a.renderForm(w, r, http.StatusConflict, post, false, nil, "No se pudo guardar. El slug puede estar en uso.")
		return
	}

	if err := a.tags.ReplacePostTags(ctx, created.ID, tagIDs(post)); err != nil {
		slog.Error("assign tags failed", "error", err, "post_id", created.ID)
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Edit shows the form filled with the post at {slug}.
func (a *Admin) Edit(w http.ResponseWriter, r *http.Request) {
	post, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	a.renderForm(w, r, http.StatusOK, post, true, nil, "")
}

// Update saves the form over the post at {slug}. The slug itself may change.
// An empty date keeps the stored one.
func (a *Admin) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	originalSlug := chi.URLParam(r, "slug")

	existing, ok := a.loadPost(w, r)
	if !ok {
		return
	}

	post, errs, err := a.preparePost(ctx, parsePostForm(r))
	if post.Date.IsZero() {
		post.Date = existing.Date
	}
	if err != nil {
		slog.Error("create taxonomy failed", "error", err)
		a.renderForm(w, r, http.StatusInternalServerError, post, true, nil, msgTaxonomyFailed)
		return
	}
	if len(errs) > 0 {
		a.renderForm(w, r, http.StatusUnprocessableEntity, post, true, errs, "")
		return
	}

	updated, err := a.writer.Update(ctx, originalSlug, post)
	if err != nil {
		slog.Error("update post failed", "error", err, "slug", originalSlug)
		a.renderForm(w, r, http.StatusConflict, post, true, nil, "No se pudo guardar. El slug puede estar en uso.")
		return
	}
	if updated == nil {
		http.Error(w, "Artículo no encontrado", http.StatusNotFound)
		return
	}

	if err := a.tags.ReplacePostTags(ctx, updated.ID, tagIDs(post)); err != nil {
		slog.Error("assign tags failed", "error", err, "post_id", updated.ID)
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Delete removes the post at {slug}.
func (a *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	if err := a.writer.DeleteBySlug(r.Context(), slugParam); err != nil {
		slog.Error("delete post failed", "error", err, "slug", slugParam)
		http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// loadPost fetches the post at {slug} with its tags, answering 404 or 500
// itself when it cannot.
func (a *Admin) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	slugParam := chi.URLParam(r, "slug")

	post, err := a.posts.GetBySlug(r.Context(), slugParam)
	if errors.Is(err, blog.ErrNotFound) {
		http.Error(w, "Artículo no encontrado", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("admin get post failed", "error", err, "slug", slugParam)
		http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
		return nil, false
	}
	return post, true
}

func (a *Admin) renderForm(w http.ResponseWriter, r *http.Request, status int, post *models.Post, editing bool, errs map[string]string, flash string) {
	ctx := r.Context()

	cats, err := a.categories.ListCategories(ctx)
	if err != nil {
		slog.Warn("list categories for form failed", "error", err)
	}
	tags, err := a.tags.ListWithCounts(ctx)
	if err != nil {
		slog.Warn("list tags for form failed", "error", err)
	}
	if errs == nil {
		errs = map[string]string{}
	}

	action, title := "/admin/new", "Nuevo artículo"
	if editing {
		action, title = "/admin/edit/"+chi.URLParam(r, "slug"), "Editar artículo"
	}

	a.renderer.Page(w, r, status, "admin_form", &render.PageData{
		Title: title,
		Data: map[string]any{
			"post":       post,
			"editing":    editing,
			"action":     action,
			"errors":     errs,
			"flash":      flash,
			"categories": cats,
			"tags":       tags,
		},
	})
}

// parsePostForm reads the admin form fields.
func parsePostForm(r *http.Request) postForm {
	_ = r.ParseForm()
	return postForm{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Slug:        strings.TrimSpace(r.PostFormValue("slug")),
		CategoryID:  strings.TrimSpace(r.PostFormValue("category_id")),
		NewCategory: strings.TrimSpace(r.PostFormValue("new_category")),
		Excerpt:     strings.TrimSpace(r.PostFormValue("excerpt")),
		Image:       strings.TrimSpace(r.PostFormValue("image")),
		Date:        strings.TrimSpace(r.PostFormValue("date")),
		Content:     r.PostFormValue("content"),
		Featured:    r.PostFormValue("featured") != "",
		TagIDs:      r.PostForm["tags"],
		NewTags:     r.PostFormValue("new_tags"),
	}
}

// preparePost validates the form and, when it is valid, resolves the new
// category and tag names into ids, creating the ones that do not exist yet.
func (a *Admin) preparePost(ctx context.Context, f postForm) (*models.Post, map[string]string, error) {
	post, errs := buildPost(f)
	if len(errs) > 0 {
		return post, errs, nil
	}

	if f.CategoryID == "" && f.NewCategory != "" {
		c, err := a.ensureCategory(ctx, f.NewCategory)
		if err != nil {
			return post, nil, err
		}
		f.CategoryID = c.ID
	}

	seen := make(map[string]bool, len(f.TagIDs))
	for _, id := range f.TagIDs {
		seen[id] = true
	}
	for _, name := range strings.Split(f.NewTags, ",") {
		name = strings.TrimSpace(name)
		if slug.Generate(name) == "" {
			continue
		}
		t, err := a.ensureTag(ctx, name)
		if err != nil {
			return post, nil, err
		}
		if !seen[t.ID] {
			seen[t.ID] = true
			f.TagIDs = append(f.TagIDs, t.ID)
		}
	}

	post, errs = buildPost(f)
	return post, errs, nil
}

func (a *Admin) ensureCategory(ctx context.Context, name string) (*models.Category, error) {
	s := slug.Generate(name)
	existing, err := a.categories.FindBySlug(ctx, s)
	if err != nil || existing != nil {
		return existing, err
	}
	return a.categories.Create(ctx, &models.Category{Slug: s, Name: name})
}

func (a *Admin) ensureTag(ctx context.Context, name string) (*models.Tag, error) {
	s := slug.Generate(name)
	existing, err := a.tags.FindBySlug(ctx, s)
	if err != nil || existing != nil {
		return existing, err
	}
	return a.tags.Create(ctx, &models.Tag{Slug: s, Name: name})
}

// tagIDs returns the ids of the tags selected for p.
func tagIDs(p *models.Post) []string {
	ids := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.TagID)
	}
	return ids
}

// buildPost turns the form into a post: the slug defaults to one generated
// from the title, the image to "/{slug}.png", and the content HTML is
// sanitized. The post is returned even when invalid so the form can be
// re-rendered with the submitted values.
func buildPost(f postForm) (*models.Post, map[string]string) {
	if f.Slug == "" {
		f.Slug = slug.Generate(f.Title)
	} else {
		f.Slug = slug.Generate(f.Slug)
	}
	if f.Image == "" && f.Slug != "" {
		f.Image = "/" + f.Slug + ".png"
	}

	post := &models.Post{
		Title:    f.Title,
		Slug:     f.Slug,
		Excerpt:  f.Excerpt,
		Image:    f.Image,
		Content:  sanitize.Post(f.Content),
		Featured: f.Featured,
	}
	if f.CategoryID != "" {
		id := f.CategoryID
		post.CategoryID = &id
	}
	if d, err := time.Parse(time.DateOnly, f.Date); err == nil {
		post.Date = d
	}
	for _, id := range f.TagIDs {
		post.Tags = append(post.Tags, models.PostTag{TagID: id})
	}

	return post, validatePost(f)
}
