// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the admin pages. Every page template is parsed together with the base
// layout and the shared partials.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"flik/internal/middleware"
	"flik/internal/models"
	"flik/internal/pagination"
)

//go:embed templates/*.html
var templateFS embed.FS

// SiteName is the title suffix used on every page.
const SiteName = "Flik | Blog de tecnología en español"

// PageData holds all data passed to templates.
type PageData struct {
	Title       string            // Page title for <title> tag
	Description string            // Meta description
	CSRFToken   string            // CSRF token for admin forms
	Categories  []models.Category // Navigation menu
	Data        map[string]any    // Page-specific data
}

// PostList feeds the post_list partial. Counts maps post ID to comment
// count and may be nil when the page does not show counts.
type PostList struct {
	Posts  []models.Post
	Counts map[string]int
}

// Pager feeds the pager partial. Base is the page URL without the page
// parameter.
type Pager struct {
	Page pagination.Result[models.Post]
	Base string
}

// FullTitle returns the <title> text.
func (d *PageData) FullTitle() string {
	if d.Title == "" {
		return SiteName
	}
	return d.Title + " | " + SiteName
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
}

// layoutFiles are parsed into every page template.
var layoutFiles = map[string]bool{
	"base.html":     true,
	"partials.html": true,
}

// New parses every page template from the embedded filesystem.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || layoutFiles[name] || !strings.HasSuffix(name, ".html") {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(funcMap()).ParseFS(
			templateFS, "templates/base.html", "templates/partials.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Page renders the named template inside the base layout with the given
// status. Rendering goes to a buffer first so a template error still
// produces a clean 500.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("render template failed", "name", name, "error", err)
		http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Has reports whether a page template with the given name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}
