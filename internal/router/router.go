// Package router sets up all HTTP routes and middleware chains for the
// Flik blog. It organizes routes into public pages, the JSON API and the
// gated admin area.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flik/internal/handlers"
	"flik/internal/middleware"
)

// Deps are the handler groups and shared middleware the router mounts.
type Deps struct {
	Public        *handlers.Public
	API           *handlers.API
	Admin         *handlers.Admin
	AdminGate     *middleware.AdminGate
	RateLimiter   *middleware.RateLimiter
	Static        fs.FS // served under /static/
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(d.Public.NotFound)

	r.Get("/health", healthHandler)

	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(d.Static)))
	}

	// Public pages.
	r.Get("/", d.Public.Home)
	r.Get("/search", d.Public.Search)
	r.Get("/categories/{slug}", d.Public.Category)
	r.Get("/tags", d.Public.Tags)
	r.Get("/tags/{slug}", d.Public.Tag)
	r.Get("/posts/{slug}", d.Public.Post)
	r.Get("/mapa", d.Public.Mapa)
	r.Get("/about", d.Public.Static("about", "Sobre Flik"))
	r.Get("/contact", d.Public.Static("contact", "Contacto"))
	r.Get("/privacy", d.Public.Static("privacy", "Política de privacidad"))
	r.Get("/terminos", d.Public.Static("terminos", "Términos y condiciones"))
	r.Get("/sitemap.xml", d.Public.Sitemap)
	r.Get("/robots.txt", d.Public.Robots)

	// JSON API. Writes from visitors are rate limited per client IP.
	r.Route("/api", func(r chi.Router) {
		r.Get("/comments", d.API.Comments)
		r.Get("/like", d.API.Likes)
		r.Get("/views", d.API.Views)

		r.Group(func(r chi.Router) {
			if d.RateLimiter != nil {
				r.Use(d.RateLimiter.Middleware)
			}
			r.Post("/comments", d.API.CreateComment)
			r.Post("/like", d.API.Like)
			r.Post("/track-view", d.API.TrackView)
			r.Post("/submit-post", d.API.SubmitPost)
		})

		// Editor tools touch the filesystem and fetch remote URLs.
		r.Group(func(r chi.Router) {
			r.Use(d.AdminGate.Middleware)
			r.Post("/optimize-image", d.API.OptimizeImage)
			r.Post("/scrape", d.API.Scrape)
		})
	})

	// Admin routes, behind the host/basic-auth gate and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(d.AdminGate.Middleware)
		r.Use(middleware.NewCSRF(d.SecureCookies))

		r.Get("/", d.Admin.List)
		r.Get("/new", d.Admin.New)
		r.Post("/new", d.Admin.Create)
		r.Get("/edit/{slug}", d.Admin.Edit)
		r.Post("/edit/{slug}", d.Admin.Update)
		r.Post("/delete/{slug}", d.Admin.Delete)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
