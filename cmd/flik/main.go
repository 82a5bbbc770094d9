// Package main is the entry point for the Flik blog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flik/internal/blog"
	"flik/internal/cache"
	"flik/internal/config"
	"flik/internal/database"
	"flik/internal/handlers"
	"flik/internal/middleware"
	"flik/internal/notify"
	"flik/internal/render"
	"flik/internal/router"
	"flik/internal/scrape"
	"flik/internal/storage"
	"flik/internal/store"
	"flik/web"
)

func main() {
	// Structured logger, text in development and JSON elsewhere.
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"site_url", cfg.SiteURL,
	)

	// Connect to PostgreSQL.
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the default categories in development (no-op if present).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Valkey only caches view counts, so the site runs without it.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, view counts are not cached", "error", err)
	} else {
		defer valkeyClient.Close()
	}

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	categoryStore := store.NewCategoryStore(db)
	postStore := store.NewPostStore(db)
	tagStore := store.NewTagStore(db)
	commentStore := store.NewCommentStore(db)
	likeStore := store.NewLikeStore(db)
	viewStore := store.NewViewStore(db)
	submissionStore := store.NewSubmissionStore(db)

	repo := blog.New(categoryStore, postStore, tagStore)
	views := cache.NewViewCache(valkeyClient, viewStore, cfg.ViewCacheTTL)

	apiDeps := handlers.APIDeps{
		Comments:    commentStore,
		Likes:       likeStore,
		Views:       views,
		Submissions: submissionStore,
		Notifier:    notify.New(cfg.ResendAPIKey, cfg.NotifyFrom, cfg.NotifyTo),
		Scraper:     scrape.New(),
		PublicDir:   cfg.PublicDir,
	}

	// S3-compatible object storage is optional; uploads answer 503 without it.
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		apiDeps.Uploader = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	api := handlers.NewAPI(apiDeps)
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Public:        handlers.NewPublic(renderer, repo, categoryStore, tagStore, commentStore, likeStore, views, cfg.SiteURL),
		API:           api,
		Admin:         handlers.NewAdmin(renderer, repo, postStore, categoryStore, tagStore),
		AdminGate:     middleware.NewAdminGate(cfg.AdminHosts, cfg.AdminUser, cfg.AdminPasswordHash),
		RateLimiter:   limiter,
		Static:        web.Static(),
		SecureCookies: !cfg.IsDev(),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Let queued comment notifications finish.
	api.Wait()

	slog.Info("server stopped gracefully")
}
