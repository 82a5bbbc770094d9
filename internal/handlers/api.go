package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"flik/internal/cache"
	"flik/internal/imaging"
	"flik/internal/models"
	"flik/internal/notify"
	"flik/internal/scrape"
)

const (
	maxUploadSize   = 20 << 20 // 20 MB
	notifyTimeout   = 15 * time.Second
	msgMissingField = "Faltan campos obligatorios"
)

// allowedImageTypes are the upload formats the optimizer can decode.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// CommentService reads and stores visitor comments.
type CommentService interface {
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	ListAll(ctx context.Context) ([]models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
}

// LikeCounter reads and increments post likes.
type LikeCounter interface {
	LikeReader
	Increment(ctx context.Context, postID string) (int, error)
}

// SubmissionWriter stores reader article proposals.
type SubmissionWriter interface {
	Create(ctx context.Context, s *models.Submission) (*models.Submission, error)
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// ArticleFetcher imports an external article.
type ArticleFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*scrape.Article, error)
}

// APIDeps are the collaborators of the JSON API. Uploader may be nil when
// object storage is not configured.
type APIDeps struct {
	Comments    CommentService
	Likes       LikeCounter
	Views       cache.ViewCounter
	Submissions SubmissionWriter
	Notifier    notify.Notifier
	Scraper     ArticleFetcher
	Uploader    Uploader
	PublicDir   string
	ImageWidth  int
}

// API groups the JSON endpoints under /api.
type API struct {
	deps    APIDeps
	pending sync.WaitGroup // in-flight notifications
}

// NewAPI creates the API handler group.
func NewAPI(deps APIDeps) *API {
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{}
	}
	if deps.ImageWidth < 1 {
		deps.ImageWidth = imaging.DefaultWidth
	}
	return &API{deps: deps}
}

// Wait blocks until every queued notification has finished.
func (a *API) Wait() {
	a.pending.Wait()
}

// Comments lists comments newest first, all of them or only those of
// ?postId=.
func (a *API) Comments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := strings.TrimSpace(r.URL.Query().Get("postId"))

	var (
		comments []models.Comment
		err      error
	)
	if postID != "" {
		comments, err = a.deps.Comments.ListByPost(ctx, postID)
	} else {
		comments, err = a.deps.Comments.ListAll(ctx)
	}
	if err != nil {
		slog.Error("list comments failed", "error", err, "post_id", postID)
		writeError(w, http.StatusInternalServerError, "No se pudieron cargar los comentarios")
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, comments)
}

// CreateComment stores a comment and notifies the site owner in the
// background. postId, email and content are required.
func (a *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r, "postId", "email", "content")
	if err != nil || missing(fields, "postId", "email", "content") {
		writeError(w, http.StatusBadRequest, msgMissingField)
		return
	}
	if msg := validateComment(fields["email"], fields["content"]); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := a.deps.Comments.Create(r.Context(), &models.Comment{
		PostID:  fields["postId"],
		Email:   fields["email"],
		Content: fields["content"],
	})
	if err != nil {
		slog.Error("create comment failed", "error", err, "post_id", fields["postId"])
		writeError(w, http.StatusInternalServerError, "No se pudo guardar el comentario")
		return
	}

	a.notifyComment(r.Context(), created)
	respondForm(w, r, http.StatusCreated, created)
}

// notifyComment sends the notification without holding up the response.
// Failures are only logged.
func (a *API) notifyComment(ctx context.Context, c *models.Comment) {
	ctx = context.WithoutCancel(ctx)
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := a.deps.Notifier.CommentCreated(ctx, c.PostID, c); err != nil {
			slog.Warn("comment notification failed", "error", err, "comment_id", c.ID)
		}
	}()
}

// Likes returns {"likes": n} for ?postId=. Unknown posts and read errors
// report zero.
func (a *API) Likes(w http.ResponseWriter, r *http.Request) {
	postID := strings.TrimSpace(r.URL.Query().Get("postId"))
	if postID == "" {
		writeJSON(w, http.StatusOK, map[string]int{"likes": 0})
		return
	}

	likes, err := a.deps.Likes.Get(r.Context(), postID)
	if err != nil {
		slog.Warn("get likes failed", "error", err, "post_id", postID)
		likes = 0
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// Like adds one like to the post and returns the new total.
func (a *API) Like(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r, "postId")
	if err != nil || missing(fields, "postId") {
		writeError(w, http.StatusBadRequest, "Falta postId")
		return
	}

	likes, err := a.deps.Likes.Increment(r.Context(), fields["postId"])
	if err != nil {
		slog.Error("increment likes failed", "error", err, "post_id", fields["postId"])
		writeError(w, http.StatusInternalServerError, "No se pudo registrar el me gusta")
		return
	}
	respondForm(w, r, http.StatusOK, map[string]int{"likes": likes})
}

// TrackView records one view of {slug} and answers "ok".
func (a *API) TrackView(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r, "slug")
	if err != nil || missing(fields, "slug") {
		http.Error(w, "error", http.StatusBadRequest)
		return
	}

	if err := a.deps.Views.Track(r.Context(), fields["slug"]); err != nil {
		slog.Error("track view failed", "error", err, "slug", fields["slug"])
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Views returns {"views": n} for ?slug=; a missing slug reports zero.
func (a *API) Views(w http.ResponseWriter, r *http.Request) {
	slugParam := strings.TrimSpace(r.URL.Query().Get("slug"))
	if slugParam == "" {
		writeJSON(w, http.StatusOK, map[string]int64{"views": 0})
		return
	}

	views, err := a.deps.Views.Count(r.Context(), slugParam)
	if err != nil {
		slog.Error("count views failed", "error", err, "slug", slugParam)
		writeError(w, http.StatusInternalServerError, "No se pudieron contar las visitas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"views": views})
}

// SubmitPost stores an article proposed by a reader.
func (a *API) SubmitPost(w http.ResponseWriter, r *http.Request) {
	names := []string{"title", "email", "category", "content"}
	fields, err := readFields(r, names...)
	if err != nil || missing(fields, names...) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": msgMissingField})
		return
	}
	if msg := validateSubmission(fields["title"], fields["email"], fields["content"]); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": msg})
		return
	}

	_, err = a.deps.Submissions.Create(r.Context(), &models.Submission{
		Title:    fields["title"],
		Email:    fields["email"],
		Category: fields["category"],
		Content:  fields["content"],
	})
	if err != nil {
		slog.Error("create submission failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error interno del servidor"})
		return
	}
	respondForm(w, r, http.StatusCreated, map[string]string{"message": "Artículo enviado correctamente"})
}

// OptimizeImage resizes an image to the content width and re-encodes it
// as compressed PNG. A JSON {"fileName"} body rewrites a file of the public
// directory in place; a multipart "file" upload is optimized and stored in
// object storage.
func (a *API) OptimizeImage(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		a.optimizeUpload(w, r)
		return
	}

	fields, err := readFields(r, "fileName")
	if err != nil || missing(fields, "fileName") {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Falta fileName"})
		return
	}

	path, ok := publicPath(a.deps.PublicDir, fields["fileName"])
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Nombre de archivo inválido"})
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "El archivo no existe en /public"})
		return
	}

	img, err := imaging.OptimizeFile(path, a.deps.ImageWidth)
	if err != nil {
		slog.Error("optimize image failed", "error", err, "file", fields["fileName"])
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "No se pudo optimizar la imagen"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "width": img.Width, "height": img.Height})
}

func (a *API) optimizeUpload(w http.ResponseWriter, r *http.Request) {
	if a.deps.Uploader == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "Almacenamiento no configurado"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"ok": false, "error": "Archivo demasiado grande (máximo 20 MB)"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Falta el archivo"})
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "No se pudo leer el archivo"})
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	if !allowedImageTypes[contentType] {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": fmt.Sprintf("Tipo de archivo %q no permitido", contentType)})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "No se pudo leer el archivo"})
		return
	}

	img, err := imaging.Optimize(file, a.deps.ImageWidth)
	if err != nil {
		slog.Error("optimize upload failed", "error", err, "file", header.Filename)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"ok": false, "error": "No se pudo optimizar la imagen"})
		return
	}

	now := time.Now()
	key := fmt.Sprintf("images/%d/%02d/%s.png", now.Year(), now.Month(), uuid.NewString())
	url, err := a.deps.Uploader.Upload(r.Context(), key, img.ContentType, img.Data)
	if err != nil {
		slog.Error("upload image failed", "error", err, "key", key)
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": "No se pudo subir la imagen"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "url": url, "width": img.Width, "height": img.Height})
}

// publicPath resolves name inside dir, rejecting anything that would
// escape it. A leading slash is accepted as in "/images/a.png".
func publicPath(dir, name string) (string, bool) {
	name = filepath.FromSlash(strings.TrimLeft(name, "/"))
	if !filepath.IsLocal(name) {
		return "", false
	}
	return filepath.Join(dir, name), true
}

// Scrape imports an external article from {"url"} as a draft.
func (a *API) Scrape(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r, "url")
	if err != nil || missing(fields, "url") {
		writeError(w, http.StatusBadRequest, "Falta URL")
		return
	}

	article, err := a.deps.Scraper.Fetch(r.Context(), fields["url"])
	if errors.Is(err, scrape.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, "URL inválida")
		return
	}
	if err != nil {
		slog.Error("scrape failed", "error", err, "url", fields["url"])
		writeError(w, http.StatusInternalServerError, "Error al procesar la URL")
		return
	}

	writeJSON(w, http.StatusOK, article)
}
