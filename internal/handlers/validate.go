package handlers

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"flik/internal/slug"
)

// Validation limits for form and API fields.
const (
	maxTitleLen      = 300
	maxSlugLen       = 300
	maxExcerptLen    = 1_000
	maxImageLen      = 1_000
	maxContentLen    = 200_000
	maxCommentLen    = 5_000
	maxSubmissionLen = 50_000
	maxEmailLen      = 254
)

// postForm is the admin post form as submitted.
type postForm struct {
	Title       string
	Slug        string
	CategoryID  string
	NewCategory string
	Excerpt     string
	Image       string
	Date        string
	Content     string
	Featured    bool
	TagIDs      []string
	NewTags     string // comma separated names
}

// validatePost checks the admin form and returns one message per invalid
// field, keyed by form field name. Slug is checked after generation.
func validatePost(f postForm) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "El título es obligatorio."
	} else if utf8.RuneCountInString(f.Title) > maxTitleLen {
		errs["title"] = "El título es demasiado largo (máximo 300 caracteres)."
	}
	if f.Slug == "" {
		errs["slug"] = "El slug es obligatorio."
	} else if utf8.RuneCountInString(f.Slug) > maxSlugLen {
		errs["slug"] = "El slug es demasiado largo (máximo 300 caracteres)."
	}
	if strings.TrimSpace(f.CategoryID) == "" && slug.Generate(f.NewCategory) == "" {
		errs["category_id"] = "La categoría es obligatoria."
	}
	if utf8.RuneCountInString(f.Excerpt) > maxExcerptLen {
		errs["excerpt"] = "El extracto es demasiado largo (máximo 1.000 caracteres)."
	}
	if utf8.RuneCountInString(f.Image) > maxImageLen {
		errs["image"] = "La ruta de la imagen es demasiado larga."
	}
	if utf8.RuneCountInString(f.Content) > maxContentLen {
		errs["content"] = "El contenido es demasiado largo (máximo 200.000 caracteres)."
	}
	if f.Date != "" {
		if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
			errs["date"] = "La fecha debe tener el formato AAAA-MM-DD."
		}
	}

	return errs
}

// validateComment checks a visitor comment and returns the first error.
func validateComment(email, content string) string {
	if !validEmail(email) {
		return "El correo no es válido."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "El comentario es demasiado largo (máximo 5.000 caracteres)."
	}
	return ""
}

// validateSubmission checks a reader proposal and returns the first error.
func validateSubmission(title, email, content string) string {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "El título es demasiado largo (máximo 300 caracteres)."
	}
	if !validEmail(email) {
		return "El correo no es válido."
	}
	if utf8.RuneCountInString(content) > maxSubmissionLen {
		return "El contenido es demasiado largo (máximo 50.000 caracteres)."
	}
	return ""
}

// validEmail accepts a bare address such as "ana@example.com".
func validEmail(s string) bool {
	if len(s) > maxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
