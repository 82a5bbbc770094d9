package render

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"flik/internal/markdown"
	"flik/internal/models"
	"flik/internal/sanitize"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDate renders t as "2 de enero de 2025" with the first letter
// capitalised. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	s := fmt.Sprintf("%d de %s de %d", t.Day(), monthsES[t.Month()-1], t.Year())
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// ReadingTime estimates the reading time of HTML content at WordsPerMinute,
// rounding up: "N min de lectura".
func ReadingTime(content string) string {
	words := sanitize.Words(content)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	return strconv.Itoa(minutes) + " min de lectura"
}

// PageURL appends the page query parameter to base, dropping it for page 1.
func PageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// publishedAt accepts both the value and pointer posts templates range over.
func publishedAt(v any) time.Time {
	switch p := v.(type) {
	case models.Post:
		return p.PublishedAt()
	case *models.Post:
		if p != nil {
			return p.PublishedAt()
		}
	}
	return time.Time{}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatDate":  FormatDate,
		"readingTime": ReadingTime,
		"pageURL":     PageURL,
		"publishedAt": publishedAt,
		// postHTML re-sanitizes stored content; rows imported outside the
		// admin form never went through the write-side policy.
		"postHTML": func(s string) template.HTML {
			return template.HTML(sanitize.Post(s))
		},
		"markdown": func(s string) template.HTML {
			out, err := markdown.ToHTML(s)
			if err != nil {
				slog.Warn("render comment markdown failed", "error", err)
				return template.HTML(template.HTMLEscapeString(s))
			}
			return template.HTML(out)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		// hasTag reports whether the post carries tagID; used by the admin form.
		"hasTag": func(p *models.Post, tagID string) bool {
			if p == nil {
				return false
			}
			for _, pt := range p.Tags {
				if pt.TagID == tagID {
					return true
				}
			}
			return false
		},
		"initial": func(s string) string {
			r, _ := utf8.DecodeRuneInString(strings.TrimSpace(s))
			if r == utf8.RuneError {
				return "?"
			}
			return string(unicode.ToUpper(r))
		},
	}
}
