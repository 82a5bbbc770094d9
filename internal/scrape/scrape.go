// Package scrape imports an external article as a draft post. It fetches
// the page, picks the main content block, drops scripts, embeds and
// advertising, and derives title, slug, excerpt and lead image.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"flik/internal/slug"
)

const (
	// ExcerptLength is the number of characters kept for the excerpt.
	ExcerptLength = 200
	// ContentLength is the maximum number of characters of body text kept.
	ContentLength = 5000

	maxBodyBytes = 5 << 20
)

// noise matches elements that never belong in the imported text.
const noise = `script, style, noscript, template, iframe, svg, video, audio, form, button,
	.ad, .ads, [class*="ad-"], .advert, .advertisement,
	.share, .social, .comments, .comment, .related, .banner, .cookie,
	[data-component*="share"], [role="button"], .js-whatsapp`

// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("invalid url")

// Article is the draft extracted from a page.
type Article struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
	Source  string `json:"source"`
}

// Scraper fetches and parses external pages.
type Scraper struct {
	Client *http.Client
}

// New returns a Scraper with a bounded HTTP client.
func New() *Scraper {
	return &Scraper{Client: &http.Client{Timeout: 15 * time.Second}}
}

// Fetch downloads rawURL and extracts an Article from it.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "FlikImporter/1.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u.Host, resp.StatusCode)
	}

	return Parse(io.LimitReader(resp.Body, maxBodyBytes), u)
}

// Parse extracts an Article from an HTML document served at base.
func Parse(r io.Reader, base *url.URL) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	clean := root.Clone()
	clean.Find(noise).Remove()

	content := strings.Join(strings.Fields(clean.Text()), " ")

	image, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	if image == "" {
		image, _ = clean.Find("img").First().Attr("src")
	}

	return &Article{
		Title:   title,
		Slug:    slug.Generate(title),
		Excerpt: truncate(content, ExcerptLength, "…"),
		Content: truncate(content, ContentLength, ""),
		Image:   absolutize(image, base),
		Source:  base.String(),
	}, nil
}

// truncate cuts s to n runes, appending suffix when something was cut.
func truncate(s string, n int, suffix string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + suffix
}

// absolutize resolves src against base. Unparseable values are returned as is.
func absolutize(src string, base *url.URL) string {
	if src == "" {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil || base == nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
