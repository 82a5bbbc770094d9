package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet is the sitemaps.org root element.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is a single <url> element. LastModified uses the YYYY-MM-DD form.
type URL struct {
	Location     string `xml:"loc"`
	LastModified string `xml:"lastmod,omitempty"`
}

// WriteXML encodes entries as a sitemap document.
func WriteXML(w io.Writer, entries []Entry) error {
	set := URLSet{Xmlns: sitemapNS, URLs: make([]URL, len(entries))}
	for i, e := range entries {
		set.URLs[i] = URL{Location: e.URL}
		if !e.LastModified.IsZero() {
			set.URLs[i].LastModified = e.LastModified.UTC().Format("2006-01-02")
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write sitemap header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return nil
}
