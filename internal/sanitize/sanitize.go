// Package sanitize cleans HTML coming from the admin editor and from
// visitors before it is stored or rendered.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripTagsPolicy = bluemonday.StripTagsPolicy()
	postPolicy      = newPostPolicy()
	commentPolicy   = newCommentPolicy()
)

// newPostPolicy allows the markup the rich-text editor produces: user
// generated content plus code highlighting classes and figure captions.
func newPostPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span", "div", "figure", "img", "p")
	p.AllowElements("figure", "figcaption", "mark", "u", "s")
	p.AllowAttrs("style").OnElements("span", "p")
	p.AllowAttrs("target").Matching(bluemonday.Paragraph).OnElements("a")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// newCommentPolicy allows basic formatting only. Links are nofollow.
func newCommentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements("p", "br", "strong", "em", "b", "i", "code", "pre", "blockquote", "ul", "ol", "li", "del")
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")
	return p
}

// Post sanitizes post body HTML from the admin editor.
func Post(s string) string {
	return postPolicy.Sanitize(s)
}

// Comment sanitizes comment HTML rendered from visitor input.
func Comment(s string) string {
	return commentPolicy.Sanitize(s)
}

// Text removes every tag and returns plain text with entities decoded and
// whitespace collapsed.
func Text(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(stripTagsPolicy.Sanitize(s))), " ")
}

// Words counts whitespace-separated words in the text content of s.
func Words(s string) int {
	return len(strings.Fields(Text(s)))
}
