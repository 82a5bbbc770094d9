package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		absent   []string
	}{
		{
			name:     "emphasis",
			in:       "Muy *buen* artículo, **gracias**",
			contains: []string{"<em>buen</em>", "<strong>gracias</strong>"},
		},
		{
			name:     "strikethrough",
			in:       "~~error~~",
			contains: []string{"<del>error</del>"},
		},
		{
			name:     "raw html is not executed",
			in:       "hola <script>alert(1)</script>",
			contains: []string{"hola"},
			absent:   []string{"<script>"},
		},
		{
			name:     "links get nofollow",
			in:       "mira https://flik.cl",
			contains: []string{`href="https://flik.cl"`, "nofollow"},
		},
		{
			name:     "fenced code",
			in:       "```go\nfmt.Println(\"hola\")\n```",
			contains: []string{"<pre", "Println"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.in)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("output missing %q:\n%s", s, got)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(got, s) {
					t.Errorf("output should not contain %q:\n%s", s, got)
				}
			}
		})
	}
}
