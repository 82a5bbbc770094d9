package blog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"flik/internal/models"
)

func TestCountComments(t *testing.T) {
	m := &memStore{
		comments: map[string][]models.Comment{
			"p2": {{ID: "a", PostID: "p2"}, {ID: "b", PostID: "p2"}},
		},
	}
	posts := []models.Post{{ID: "p1"}, {ID: "p2"}}

	got := CountComments(context.Background(), m, posts)
	assert.Equal(t, map[string]int{"p1": 0, "p2": 2}, got)
}

func TestCountCommentsIsolatesFailures(t *testing.T) {
	m := &memStore{
		comments: map[string][]models.Comment{
			"a": {{ID: "1"}},
			"b": {{ID: "2"}, {ID: "3"}, {ID: "4"}},
			"c": {{ID: "5"}},
		},
		failComments: map[string]bool{"b": true},
	}
	posts := []models.Post{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := CountComments(context.Background(), m, posts)
	assert.Equal(t, map[string]int{"a": 1, "b": 0, "c": 1}, got)
}

func TestCountCommentsEmpty(t *testing.T) {
	got := CountComments(context.Background(), &memStore{}, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
