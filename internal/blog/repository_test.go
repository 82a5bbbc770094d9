package blog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flik/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 12, 0, 0, 0, time.UTC)
}

// seededStore returns the two-post, one-category fixture.
func seededStore() *memStore {
	return &memStore{
		categories: []models.Category{{ID: "c1", Slug: "tech", Name: "Tech"}},
		posts: []models.Post{
			{ID: "2", Slug: "p2", Title: "Segundo", CategoryID: strPtr("c1"), CreatedAt: day(1)},
			{ID: "1", Slug: "p1", Title: "Primero", CategoryID: strPtr("c1"), CreatedAt: day(2)},
		},
	}
}

// bigStore has five tech posts, one design post and one orphan.
func bigStore() *memStore {
	return &memStore{
		categories: []models.Category{
			{ID: "c1", Slug: "tech", Name: "Tech"},
			{ID: "c2", Slug: "design", Name: "Diseño"},
		},
		posts: []models.Post{
			{ID: "1", Slug: "t1", Title: "Go y concurrencia", CategoryID: strPtr("c1"), CreatedAt: day(1)},
			{ID: "2", Slug: "t2", Title: "Postgres", Excerpt: "Índices parciales", CategoryID: strPtr("c1"), CreatedAt: day(2)},
			{ID: "3", Slug: "d1", Title: "Tipografía", CategoryID: strPtr("c2"), CreatedAt: day(3)},
			{ID: "4", Slug: "t3", Title: "Valkey", Content: "<p>caché en memoria</p>", CategoryID: strPtr("c1"), CreatedAt: day(4)},
			{ID: "5", Slug: "t4", Title: "Chi router", CategoryID: strPtr("c1"), CreatedAt: day(5)},
			{ID: "6", Slug: "orphan", Title: "Huérfano", CategoryID: strPtr("gone"), CreatedAt: day(6)},
			{ID: "7", Slug: "t5", Title: "Goose", CategoryID: strPtr("c1"), CreatedAt: day(7)},
			{ID: "8", Slug: "nocat", Title: "Sin categoría", CreatedAt: day(8)},
		},
		postTags: map[string][]models.PostTag{
			"1": {{TagID: "g1", Tag: models.Tag{ID: "g1", Slug: "go", Name: "Go"}}},
		},
	}
}

func slugs(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestListAllOrdersNewestFirstAndAnnotates(t *testing.T) {
	posts, err := seededStore().repo().ListAll(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"p1", "p2"}, slugs(posts))
	for _, p := range posts {
		assert.Equal(t, "Tech", p.Category.Name)
		assert.Equal(t, "tech", p.Category.Slug)
		assert.NotNil(t, p.Tags)
		assert.Empty(t, p.Tags)
	}
}

func TestListAllCategorySentinel(t *testing.T) {
	posts, err := bigStore().repo().ListAll(context.Background())
	require.NoError(t, err)

	for _, p := range posts {
		switch p.Slug {
		case "orphan", "nocat":
			assert.Equal(t, models.Category{}, p.Category, p.Slug)
			assert.True(t, p.Category.IsZero())
		default:
			assert.False(t, p.Category.IsZero(), p.Slug)
		}
	}
}

func TestListAllPropagatesErrors(t *testing.T) {
	tests := []struct {
		name  string
		store *memStore
	}{
		{name: "categories", store: &memStore{failCategories: true}},
		{name: "posts", store: &memStore{failPosts: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := tt.store.repo().ListAll(context.Background())
			assert.ErrorIs(t, err, errStore)
			assert.Nil(t, posts)
		})
	}
}

func TestListAllWithTags(t *testing.T) {
	m := bigStore()

	posts, err := m.repo().ListAll(context.Background(), WithTags())
	require.NoError(t, err)
	for _, p := range posts {
		if p.ID == "1" {
			require.Len(t, p.Tags, 1)
			assert.Equal(t, "go", p.Tags[0].Tag.Slug)
		} else {
			assert.Empty(t, p.Tags)
		}
	}

	m.failTags = true
	_, err = m.repo().ListAll(context.Background(), WithTags())
	assert.ErrorIs(t, err, errStore)

	_, err = m.repo().ListAll(context.Background(), WithTags(), WithoutTags())
	assert.NoError(t, err)
}

func TestGetBySlug(t *testing.T) {
	r := bigStore().repo()

	post, err := r.GetBySlug(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Tech", post.Category.Name)
	require.Len(t, post.Tags, 1)
	assert.Equal(t, "g1", post.Tags[0].TagID)

	post, err = r.GetBySlug(context.Background(), "t1", WithoutTags())
	require.NoError(t, err)
	assert.Empty(t, post.Tags)

	post, err = r.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, post)
}

func TestGetBySlugStoreErrorIsNotNotFound(t *testing.T) {
	m := bigStore()
	m.failPosts = true

	_, err := m.repo().GetBySlug(context.Background(), "t1")
	assert.ErrorIs(t, err, errStore)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestListByCategory(t *testing.T) {
	r := bigStore().repo()

	posts, err := r.ListByCategory(context.Background(), "tech")
	require.NoError(t, err)
	assert.Equal(t, []string{"t5", "t4", "t3", "t2", "t1"}, slugs(posts))

	posts, err = r.ListByCategory(context.Background(), "design")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, slugs(posts))
	assert.Equal(t, "Diseño", posts[0].Category.Name)
}

func TestListByCategoryUnknownSlug(t *testing.T) {
	posts, err := bigStore().repo().ListByCategory(context.Background(), "nonexistent-slug")
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestSearch(t *testing.T) {
	r := bigStore().repo()

	tests := []struct {
		query string
		want  []string
	}{
		{query: "valkey", want: []string{"t3"}},
		{query: "CACHÉ", want: []string{"t3"}},
		{query: "índices", want: []string{"t2"}},
		{query: "go", want: []string{"nocat", "t5", "t1"}},
		{query: "kubernetes", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			posts, err := r.Search(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slugs(posts))
		})
	}
}

func TestListByTag(t *testing.T) {
	r := bigStore().repo()

	posts, err := r.ListByTag(context.Background(), "go", WithTags())
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, slugs(posts))
	assert.Equal(t, "Tech", posts[0].Category.Name)
	require.Len(t, posts[0].Tags, 1)

	posts, err = r.ListByTag(context.Background(), "rust")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListRelated(t *testing.T) {
	r := bigStore().repo()

	posts, err := r.ListRelated(context.Background(), "tech", "t4")
	require.NoError(t, err)
	assert.Equal(t, []string{"t5", "t3", "t2"}, slugs(posts))
	assert.LessOrEqual(t, len(posts), RelatedLimit)
	for _, p := range posts {
		assert.NotEqual(t, "t4", p.Slug)
	}

	posts, err = r.ListRelated(context.Background(), "design", "d1")
	require.NoError(t, err)
	assert.Empty(t, posts)

	posts, err = r.ListRelated(context.Background(), "nope", "t1")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListAdjacent(t *testing.T) {
	r := bigStore().repo()
	ctx := context.Background()

	first := r.ListAdjacent(ctx, "t1")
	assert.Nil(t, first.Prev)
	require.NotNil(t, first.Next)
	assert.Equal(t, "t2", first.Next.Slug)

	middle := r.ListAdjacent(ctx, "d1")
	require.NotNil(t, middle.Prev)
	require.NotNil(t, middle.Next)
	assert.Equal(t, "t2", middle.Prev.Slug)
	assert.Equal(t, "t3", middle.Next.Slug)

	last := r.ListAdjacent(ctx, "nocat")
	require.NotNil(t, last.Prev)
	assert.Equal(t, "t5", last.Prev.Slug)
	assert.Nil(t, last.Next)

	assert.Equal(t, Adjacent{}, r.ListAdjacent(ctx, "missing"))
}

func TestListAdjacentStoreFailure(t *testing.T) {
	m := bigStore()
	m.failPosts = true

	assert.Equal(t, Adjacent{}, m.repo().ListAdjacent(context.Background(), "t2"))
}

func TestListAdjacentSinglePost(t *testing.T) {
	m := &memStore{posts: []models.Post{{ID: "1", Slug: "solo", CreatedAt: day(1)}}}

	adj := m.repo().ListAdjacent(context.Background(), "solo")
	assert.Nil(t, adj.Prev)
	assert.Nil(t, adj.Next)
}
