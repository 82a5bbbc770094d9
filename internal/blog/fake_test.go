package blog

import (
	"context"
	"errors"
	"sort"

	"flik/internal/models"
)

var errStore = errors.New("store unavailable")

// memStore is an in-memory implementation of every reader interface.
type memStore struct {
	categories []models.Category
	posts      []models.Post
	postTags   map[string][]models.PostTag
	comments   map[string][]models.Comment

	failCategories bool
	failPosts      bool
	failTags       bool
	failComments   map[string]bool
}

func (m *memStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.failCategories {
		return nil, errStore
	}
	out := make([]models.Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

func (m *memStore) ListPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error) {
	if m.failPosts {
		return nil, errStore
	}

	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if q.Search != "" && !p.Matches(q.Search) {
			continue
		}
		if q.ExcludeSlug != "" && p.Slug == q.ExcludeSlug {
			continue
		}
		if q.TagSlug != "" && !m.hasTag(p.ID, q.TagSlug) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) hasTag(postID, tagSlug string) bool {
	for _, pt := range m.postTags[postID] {
		if pt.Tag.Slug == tagSlug {
			return true
		}
	}
	return false
}

func (m *memStore) FindPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if m.failPosts {
		return nil, errStore
	}
	for _, p := range m.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListTagsForPosts(ctx context.Context, postIDs []string) (map[string][]models.PostTag, error) {
	if m.failTags {
		return nil, errStore
	}
	out := make(map[string][]models.PostTag)
	for _, id := range postIDs {
		if pt, ok := m.postTags[id]; ok {
			out[id] = pt
		}
	}
	return out, nil
}

func (m *memStore) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	if m.failComments[postID] {
		return nil, errStore
	}
	return m.comments[postID], nil
}

func (m *memStore) repo() *Repository {
	return New(m, m, m)
}

func strPtr(s string) *string { return &s }
