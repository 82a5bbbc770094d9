package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"flik/internal/blog"
	"flik/internal/models"
	"flik/internal/render"
)

var errStore = errors.New("store unavailable")

func strPtr(s string) *string { return &s }

type fakeCategories struct {
	items []models.Category
	fail  bool
}

func (f *fakeCategories) ListCategories(ctx context.Context) ([]models.Category, error) {
	if f.fail {
		return nil, errStore
	}
	return append([]models.Category(nil), f.items...), nil
}

func (f *fakeCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for _, c := range f.items {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if f.fail {
		return nil, errStore
	}
	created := *c
	created.ID = "cat-" + c.Slug
	f.items = append(f.items, created)
	return &created, nil
}

// fakePosts implements blog.PostReader and PostWriter.
type fakePosts struct {
	mu       sync.Mutex
	items    []models.Post
	postTags map[string][]models.PostTag
	fail     bool
	failSave bool
}

func (f *fakePosts) ListPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStore
	}
	var out []models.Post
	for _, p := range f.items {
		if q.Search != "" && !p.Matches(q.Search) {
			continue
		}
		if q.ExcludeSlug != "" && p.Slug == q.ExcludeSlug {
			continue
		}
		if q.TagSlug != "" && !f.hasTag(p.ID, q.TagSlug) {
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

func (f *fakePosts) hasTag(postID, tagSlug string) bool {
	for _, pt := range f.postTags[postID] {
		if pt.Tag.Slug == tagSlug {
			return true
		}
	}
	return false
}

func (f *fakePosts) FindPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStore
	}
	for _, p := range f.items {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return nil, errStore
	}
	created := *p
	created.ID = "new-" + p.Slug
	created.CreatedAt = time.Now()
	f.items = append(f.items, created)
	return &created, nil
}

func (f *fakePosts) Update(ctx context.Context, originalSlug string, p *models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return nil, errStore
	}
	for i := range f.items {
		if f.items[i].Slug == originalSlug {
			updated := *p
			updated.ID = f.items[i].ID
			updated.CreatedAt = f.items[i].CreatedAt
			f.items[i] = updated
			return &updated, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) DeleteBySlug(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errStore
	}
	for i := range f.items {
		if f.items[i].Slug == slug {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakePosts) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

func (f *fakePosts) find(slug string) *models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].Slug == slug {
			p := f.items[i]
			return &p
		}
	}
	return nil
}

// fakeTags implements blog.TagReader, TagIndex and TagAssigner on top of
// the fakePosts tag map.
type fakeTags struct {
	posts    *fakePosts
	items    []models.Tag
	assigned map[string][]string
}

func (f *fakeTags) ListTagsForPosts(ctx context.Context, ids []string) (map[string][]models.PostTag, error) {
	out := map[string][]models.PostTag{}
	for _, id := range ids {
		if pt, ok := f.posts.postTags[id]; ok {
			out[id] = pt
		}
	}
	return out, nil
}

func (f *fakeTags) ListWithCounts(ctx context.Context) ([]models.Tag, error) {
	return f.items, nil
}

func (f *fakeTags) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	for _, t := range f.items {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeTags) Create(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	created := *t
	created.ID = "tag-" + t.Slug
	f.items = append(f.items, created)
	return &created, nil
}

func (f *fakeTags) ReplacePostTags(ctx context.Context, postID string, tagIDs []string) error {
	if f.assigned == nil {
		f.assigned = map[string][]string{}
	}
	f.assigned[postID] = tagIDs
	return nil
}

type fakeComments struct {
	mu      sync.Mutex
	items   []models.Comment
	fail    bool
	created int
	fetches int
}

func (f *fakeComments) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fail {
		return nil, errStore
	}
	var out []models.Comment
	for _, c := range f.items {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) ListAll(ctx context.Context) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStore
	}
	return append([]models.Comment{}, f.items...), nil
}

func (f *fakeComments) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStore
	}
	f.created++
	created := *c
	created.ID = "c-new"
	created.Date = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f.items = append(f.items, created)
	return &created, nil
}

type fakeLikes struct {
	counts map[string]int
	fail   bool
}

func (f *fakeLikes) Get(ctx context.Context, postID string) (int, error) {
	if f.fail {
		return 0, errStore
	}
	return f.counts[postID], nil
}

func (f *fakeLikes) Increment(ctx context.Context, postID string) (int, error) {
	if f.fail {
		return 0, errStore
	}
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[postID]++
	return f.counts[postID], nil
}

type fakeViews struct {
	counts map[string]int64
	fail   bool
}

func (f *fakeViews) Track(ctx context.Context, slug string) error {
	if f.fail {
		return errStore
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[slug]++
	return nil
}

func (f *fakeViews) Count(ctx context.Context, slug string) (int64, error) {
	if f.fail {
		return 0, errStore
	}
	return f.counts[slug], nil
}

// site bundles the fakes with two categories, three posts and two tags.
type site struct {
	categories *fakeCategories
	posts      *fakePosts
	tags       *fakeTags
	comments   *fakeComments
	likes      *fakeLikes
	views      *fakeViews
	repo       *blog.Repository
	renderer   *render.Renderer
}

func newSite(t *testing.T) *site {
	t.Helper()

	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	goTag := models.Tag{ID: "t1", Slug: "go", Name: "Go"}

	s := &site{
		categories: &fakeCategories{items: []models.Category{
			{ID: "c1", Slug: "tecnologia", Name: "Tecnología"},
			{ID: "c2", Slug: "ia", Name: "Inteligencia artificial"},
		}},
		posts: &fakePosts{
			items: []models.Post{
				{ID: "p1", Slug: "primero", Title: "Primero", Content: "<p>Hola Go</p>", CreatedAt: day(1), Date: day(1), CategoryID: strPtr("c1")},
				{ID: "p2", Slug: "segundo", Title: "Segundo", Content: "<p>Modelos</p>", CreatedAt: day(2), Date: day(2), CategoryID: strPtr("c2")},
				{ID: "p3", Slug: "tercero", Title: "Tercero", Content: "<p>Más Go</p>", CreatedAt: day(3), Date: day(3), CategoryID: strPtr("c1")},
			},
			postTags: map[string][]models.PostTag{
				"p1": {{TagID: "t1", Tag: goTag}},
				"p3": {{TagID: "t1", Tag: goTag}},
			},
		},
		comments: &fakeComments{items: []models.Comment{
			{ID: "k1", PostID: "p1", Email: "ana@example.com", Content: "Buen artículo"},
			{ID: "k2", PostID: "p1", Email: "luis@example.com", Content: "Gracias"},
		}},
		likes: &fakeLikes{counts: map[string]int{"p1": 7}},
		views: &fakeViews{counts: map[string]int64{"primero": 42}},
	}
	s.tags = &fakeTags{posts: s.posts, items: []models.Tag{goTag, {ID: "t2", Slug: "ia", Name: "IA"}}}
	s.repo = blog.New(s.categories, s.posts, s.tags)

	rn, err := render.New()
	require.NoError(t, err)
	s.renderer = rn
	return s
}

// addGoPosts appends n posts about Go, tagged go, older than the seeded ones.
func (s *site) addGoPosts(n int) {
	goTag := models.Tag{ID: "t1", Slug: "go", Name: "Go"}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("g%02d", i)
		created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour)
		s.posts.items = append(s.posts.items, models.Post{
			ID: id, Slug: "go-" + id, Title: "Go " + id, Content: "<p>Go</p>",
			CreatedAt: created, Date: created,
		})
		s.posts.postTags[id] = []models.PostTag{{TagID: "t1", Tag: goTag}}
	}
}

func (s *site) public() *Public {
	return NewPublic(s.renderer, s.repo, s.categories, s.tags, s.comments, s.likes, s.views, "https://flik.cl")
}

func (s *site) admin() *Admin {
	return NewAdmin(s.renderer, s.repo, s.posts, s.categories, s.tags)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
