package sitemap

import "flik/internal/models"

// Uncategorized identifies the group of posts whose category is unknown.
var Uncategorized = models.Category{Slug: "sin-categoria", Name: "Sin categoría"}

// Group is one category with its posts, as listed on the site map page.
type Group struct {
	Category models.Category
	Posts    []models.Post
}

// GroupByCategory buckets posts by category in category order. Posts with
// a null or dangling category go to a trailing Uncategorized group. Empty
// categories are omitted and post order is preserved within each group.
func GroupByCategory(categories []models.Category, posts []models.Post) []Group {
	index := make(map[string]int, len(categories))
	groups := make([]Group, len(categories))
	for i, c := range categories {
		index[c.ID] = i
		groups[i] = Group{Category: c}
	}

	var orphans []models.Post
	for _, p := range posts {
		if p.CategoryID != nil {
			if i, ok := index[*p.CategoryID]; ok {
				groups[i].Posts = append(groups[i].Posts, p)
				continue
			}
		}
		orphans = append(orphans, p)
	}

	out := make([]Group, 0, len(groups)+1)
	for _, g := range groups {
		if len(g.Posts) > 0 {
			out = append(out, g)
		}
	}
	if len(orphans) > 0 {
		out = append(out, Group{Category: Uncategorized, Posts: orphans})
	}
	return out
}
