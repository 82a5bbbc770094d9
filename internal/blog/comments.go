package blog

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"flik/internal/models"
)

// CommentReader lists the comments attached to a post.
type CommentReader interface {
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
}

// CountComments fetches the comments of every post concurrently and returns
// a post id to count map. A failed fetch counts as 0 and does not affect the
// other posts.
func CountComments(ctx context.Context, reader CommentReader, posts []models.Post) map[string]int {
	counts := make([]int, len(posts))

	var g errgroup.Group
	for i := range posts {
		id := posts[i].ID
		g.Go(func() error {
			comments, err := reader.ListByPost(ctx, id)
			if err != nil {
				slog.Warn("comment count failed", "post_id", id, "error", err)
				return nil
			}
			counts[i] = len(comments)
			return nil
		})
	}
	_ = g.Wait()

	result := make(map[string]int, len(posts))
	for i := range posts {
		result[posts[i].ID] = counts[i]
	}
	return result
}
