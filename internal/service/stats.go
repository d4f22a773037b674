package service

import (
	"context"
	"time"

	"pixelfeed/internal/models"
	"pixelfeed/internal/observability"
	"pixelfeed/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StatHydrator fills the derived counters of a page of posts.
type StatHydrator struct {
	stats repository.StatsRepository
	likes repository.LikeRepository
}

// NewStatHydrator returns a new StatHydrator.
func NewStatHydrator(stats repository.StatsRepository, likes repository.LikeRepository) *StatHydrator {
	return &StatHydrator{stats: stats, likes: likes}
}

// Hydrate sets likes_count, comments_count and, when viewerID is set, is_liked on
// every post. Posts are processed concurrently, at most one goroutine per post, and
// keep their order. The first store error fails the whole page.
func (h *StatHydrator) Hydrate(ctx context.Context, posts []*models.Post, viewerID *uuid.UUID) error {
	if len(posts) == 0 {
		return nil
	}
	defer func(start time.Time) {
		observability.HydrationDuration.Observe(time.Since(start).Seconds())
	}(time.Now())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(posts))

	for _, post := range posts {
		g.Go(func() error {
			return h.hydrateOne(gctx, post, viewerID)
		})
	}
	return g.Wait()
}

func (h *StatHydrator) hydrateOne(ctx context.Context, post *models.Post, viewerID *uuid.UUID) error {
	stats, err := h.stats.PostStats(ctx, post.ID)
	if err != nil {
		return err
	}
	post.LikesCount = stats.LikesCount
	post.CommentsCount = stats.CommentsCount

	if viewerID == nil {
		post.IsLiked = false
		return nil
	}
	liked, err := h.likes.Exists(ctx, post.ID, *viewerID)
	if err != nil {
		return err
	}
	post.IsLiked = liked
	return nil
}
