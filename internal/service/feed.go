package service

import (
	"context"

	"pixelfeed/internal/models"
	"pixelfeed/internal/observability"
	"pixelfeed/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Feed paging defaults.
const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

// FeedInput selects one page of the feed. Subject is empty for anonymous viewers.
type FeedInput struct {
	Subject string
	Page    int
	Limit   int
	All     bool
}

// FeedPage is one page of hydrated posts.
type FeedPage struct {
	Posts      []*models.Post
	Pagination models.Pagination
}

// FeedService builds the post feed.
type FeedService struct {
	users        *UserService
	posts        repository.PostRepository
	follows      repository.FollowRepository
	hydrator     *StatHydrator
	defaultLimit int
	maxLimit     int
}

// NewFeedService returns a FeedService with the default paging limits.
func NewFeedService(
	users *UserService,
	posts repository.PostRepository,
	follows repository.FollowRepository,
	hydrator *StatHydrator,
) *FeedService {
	return &FeedService{
		users:        users,
		posts:        posts,
		follows:      follows,
		hydrator:     hydrator,
		defaultLimit: DefaultFeedLimit,
		maxLimit:     MaxFeedLimit,
	}
}

// WithLimits overrides the default and maximum page sizes.
func (s *FeedService) WithLimits(defaultLimit, maxLimit int) *FeedService {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit >= s.defaultLimit {
		s.maxLimit = maxLimit
	}
	return s
}

func (s *FeedService) normalize(in FeedInput) (page, limit int) {
	page, limit = in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	return page, limit
}

// Feed returns one page of posts, newest first. With All set, or for a viewer that
// is anonymous or unknown, every author is included. Otherwise the page holds posts
// by the viewer and the users they follow.
func (s *FeedService) Feed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	page, limit := s.normalize(in)

	span, ctx := observability.NewSpan(ctx, "FeedService.Feed",
		attribute.Int("feed.page", page),
		attribute.Int("feed.limit", limit),
		attribute.Bool("feed.all", in.All),
	)
	defer span.End()

	viewer, err := s.users.ResolveViewer(ctx, in.Subject)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	var viewerID *uuid.UUID
	filter := repository.FeedFilter{}
	scope := "all"
	if viewer != nil {
		viewerID = &viewer.ID
		if !in.All {
			followees, err := s.follows.FolloweeIDs(ctx, viewer.ID)
			if err != nil {
				span.SetError(err)
				return nil, err
			}
			filter.AuthorIDs = append([]uuid.UUID{viewer.ID}, followees...)
			scope = "following"
		}
	}
	observability.FeedRequests.WithLabelValues(scope).Inc()

	total, err := s.posts.CountFeed(ctx, filter)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	// Pages past the end skip the query, so the offset stays below total.
	posts := []*models.Post{}
	if page <= totalPages {
		posts, err = s.posts.ListFeed(ctx, filter, limit, (page-1)*limit)
		if err != nil {
			span.SetError(err)
			return nil, err
		}

		if err := s.hydrator.Hydrate(ctx, posts, viewerID); err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	span.AddAttributes(attribute.Int64("feed.total", total), attribute.String("feed.scope", scope))

	return &FeedPage{
		Posts: posts,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasMore:    page < totalPages,
		},
	}, nil
}
