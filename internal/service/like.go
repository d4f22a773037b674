package service

import (
	"context"

	"pixelfeed/internal/events"
	"pixelfeed/internal/models"
	"pixelfeed/internal/repository"

	"github.com/google/uuid"
)

// LikeService likes and unlikes posts.
type LikeService struct {
	users     *UserService
	posts     repository.PostRepository
	likes     repository.LikeRepository
	publisher events.Publisher
}

// NewLikeService returns a new LikeService.
func NewLikeService(
	users *UserService,
	posts repository.PostRepository,
	likes repository.LikeRepository,
	publisher events.Publisher,
) *LikeService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LikeService{users: users, posts: posts, likes: likes, publisher: publisher}
}

// Like records that the caller likes postID. Liking twice is forbidden; concurrent
// duplicates are caught by the unique index.
func (s *LikeService) Like(ctx context.Context, subject string, postID uuid.UUID) (*models.Like, error) {
	actor, err := s.users.ResolveSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	ownerID, err := s.posts.OwnerOf(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.Exists(ctx, postID, actor.ID)
	if err != nil {
		return nil, err
	}
	if liked {
		return nil, models.NewForbiddenError("Post already liked")
	}

	like := &models.Like{PostID: postID, UserID: actor.ID}
	if err := s.likes.Create(ctx, like); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.PostLiked, actor.ID).WithRecipient(ownerID).WithPost(postID))
	return like, nil
}

// Unlike removes the caller's like of postID if there is one.
func (s *LikeService) Unlike(ctx context.Context, subject string, postID uuid.UUID) error {
	actor, err := s.users.ResolveSubject(ctx, subject)
	if err != nil {
		return err
	}
	return s.likes.Delete(ctx, postID, actor.ID)
}
