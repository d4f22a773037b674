package service

import (
	"context"
	"strings"

	"pixelfeed/internal/events"
	"pixelfeed/internal/models"
	"pixelfeed/internal/repository"
	"pixelfeed/internal/validation"

	"github.com/google/uuid"
)

// PostService creates, edits and deletes posts.
type PostService struct {
	users     *UserService
	posts     repository.PostRepository
	guard     *OwnershipGuard
	hydrator  *StatHydrator
	publisher events.Publisher
}

// CreatePostInput is the payload for a new post.
type CreatePostInput struct {
	Subject  string  `json:"-" form:"-"`
	ImageURL string  `json:"image_url" form:"image_url" validate:"required,url"`
	Caption  *string `json:"caption" form:"caption" validate:"omitempty,max=2200"`
}

// UpdatePostInput changes the caption of a post. A nil or blank caption clears it.
type UpdatePostInput struct {
	Subject string    `json:"-" form:"-"`
	PostID  uuid.UUID `json:"-" form:"-"`
	Caption *string   `json:"caption" form:"caption" validate:"omitempty,max=2200"`
}

// NewPostService returns a new PostService.
func NewPostService(
	users *UserService,
	posts repository.PostRepository,
	guard *OwnershipGuard,
	hydrator *StatHydrator,
	publisher events.Publisher,
) *PostService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &PostService{users: users, posts: posts, guard: guard, hydrator: hydrator, publisher: publisher}
}

// CreatePost stores a post by the caller. The returned post has zero counters.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	author, err := s.users.ResolveSubject(ctx, in.Subject)
	if err != nil {
		return nil, err
	}

	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Caption = validation.NormalizeText(in.Caption)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   author.ID,
		ImageURL: in.ImageURL,
		Caption:  in.Caption,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	post.User = author

	events.Emit(ctx, s.publisher, events.New(events.PostCreated, author.ID).WithPost(post.ID))
	return post, nil
}

// GetPost returns a hydrated post as seen by the optional viewer.
func (s *PostService) GetPost(ctx context.Context, postID uuid.UUID, viewerSubject string) (*models.Post, error) {
	viewer, err := s.users.ResolveViewer(ctx, viewerSubject)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	var viewerID *uuid.UUID
	if viewer != nil {
		viewerID = &viewer.ID
	}
	if err := s.hydrator.Hydrate(ctx, []*models.Post{post}, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost rewrites the caption of a post owned by the caller.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	actor, err := s.guard.PostOwner(ctx, in.Subject, in.PostID)
	if err != nil {
		return nil, err
	}

	in.Caption = validation.NormalizeText(in.Caption)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if err := s.posts.UpdateCaption(ctx, in.PostID, actor.ID, in.Caption); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrator.Hydrate(ctx, []*models.Post{post}, &actor.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post owned by the caller together with its likes and comments.
func (s *PostService) DeletePost(ctx context.Context, subject string, postID uuid.UUID) error {
	actor, err := s.guard.PostOwner(ctx, subject, postID)
	if err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID, actor.ID)
}
