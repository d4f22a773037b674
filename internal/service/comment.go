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

// CommentService creates, lists and deletes comments.
type CommentService struct {
	users     *UserService
	posts     repository.PostRepository
	comments  repository.CommentRepository
	guard     *OwnershipGuard
	publisher events.Publisher
}

// CreateCommentInput is the payload for a new comment.
type CreateCommentInput struct {
	Subject string    `json:"-" form:"-"`
	PostID  uuid.UUID `json:"-" form:"-"`
	Content string    `json:"content" form:"content" validate:"notblank,max=1000"`
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	users *UserService,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	guard *OwnershipGuard,
	publisher events.Publisher,
) *CommentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CommentService{users: users, posts: posts, comments: comments, guard: guard, publisher: publisher}
}

// CreateComment adds a comment by the caller to a post and returns it with its author.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	actor, err := s.users.ResolveSubject(ctx, in.Subject)
	if err != nil {
		return nil, err
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	ownerID, err := s.posts.OwnerOf(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: in.PostID, UserID: actor.ID, Content: in.Content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.User = actor

	events.Emit(ctx, s.publisher, events.New(events.PostCommented, actor.ID).
		WithRecipient(ownerID).
		WithPost(in.PostID).
		WithComment(comment.ID))
	return comment, nil
}

// ListComments returns the comments of a post, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return s.comments.ListByPost(ctx, postID)
}

// DeleteComment removes a comment written by the caller.
func (s *CommentService) DeleteComment(ctx context.Context, subject string, commentID uuid.UUID) error {
	actor, err := s.guard.CommentAuthor(ctx, subject, commentID)
	if err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID, actor.ID)
}
