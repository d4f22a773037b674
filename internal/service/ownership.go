package service

import (
	"context"

	"pixelfeed/internal/models"
	"pixelfeed/internal/repository"

	"github.com/google/uuid"
)

// OwnershipGuard checks that the acting user owns a row before it is mutated.
// The caller is resolved before any lookup so anonymous requests never learn
// whether a row exists.
type OwnershipGuard struct {
	users    *UserService
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewOwnershipGuard returns a new OwnershipGuard.
func NewOwnershipGuard(users *UserService, posts repository.PostRepository, comments repository.CommentRepository) *OwnershipGuard {
	return &OwnershipGuard{users: users, posts: posts, comments: comments}
}

// PostOwner returns the acting user when they own postID.
func (g *OwnershipGuard) PostOwner(ctx context.Context, subject string, postID uuid.UUID) (*models.User, error) {
	actor, err := g.users.ResolveSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	ownerID, err := g.posts.OwnerOf(ctx, postID)
	if err != nil {
		return nil, err
	}
	if ownerID != actor.ID {
		return nil, models.NewForbiddenError("You can only modify your own posts")
	}
	return actor, nil
}

// CommentAuthor returns the acting user when they wrote commentID.
func (g *OwnershipGuard) CommentAuthor(ctx context.Context, subject string, commentID uuid.UUID) (*models.User, error) {
	actor, err := g.users.ResolveSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	authorID, err := g.comments.AuthorOf(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if authorID != actor.ID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}
	return actor, nil
}
