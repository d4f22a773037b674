package service

import (
	"context"

	"pixelfeed/internal/events"
	"pixelfeed/internal/models"
	"pixelfeed/internal/repository"

	"github.com/google/uuid"
)

// FollowService manages the follow graph.
type FollowService struct {
	users     *UserService
	userRepo  repository.UserRepository
	follows   repository.FollowRepository
	publisher events.Publisher
}

// NewFollowService returns a new FollowService.
func NewFollowService(
	users *UserService,
	userRepo repository.UserRepository,
	follows repository.FollowRepository,
	publisher events.Publisher,
) *FollowService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &FollowService{users: users, userRepo: userRepo, follows: follows, publisher: publisher}
}

// Follow makes the caller follow targetID.
func (s *FollowService) Follow(ctx context.Context, subject string, targetID uuid.UUID) (*models.Follow, error) {
	actor, err := s.users.ResolveSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if actor.ID == targetID {
		return nil, models.NewForbiddenError("Cannot follow yourself")
	}

	exists, err := s.userRepo.Exists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", targetID)
	}

	following, err := s.follows.Exists(ctx, actor.ID, targetID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, models.NewForbiddenError("Already following this user")
	}

	follow := &models.Follow{FollowerID: actor.ID, FollowingID: targetID}
	if err := s.follows.Create(ctx, follow); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.UserFollowed, actor.ID).WithRecipient(targetID))
	return follow, nil
}

// Unfollow removes the caller's edge to targetID. Removing a missing edge succeeds.
func (s *FollowService) Unfollow(ctx context.Context, subject string, targetID uuid.UUID) error {
	actor, err := s.users.ResolveSubject(ctx, subject)
	if err != nil {
		return err
	}
	return s.follows.Delete(ctx, actor.ID, targetID)
}

// ListFollowers returns who follows targetID. Each entry reports whether the viewer
// follows that user.
func (s *FollowService) ListFollowers(ctx context.Context, targetID uuid.UUID, viewerSubject string) ([]models.FollowUser, error) {
	return s.list(ctx, targetID, viewerSubject, s.follows.ListFollowers)
}

// ListFollowing returns who targetID follows, annotated like ListFollowers.
func (s *FollowService) ListFollowing(ctx context.Context, targetID uuid.UUID, viewerSubject string) ([]models.FollowUser, error) {
	return s.list(ctx, targetID, viewerSubject, s.follows.ListFollowing)
}

func (s *FollowService) list(
	ctx context.Context,
	targetID uuid.UUID,
	viewerSubject string,
	load func(context.Context, uuid.UUID) ([]models.User, error),
) ([]models.FollowUser, error) {
	exists, err := s.userRepo.Exists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", targetID)
	}

	users, err := load(ctx, targetID)
	if err != nil {
		return nil, err
	}

	followed := map[uuid.UUID]bool{}
	viewer, err := s.users.ResolveViewer(ctx, viewerSubject)
	if err != nil {
		return nil, err
	}
	if viewer != nil && len(users) > 0 {
		ids := make([]uuid.UUID, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		if followed, err = s.follows.FollowedAmong(ctx, viewer.ID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]models.FollowUser, len(users))
	for i, u := range users {
		out[i] = models.FollowUser{User: u, IsFollowing: followed[u.ID]}
	}
	return out, nil
}

// FolloweeIDs returns the ids userID follows.
func (s *FollowService) FolloweeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.follows.FolloweeIDs(ctx, userID)
}

// IsFollowing reports whether viewerID follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error) {
	return s.follows.Exists(ctx, viewerID, targetID)
}
