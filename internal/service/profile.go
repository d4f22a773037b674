package service

import (
	"context"

	"pixelfeed/internal/models"
	"pixelfeed/internal/repository"

	"github.com/google/uuid"
)

// ProfilePostLimit caps the posts shown on a profile.
const ProfilePostLimit = 50

// ProfileService assembles profile pages.
type ProfileService struct {
	users    *UserService
	stats    repository.StatsRepository
	posts    repository.PostRepository
	follows  *FollowService
	hydrator *StatHydrator
}

// NewProfileService returns a new ProfileService.
func NewProfileService(
	users *UserService,
	stats repository.StatsRepository,
	posts repository.PostRepository,
	follows *FollowService,
	hydrator *StatHydrator,
) *ProfileService {
	return &ProfileService{users: users, stats: stats, posts: posts, follows: follows, hydrator: hydrator}
}

// GetProfile returns userID's profile as seen by the optional viewer.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID, viewerSubject string) (*models.Profile, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.stats.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	viewer, err := s.users.ResolveViewer(ctx, viewerSubject)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{User: user, Stats: stats}
	var viewerID *uuid.UUID
	if viewer != nil {
		viewerID = &viewer.ID
		profile.IsOwnProfile = viewer.ID == user.ID
		if !profile.IsOwnProfile {
			if profile.IsFollowing, err = s.follows.IsFollowing(ctx, viewer.ID, user.ID); err != nil {
				return nil, err
			}
		}
	}

	posts, err := s.posts.ListByUser(ctx, userID, ProfilePostLimit)
	if err != nil {
		return nil, err
	}
	if err := s.hydrator.Hydrate(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	profile.Posts = posts
	return profile, nil
}
