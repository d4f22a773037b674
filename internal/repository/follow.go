package repository

import (
	"context"

	"pixelfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FollowRepository defines persistence operations on the follow graph.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Delete(ctx context.Context, followerID, followingID uuid.UUID) error
	FolloweeIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	FollowedAmong(ctx context.Context, followerID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts an edge. Duplicate edges and self-follows violate store constraints
// and are reported as Forbidden.
func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	err := r.db.WithContext(ctx).Create(follow).Error
	switch {
	case err == nil:
		return nil
	case isUniqueConstraintError(err):
		return models.NewForbiddenError("Already following this user")
	case isCheckConstraintError(err):
		return models.NewForbiddenError("Cannot follow yourself")
	case isForeignKeyError(err):
		return models.NewNotFoundError("User", follow.FollowingID)
	default:
		return models.NewInternalError(err)
	}
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Delete removes the edge if present; a missing edge is not an error.
func (r *followRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) FolloweeIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// ListFollowers returns the users following userID, most recent edge first.
func (r *followRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	return r.listAcross(ctx, "follows.follower_id", "follows.following_id", userID)
}

// ListFollowing returns the users userID follows, most recent edge first.
func (r *followRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	return r.listAcross(ctx, "follows.following_id", "follows.follower_id", userID)
}

func (r *followRepository) listAcross(ctx context.Context, joinCol, whereCol string, userID uuid.UUID) ([]models.User, error) {
	users := make([]models.User, 0)
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*").
		Joins("JOIN follows ON "+joinCol+" = users.id").
		Where(whereCol+" = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// FollowedAmong reports which of candidates followerID currently follows.
func (r *followRepository) FollowedAmong(ctx context.Context, followerID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error) {
	followed := make(map[uuid.UUID]bool, len(candidates))
	if len(candidates) == 0 {
		return followed, nil
	}
	ids := make([]uuid.UUID, 0, len(candidates))
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, candidates).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}
