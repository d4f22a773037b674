package repository

import (
	"context"

	"pixelfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	Exists(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, postID, userID uuid.UUID) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts a like. A second like of the same post by the same user is rejected
// by the unique index and reported as Forbidden.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	err := r.db.WithContext(ctx).Create(like).Error
	switch {
	case err == nil:
		return nil
	case isUniqueConstraintError(err):
		return models.NewForbiddenError("Post already liked")
	case isForeignKeyError(err):
		return models.NewNotFoundError("Post", like.PostID)
	default:
		return models.NewInternalError(err)
	}
}

func (r *likeRepository) Exists(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Delete removes the like if present; deleting a missing like is not an error.
func (r *likeRepository) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
