package repository

import (
	"context"
	"errors"

	"pixelfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsRepository reads the aggregate views.
type StatsRepository interface {
	PostStats(ctx context.Context, postID uuid.UUID) (models.PostStats, error)
	UserStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a StatsRepository backed by the post_stats and user_stats views.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// PostStats returns zero counts when the view has no row for postID.
func (r *statsRepository) PostStats(ctx context.Context, postID uuid.UUID) (models.PostStats, error) {
	stats := models.PostStats{PostID: postID}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Take(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PostStats{PostID: postID}, nil
	}
	if err != nil {
		return models.PostStats{}, models.NewInternalError(err)
	}
	return stats, nil
}

// UserStats returns zero counts when the view has no row for userID.
func (r *statsRepository) UserStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	stats := models.UserStats{UserID: userID}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserStats{UserID: userID}, nil
	}
	if err != nil {
		return models.UserStats{}, models.NewInternalError(err)
	}
	return stats, nil
}
