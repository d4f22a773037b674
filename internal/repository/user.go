package repository

import (
	"context"
	"time"

	"pixelfeed/internal/cache"
	"pixelfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByExternalID resolves an identity-provider subject, reading through the cache.
func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.SubjectKey(externalID), &user, cache.SubjectTTL, func() error {
		if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
			return notFoundOr(err, "User", externalID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert inserts the user or refreshes the name of the existing row with the same
// external id, returning the stored row.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":       user.Name,
			"updated_at": time.Now(),
		}),
	}).Create(user).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateSubject(ctx, user.ExternalID)

	var stored models.User
	if err := db.Where("external_id = ?", user.ExternalID).First(&stored).Error; err != nil {
		return nil, notFoundOr(err, "User", user.ExternalID)
	}
	return &stored, nil
}

func (r *userRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
