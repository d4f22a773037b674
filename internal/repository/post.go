package repository

import (
	"context"
	"time"

	"pixelfeed/internal/models"
	"pixelfeed/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedFilter restricts a feed query. A nil AuthorIDs means every author.
type FeedFilter struct {
	AuthorIDs []uuid.UUID
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ListFeed(ctx context.Context, filter FeedFilter, limit, offset int) ([]*models.Post, error)
	CountFeed(ctx context.Context, filter FeedFilter) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Post, error)
	UpdateCaption(ctx context.Context, id, ownerID uuid.UUID, caption *string) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("User", post.UserID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&post, "id = ?", id).Error; err != nil {
		return uuid.Nil, notFoundOr(err, "Post", id)
	}
	return post.UserID, nil
}

func (r *postRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) scoped(ctx context.Context, filter FeedFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.AuthorIDs != nil {
		q = q.Where("user_id IN ?", filter.AuthorIDs)
	}
	return q
}

func (r *postRepository) ListFeed(ctx context.Context, filter FeedFilter, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_feed", "posts")()

	posts := make([]*models.Post, 0, limit)
	err := r.scoped(ctx, filter).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountFeed(ctx context.Context, filter FeedFilter) (int64, error) {
	defer observability.TrackQuery("count_feed", "posts")()

	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// UpdateCaption rewrites the caption of a post owned by ownerID.
func (r *postRepository) UpdateCaption(ctx context.Context, id, ownerID uuid.UUID, caption *string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"caption":    caption,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Delete removes a post owned by ownerID. Likes and comments go with it.
func (r *postRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Post{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}
