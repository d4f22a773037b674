package repository

import (
	"context"

	"pixelfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&comment, "id = ?", id).Error; err != nil {
		return uuid.Nil, notFoundOr(err, "Comment", id)
	}
	return comment.UserID, nil
}

// ListByPost returns the comments of a post, oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, authorID).Delete(&models.Comment{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}
