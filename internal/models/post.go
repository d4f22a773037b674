package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is an image post with an optional caption.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	Caption   *string   `gorm:"type:text" json:"caption"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// LikesCount is not persisted; hydrated from post_stats
	LikesCount int64 `gorm:"-" json:"likes_count"`
	// CommentsCount is not persisted; hydrated from post_stats
	CommentsCount int64 `gorm:"-" json:"comments_count"`
	// IsLiked reports whether the requesting viewer liked this post
	IsLiked bool `gorm:"-" json:"is_liked"`
}

// BeforeCreate assigns a random id when none was set.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PostStats is a row of the post_stats view.
type PostStats struct {
	PostID        uuid.UUID `gorm:"type:uuid;column:post_id"`
	LikesCount    int64     `gorm:"column:likes_count"`
	CommentsCount int64     `gorm:"column:comments_count"`
}

// TableName binds PostStats to the aggregate view.
func (PostStats) TableName() string { return "post_stats" }
