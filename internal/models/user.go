// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the local record of an identity-provider account.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null" json:"external_id"`
	Name       string    `gorm:"not null;default:''" json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random id when none was set.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserStats is a row of the user_stats view.
type UserStats struct {
	UserID         uuid.UUID `gorm:"type:uuid;column:user_id" json:"-"`
	PostsCount     int64     `gorm:"column:posts_count" json:"posts_count"`
	FollowersCount int64     `gorm:"column:followers_count" json:"followers_count"`
	FollowingCount int64     `gorm:"column:following_count" json:"following_count"`
}

// TableName binds UserStats to the aggregate view.
func (UserStats) TableName() string { return "user_stats" }

// FollowUser is an entry of a followers or following listing.
type FollowUser struct {
	User
	IsFollowing bool `json:"isFollowing"`
}

// Profile aggregates what a profile page shows about one user.
type Profile struct {
	User         *User     `json:"user"`
	Stats        UserStats `json:"stats"`
	IsFollowing  bool      `json:"isFollowing"`
	IsOwnProfile bool      `json:"isOwnProfile"`
	Posts        []*Post   `json:"posts"`
}
