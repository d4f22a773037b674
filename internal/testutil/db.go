// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"pixelfeed/internal/database"
	"pixelfeed/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestJWTSecret signs tokens produced by SignToken.
const TestJWTSecret = "test-identity-secret"

// NewSQLiteDB opens a migrated in-memory database. A single connection keeps the
// in-memory database alive and makes foreign keys apply to every statement.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with the given identity subject.
func CreateUser(t *testing.T, db *gorm.DB, subject string) *models.User {
	t.Helper()
	u := &models.User{ExternalID: subject, Name: subject}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post authored by userID at the given time.
func CreatePost(t *testing.T, db *gorm.DB, userID uuid.UUID, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:    userID,
		ImageURL:  "https://images.example.com/" + uuid.NewString() + ".jpg",
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Follow inserts a follow edge.
func Follow(t *testing.T, db *gorm.DB, followerID, followingID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error)
}

// Like inserts a like.
func Like(t *testing.T, db *gorm.DB, postID, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&models.Like{PostID: postID, UserID: userID}).Error)
}

// SignToken returns an HS256 identity token for subject signed with TestJWTSecret.
func SignToken(t *testing.T, subject, name string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	if name != "" {
		claims["name"] = name
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	require.NoError(t, err)
	return signed
}
