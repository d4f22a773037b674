package database

import (
	"fmt"
	"log/slog"

	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"

	"gorm.io/gorm"
)

// Models lists every table managed by the application, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	}
}

type view struct {
	name string
	body string
}

var views = []view{
	{
		name: "post_stats",
		body: `SELECT p.id AS post_id,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes_count,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comments_count
FROM posts p`,
	},
	{
		name: "user_stats",
		body: `SELECT u.id AS user_id,
	(SELECT COUNT(*) FROM posts p WHERE p.user_id = u.id) AS posts_count,
	(SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) AS followers_count,
	(SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS following_count
FROM users u`,
	},
}

// Migrate creates or updates the tables and the aggregate views.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := createViews(db); err != nil {
		return err
	}
	middleware.Logger.Info("Database migration completed", slog.String("dialect", db.Dialector.Name()))
	return nil
}

func createViews(db *gorm.DB) error {
	for _, v := range views {
		stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", v.name, v.body)
		if db.Dialector.Name() == "sqlite" {
			stmt = fmt.Sprintf("CREATE VIEW IF NOT EXISTS %s AS %s", v.name, v.body)
		}
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create view %s: %w", v.name, err)
		}
	}
	return nil
}
