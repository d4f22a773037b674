// Package seed creates demo data for development databases. It is not used by the
// API server.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options controls how much data Run generates.
type Options struct {
	Users           int
	Posts           int
	FollowsPerUser  int
	LikesPerPost    int
	CommentsPerPost int
	MaxDays         int
	// Seed makes runs reproducible; zero picks a time-based seed.
	Seed int64
}

// Summary counts the rows a run inserted.
type Summary struct {
	Users    int
	Posts    int
	Follows  int
	Likes    int
	Comments int
}

func (s Summary) String() string {
	return fmt.Sprintf("users=%d posts=%d follows=%d likes=%d comments=%d",
		s.Users, s.Posts, s.Follows, s.Likes, s.Comments)
}

// Seeder writes generated or fixture data through gorm.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		db:    db,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// ClearAll removes every social row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Comment{}, &models.Follow{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run generates users, posts, follows, likes and comments in one transaction.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	if opts.Users <= 0 {
		return sum, fmt.Errorf("users must be positive, got %d", opts.Users)
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := make([]*models.User, 0, opts.Users)
		for i := 0; i < opts.Users; i++ {
			users = append(users, s.buildUser())
		}
		if err := tx.CreateInBatches(users, 100).Error; err != nil {
			return fmt.Errorf("create users: %w", err)
		}
		sum.Users = len(users)

		posts := make([]*models.Post, 0, opts.Posts)
		for i := 0; i < opts.Posts; i++ {
			author := users[s.rng.Intn(len(users))]
			posts = append(posts, s.buildPost(author.ID, opts.MaxDays))
		}
		if len(posts) > 0 {
			if err := tx.CreateInBatches(posts, 100).Error; err != nil {
				return fmt.Errorf("create posts: %w", err)
			}
		}
		sum.Posts = len(posts)

		follows := s.buildFollows(users, opts.FollowsPerUser)
		if len(follows) > 0 {
			if err := tx.CreateInBatches(follows, 200).Error; err != nil {
				return fmt.Errorf("create follows: %w", err)
			}
		}
		sum.Follows = len(follows)

		likes, comments := s.buildEngagement(users, posts, opts.LikesPerPost, opts.CommentsPerPost)
		if len(likes) > 0 {
			if err := tx.CreateInBatches(likes, 200).Error; err != nil {
				return fmt.Errorf("create likes: %w", err)
			}
		}
		if len(comments) > 0 {
			if err := tx.CreateInBatches(comments, 200).Error; err != nil {
				return fmt.Errorf("create comments: %w", err)
			}
		}
		sum.Likes, sum.Comments = len(likes), len(comments)
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	middleware.Logger.InfoContext(ctx, "seed complete", "summary", sum.String())
	return sum, nil
}

func (s *Seeder) buildUser() *models.User {
	return &models.User{
		ExternalID: "seed|" + s.faker.UUID(),
		Name:       s.faker.Name(),
	}
}

func (s *Seeder) buildPost(authorID uuid.UUID, maxDays int) *models.Post {
	back := time.Duration(s.rng.Intn(maxDays*24*60)) * time.Minute
	at := time.Now().Add(-back)
	post := &models.Post{
		UserID:    authorID,
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", s.faker.UUID()),
		CreatedAt: at,
		UpdatedAt: at,
	}
	if s.rng.Intn(4) > 0 {
		caption := s.faker.Sentence(s.faker.Number(3, 14))
		post.Caption = &caption
	}
	return post
}

// buildFollows picks up to perUser distinct targets for every user, never the user itself.
func (s *Seeder) buildFollows(users []*models.User, perUser int) []*models.Follow {
	if perUser <= 0 || len(users) < 2 {
		return nil
	}
	var out []*models.Follow
	for i, u := range users {
		picked := 0
		for _, j := range s.rng.Perm(len(users)) {
			if picked == perUser {
				break
			}
			if j == i {
				continue
			}
			out = append(out, &models.Follow{FollowerID: u.ID, FollowingID: users[j].ID})
			picked++
		}
	}
	return out
}

// buildEngagement gives each post up to maxLikes likes from distinct users and up to
// maxComments comments.
func (s *Seeder) buildEngagement(users []*models.User, posts []*models.Post, maxLikes, maxComments int) ([]*models.Like, []*models.Comment) {
	var likes []*models.Like
	var comments []*models.Comment
	for _, p := range posts {
		if maxLikes > 0 {
			n := s.rng.Intn(maxLikes + 1)
			for _, j := range s.rng.Perm(len(users))[:min(n, len(users))] {
				likes = append(likes, &models.Like{PostID: p.ID, UserID: users[j].ID})
			}
		}
		if maxComments > 0 {
			n := s.rng.Intn(maxComments + 1)
			for k := 0; k < n; k++ {
				at := p.CreatedAt.Add(time.Duration(k+1) * time.Minute)
				comments = append(comments, &models.Comment{
					PostID:    p.ID,
					UserID:    users[s.rng.Intn(len(users))].ID,
					Content:   s.faker.Sentence(s.faker.Number(2, 12)),
					CreatedAt: at,
					UpdatedAt: at,
				})
			}
		}
	}
	return likes, comments
}
