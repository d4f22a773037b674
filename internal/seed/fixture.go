package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"pixelfeed/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixture is a hand-written data set. Users are referenced by subject and posts by
// their position in Posts.
type Fixture struct {
	Users []struct {
		Subject string `yaml:"subject"`
		Name    string `yaml:"name"`
	} `yaml:"users"`
	Posts []struct {
		Author   string `yaml:"author"`
		ImageURL string `yaml:"image_url"`
		Caption  string `yaml:"caption"`
		// AgeMinutes backdates the post; zero means now.
		AgeMinutes int `yaml:"age_minutes"`
	} `yaml:"posts"`
	Follows []struct {
		Follower  string `yaml:"follower"`
		Following string `yaml:"following"`
	} `yaml:"follows"`
	Likes []struct {
		User string `yaml:"user"`
		Post int    `yaml:"post"`
	} `yaml:"likes"`
	Comments []struct {
		User    string `yaml:"user"`
		Post    int    `yaml:"post"`
		Content string `yaml:"content"`
	} `yaml:"comments"`
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeFixture(f)
}

// DecodeFixture parses a YAML fixture. Unknown keys are rejected.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// ApplyFixture inserts fx in one transaction. Users that already exist (by subject)
// are reused.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (Summary, error) {
	var sum Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bySubject := make(map[string]uuid.UUID, len(fx.Users))
		for _, u := range fx.Users {
			user := &models.User{ExternalID: u.Subject, Name: u.Name}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name"}),
			}).Create(user).Error; err != nil {
				return fmt.Errorf("user %q: %w", u.Subject, err)
			}
			var stored models.User
			if err := tx.Where("external_id = ?", u.Subject).First(&stored).Error; err != nil {
				return fmt.Errorf("user %q: %w", u.Subject, err)
			}
			bySubject[u.Subject] = stored.ID
			sum.Users++
		}

		lookup := func(subject string) (uuid.UUID, error) {
			id, ok := bySubject[subject]
			if !ok {
				return uuid.Nil, fmt.Errorf("unknown user %q", subject)
			}
			return id, nil
		}

		postIDs := make([]uuid.UUID, 0, len(fx.Posts))
		for i, p := range fx.Posts {
			authorID, err := lookup(p.Author)
			if err != nil {
				return fmt.Errorf("post %d: %w", i, err)
			}
			at := time.Now().Add(-time.Duration(p.AgeMinutes) * time.Minute)
			post := &models.Post{UserID: authorID, ImageURL: p.ImageURL, CreatedAt: at, UpdatedAt: at}
			if p.Caption != "" {
				caption := p.Caption
				post.Caption = &caption
			}
			if err := tx.Create(post).Error; err != nil {
				return fmt.Errorf("post %d: %w", i, err)
			}
			postIDs = append(postIDs, post.ID)
		}
		sum.Posts = len(postIDs)

		postAt := func(i int) (uuid.UUID, error) {
			if i < 0 || i >= len(postIDs) {
				return uuid.Nil, fmt.Errorf("post index %d out of range", i)
			}
			return postIDs[i], nil
		}

		for _, f := range fx.Follows {
			follower, err := lookup(f.Follower)
			if err != nil {
				return err
			}
			following, err := lookup(f.Following)
			if err != nil {
				return err
			}
			if err := tx.Create(&models.Follow{FollowerID: follower, FollowingID: following}).Error; err != nil {
				return fmt.Errorf("follow %s -> %s: %w", f.Follower, f.Following, err)
			}
			sum.Follows++
		}

		for _, l := range fx.Likes {
			userID, err := lookup(l.User)
			if err != nil {
				return err
			}
			postID, err := postAt(l.Post)
			if err != nil {
				return err
			}
			if err := tx.Create(&models.Like{PostID: postID, UserID: userID}).Error; err != nil {
				return fmt.Errorf("like by %s: %w", l.User, err)
			}
			sum.Likes++
		}

		for _, c := range fx.Comments {
			userID, err := lookup(c.User)
			if err != nil {
				return err
			}
			postID, err := postAt(c.Post)
			if err != nil {
				return err
			}
			if err := tx.Create(&models.Comment{PostID: postID, UserID: userID, Content: c.Content}).Error; err != nil {
				return fmt.Errorf("comment by %s: %w", c.User, err)
			}
			sum.Comments++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}
