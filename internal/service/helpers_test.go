package service

import (
	"context"
	"sync"
	"testing"

	"pixelfeed/internal/events"
	"pixelfeed/internal/models"
	"pixelfeed/internal/repository"
	"pixelfeed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	db        *gorm.DB
	publisher *recordingPublisher
	users     *UserService
	feed      *FeedService
	follows   *FollowService
	posts     *PostService
	likes     *LikeService
	comments  *CommentService
	profiles  *ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	pub := &recordingPublisher{}
	users := NewUserService(userRepo)
	hydrator := NewStatHydrator(statsRepo, likeRepo)
	guard := NewOwnershipGuard(users, postRepo, commentRepo)
	follows := NewFollowService(users, userRepo, followRepo, pub)

	return &testEnv{
		db:        db,
		publisher: pub,
		users:     users,
		feed:      NewFeedService(users, postRepo, followRepo, hydrator),
		follows:   follows,
		posts:     NewPostService(users, postRepo, guard, hydrator, pub),
		likes:     NewLikeService(users, postRepo, likeRepo, pub),
		comments:  NewCommentService(users, postRepo, commentRepo, guard, pub),
		profiles:  NewProfileService(users, statsRepo, postRepo, follows, hydrator),
	}
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

func strPtr(s string) *string { return &s }
