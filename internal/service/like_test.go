package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pixelfeed/internal/events"
	"pixelfeed/internal/models"
	"pixelfeed/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_LikeAndUnlike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.db, "owner")
	fan := testutil.CreateUser(t, env.db, "fan")
	post := testutil.CreatePost(t, env.db, owner.ID, time.Now())

	like, err := env.likes.Like(ctx, "fan", post.ID)
	require.NoError(t, err)
	assert.Equal(t, fan.ID, like.UserID)
	assert.Equal(t, []string{events.PostLiked}, env.publisher.types())
	require.NotNil(t, env.publisher.events[0].RecipientID)
	assert.Equal(t, owner.ID, *env.publisher.events[0].RecipientID)

	seen, err := env.posts.GetPost(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seen.LikesCount)
	assert.True(t, seen.IsLiked)

	_, err = env.likes.Like(ctx, "fan", post.ID)
	assertAppError(t, err, models.CodeForbidden)

	require.NoError(t, env.likes.Unlike(ctx, "fan", post.ID))
	require.NoError(t, env.likes.Unlike(ctx, "fan", post.ID))

	seen, err = env.posts.GetPost(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.Zero(t, seen.LikesCount)
	assert.False(t, seen.IsLiked)
}

func TestLikeService_OwnPostHasNoRecipient(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	post := testutil.CreatePost(t, env.db, owner.ID, time.Now())

	_, err := env.likes.Like(context.Background(), "owner", post.ID)
	require.NoError(t, err)
	require.Len(t, env.publisher.events, 1)
	assert.Nil(t, env.publisher.events[0].RecipientID)
}

func TestLikeService_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	post := testutil.CreatePost(t, env.db, owner.ID, time.Now())

	_, err := env.likes.Like(ctx, "owner", uuid.New())
	assertAppError(t, err, models.CodeNotFound)

	_, err = env.likes.Like(ctx, "", post.ID)
	assertAppError(t, err, models.CodeUnauthenticated)

	assertAppError(t, env.likes.Unlike(ctx, "", post.ID), models.CodeUnauthenticated)
}

func TestLikeService_ConcurrentDuplicateLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	testutil.CreateUser(t, env.db, "fan")
	post := testutil.CreatePost(t, env.db, owner.ID, time.Now())

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		forbidden int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.likes.Like(ctx, "fan", post.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case models.IsCode(err, models.CodeForbidden):
				forbidden++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, forbidden)

	var count int64
	require.NoError(t, env.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
