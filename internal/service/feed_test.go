package service

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"pixelfeed/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedBase = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func postIDs(page *FeedPage) []uuid.UUID {
	ids := make([]uuid.UUID, len(page.Posts))
	for i, p := range page.Posts {
		ids[i] = p.ID
	}
	return ids
}

func TestFeed_AnonymousSeesAllPostsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")

	var created []uuid.UUID
	for i := 0; i < 12; i++ {
		author := alice.ID
		if i%2 == 1 {
			author = bob.ID
		}
		p := testutil.CreatePost(t, env.db, author, feedBase.Add(time.Duration(i)*time.Minute))
		created = append(created, p.ID)
	}

	first, err := env.feed.Feed(ctx, FeedInput{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{created[11], created[10], created[9], created[8], created[7]}, postIDs(first))
	assert.Equal(t, int64(12), first.Pagination.Total)
	assert.Equal(t, 3, first.Pagination.TotalPages)
	assert.True(t, first.Pagination.HasMore)

	last, err := env.feed.Feed(ctx, FeedInput{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{created[1], created[0]}, postIDs(last))
	assert.False(t, last.Pagination.HasMore)

	beyond, err := env.feed.Feed(ctx, FeedInput{Page: 9, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)
	assert.NotNil(t, beyond.Posts)
	assert.False(t, beyond.Pagination.HasMore)

	for _, p := range first.Posts {
		assert.False(t, p.IsLiked)
		require.NotNil(t, p.User)
	}
}

func TestFeed_HugePageIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, env.db, "alice")
	for i := 0; i < 3; i++ {
		testutil.CreatePost(t, env.db, alice.ID, feedBase.Add(time.Duration(i)*time.Minute))
	}

	pages := []int{2, math.MaxInt / 5, math.MaxInt / 10, math.MaxInt / 2, math.MaxInt}
	for _, p := range pages {
		t.Run(strconv.Itoa(p), func(t *testing.T) {
			page, err := env.feed.Feed(ctx, FeedInput{Page: p, Limit: 10})
			require.NoError(t, err)
			assert.Empty(t, page.Posts)
			assert.NotNil(t, page.Posts)
			assert.Equal(t, p, page.Pagination.Page)
			assert.Equal(t, int64(3), page.Pagination.Total)
			assert.Equal(t, 1, page.Pagination.TotalPages)
			assert.False(t, page.Pagination.HasMore)
		})
	}
}

func TestFeed_EmptyStore(t *testing.T) {
	env := newTestEnv(t)

	page, err := env.feed.Feed(context.Background(), FeedInput{})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.NotNil(t, page.Posts)
	assert.Zero(t, page.Pagination.Total)
	assert.Zero(t, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasMore)
}

func TestFeed_FollowedScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	carol := testutil.CreateUser(t, env.db, "carol")
	testutil.Follow(t, env.db, alice.ID, bob.ID)

	own := testutil.CreatePost(t, env.db, alice.ID, feedBase)
	followed := testutil.CreatePost(t, env.db, bob.ID, feedBase.Add(time.Minute))
	stranger := testutil.CreatePost(t, env.db, carol.ID, feedBase.Add(2*time.Minute))

	scoped, err := env.feed.Feed(ctx, FeedInput{Subject: "alice", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{followed.ID, own.ID}, postIDs(scoped))
	assert.Equal(t, int64(2), scoped.Pagination.Total)

	everything, err := env.feed.Feed(ctx, FeedInput{Subject: "alice", Page: 1, Limit: 10, All: true})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{stranger.ID, followed.ID, own.ID}, postIDs(everything))
}

func TestFeed_NoFolloweesShowsOwnPostsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	loner := testutil.CreateUser(t, env.db, "loner")
	other := testutil.CreateUser(t, env.db, "other")
	testutil.CreatePost(t, env.db, other.ID, feedBase)

	page, err := env.feed.Feed(ctx, FeedInput{Subject: "loner", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, int64(0), page.Pagination.Total)
	assert.Equal(t, 0, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasMore)

	mine := testutil.CreatePost(t, env.db, loner.ID, feedBase.Add(time.Hour))
	page, err = env.feed.Feed(ctx, FeedInput{Subject: "loner", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{mine.ID}, postIDs(page))
}

func TestFeed_UnknownSubjectIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "author")
	testutil.CreatePost(t, env.db, author.ID, feedBase)

	page, err := env.feed.Feed(context.Background(), FeedInput{Subject: "never-synced", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
}

func TestFeed_NormalizesPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		in        FeedInput
		wantPage  int
		wantLimit int
	}{
		{"defaults", FeedInput{}, 1, DefaultFeedLimit},
		{"negative page", FeedInput{Page: -4, Limit: 3}, 1, 3},
		{"limit capped", FeedInput{Page: 2, Limit: 500}, 2, MaxFeedLimit},
		{"zero limit", FeedInput{Page: 1, Limit: 0}, 1, DefaultFeedLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.feed.Feed(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Pagination.Page)
			assert.Equal(t, tt.wantLimit, page.Pagination.Limit)
		})
	}

	custom := env.feed.WithLimits(20, 40)
	page, err := custom.Feed(ctx, FeedInput{})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Pagination.Limit)
}

func TestFeed_HydratesViewerLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	viewer := testutil.CreateUser(t, env.db, "viewer")
	author := testutil.CreateUser(t, env.db, "author")
	liked := testutil.CreatePost(t, env.db, author.ID, feedBase)
	notLiked := testutil.CreatePost(t, env.db, author.ID, feedBase.Add(time.Minute))
	testutil.Like(t, env.db, liked.ID, viewer.ID)
	testutil.Like(t, env.db, liked.ID, author.ID)

	page, err := env.feed.Feed(ctx, FeedInput{Subject: "viewer", Page: 1, Limit: 10, All: true})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)

	assert.Equal(t, notLiked.ID, page.Posts[0].ID)
	assert.False(t, page.Posts[0].IsLiked)
	assert.Equal(t, int64(0), page.Posts[0].LikesCount)

	assert.Equal(t, liked.ID, page.Posts[1].ID)
	assert.True(t, page.Posts[1].IsLiked)
	assert.Equal(t, int64(2), page.Posts[1].LikesCount)
}
