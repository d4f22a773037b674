package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"pixelfeed/internal/models"
	"pixelfeed/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthLive(t *testing.T) {
	app, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, "/health/live", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthReadyWithoutRedis(t *testing.T) {
	app, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, "/health/ready", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app, _ := newTestServer(t, nil)

	status, env := doRequest(t, app, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, models.CodeNotFound, env.Code)
}

func TestGetFeed(t *testing.T) {
	app, db := newTestServer(t, nil)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	now := time.Now()
	testutil.CreatePost(t, db, alice.ID, now.Add(-3*time.Minute))
	bobPost := testutil.CreatePost(t, db, bob.ID, now.Add(-2*time.Minute))
	testutil.CreatePost(t, db, carol.ID, now.Add(-time.Minute))
	testutil.Follow(t, db, alice.ID, bob.ID)

	t.Run("anonymous sees every post", func(t *testing.T) {
		status, env := doRequest(t, app, http.MethodGet, "/api/posts?page=1&limit=2", "", nil)
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, int64(3), env.Pagination.Total)
		assert.Equal(t, 2, env.Pagination.TotalPages)
		assert.True(t, env.Pagination.HasMore)

		var posts []models.Post
		decodeData(t, env, &posts)
		assert.Len(t, posts, 2)
	})

	t.Run("viewer sees self and followees", func(t *testing.T) {
		token := testutil.SignToken(t, "alice", "")
		status, env := doRequest(t, app, http.MethodGet, "/api/posts", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, int64(2), env.Pagination.Total)

		var posts []models.Post
		decodeData(t, env, &posts)
		require.Len(t, posts, 2)
		assert.Equal(t, bobPost.ID, posts[0].ID)
	})

	t.Run("all overrides scope", func(t *testing.T) {
		token := testutil.SignToken(t, "alice", "")
		status, env := doRequest(t, app, http.MethodGet, "/api/posts?all=true", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, int64(3), env.Pagination.Total)
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		status, env := doRequest(t, app, http.MethodGet, "/api/posts", "not-a-token", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, int64(3), env.Pagination.Total)
	})
}

func TestCreatePost(t *testing.T) {
	app, db := newTestServer(t, nil)
	testutil.CreateUser(t, db, "alice")
	token := testutil.SignToken(t, "alice", "")

	tests := []struct {
		name       string
		token      string
		body       map[string]interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			token:      token,
			body:       map[string]interface{}{"image_url": "https://images.example.com/a.jpg", "caption": "hi"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing token",
			body:       map[string]interface{}{"image_url": "https://images.example.com/a.jpg"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   models.CodeUnauthenticated,
		},
		{
			name:       "bad image url",
			token:      token,
			body:       map[string]interface{}{"image_url": "nope"},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "caption too long",
			token:      token,
			body:       map[string]interface{}{"image_url": "https://images.example.com/a.jpg", "caption": strings.Repeat("c", 2201)},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "token for unsynced user",
			token:      testutil.SignToken(t, "stranger", ""),
			body:       map[string]interface{}{"image_url": "https://images.example.com/a.jpg"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   models.CodeUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, app, http.MethodPost, "/api/posts", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus < 300, env.Success)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestPostOwnership(t *testing.T) {
	app, db := newTestServer(t, nil)
	owner := testutil.CreateUser(t, db, "owner")
	testutil.CreateUser(t, db, "intruder")
	post := testutil.CreatePost(t, db, owner.ID, time.Now())

	ownerToken := testutil.SignToken(t, "owner", "")
	intruderToken := testutil.SignToken(t, "intruder", "")
	path := "/api/posts/" + post.ID.String()

	status, env := doRequest(t, app, http.MethodPut, path, intruderToken, map[string]string{"caption": "hijack"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, env.Code)

	status, _ = doRequest(t, app, http.MethodDelete, path, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = doRequest(t, app, http.MethodPut, path, ownerToken, map[string]string{"caption": "edited"})
	require.Equal(t, http.StatusOK, status)
	var updated models.Post
	decodeData(t, env, &updated)
	require.NotNil(t, updated.Caption)
	assert.Equal(t, "edited", *updated.Caption)

	status, env = doRequest(t, app, http.MethodDelete, path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = doRequest(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, env.Code)

	status, env = doRequest(t, app, http.MethodGet, "/api/posts/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, env.Code)
}

func TestLikeEndpoints(t *testing.T) {
	app, db := newTestServer(t, nil)
	owner := testutil.CreateUser(t, db, "owner")
	testutil.CreateUser(t, db, "fan")
	post := testutil.CreatePost(t, db, owner.ID, time.Now())
	token := testutil.SignToken(t, "fan", "")

	status, _ := doRequest(t, app, http.MethodPost, "/api/likes", token, map[string]string{"post_id": post.ID.String()})
	assert.Equal(t, http.StatusCreated, status)

	status, env := doRequest(t, app, http.MethodPost, "/api/likes", token, map[string]string{"post_id": post.ID.String()})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, env.Code)

	status, env = doRequest(t, app, http.MethodGet, "/api/posts/"+post.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)
	var seen models.Post
	decodeData(t, env, &seen)
	assert.Equal(t, int64(1), seen.LikesCount)
	assert.True(t, seen.IsLiked)

	status, _ = doRequest(t, app, http.MethodDelete, "/api/likes?post_id="+post.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = doRequest(t, app, http.MethodGet, "/api/posts/"+post.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &seen)
	assert.Zero(t, seen.LikesCount)

	status, env = doRequest(t, app, http.MethodPost, "/api/likes", token, map[string]string{"post_id": "bogus"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, env.Code)

	status, env = doRequest(t, app, http.MethodPost, "/api/likes", token, map[string]string{"post_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, env.Code)
}

func TestCommentEndpoints(t *testing.T) {
	app, db := newTestServer(t, nil)
	owner := testutil.CreateUser(t, db, "owner")
	testutil.CreateUser(t, db, "fan")
	post := testutil.CreatePost(t, db, owner.ID, time.Now())
	fanToken := testutil.SignToken(t, "fan", "")
	ownerToken := testutil.SignToken(t, "owner", "")

	status, env := doRequest(t, app, http.MethodPost, "/api/comments", fanToken,
		map[string]string{"post_id": post.ID.String(), "content": "lovely"})
	require.Equal(t, http.StatusCreated, status)
	var comment models.Comment
	decodeData(t, env, &comment)
	assert.Equal(t, "lovely", comment.Content)

	status, env = doRequest(t, app, http.MethodPost, "/api/comments", fanToken,
		map[string]string{"post_id": post.ID.String(), "content": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, env.Code)

	status, env = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%s/comments", post.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	var comments []models.Comment
	decodeData(t, env, &comments)
	require.Len(t, comments, 1)

	status, _ = doRequest(t, app, http.MethodDelete, "/api/comments", ownerToken,
		map[string]string{"comment_id": comment.ID.String()})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/api/comments?comment_id="+comment.ID.String(), fanToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestFollowEndpoints(t *testing.T) {
	app, db := newTestServer(t, nil)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	token := testutil.SignToken(t, "alice", "")

	status, env := doRequest(t, app, http.MethodPost, "/api/follows", token, map[string]string{"following_id": alice.ID.String()})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, env.Code)

	status, _ = doRequest(t, app, http.MethodPost, "/api/follows", token, map[string]string{"following_id": bob.ID.String()})
	assert.Equal(t, http.StatusCreated, status)

	status, env = doRequest(t, app, http.MethodGet, "/api/users/"+bob.ID.String()+"/followers", token, nil)
	require.Equal(t, http.StatusOK, status)
	var followers []models.FollowUser
	decodeData(t, env, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)

	status, env = doRequest(t, app, http.MethodGet, "/api/users/"+alice.ID.String()+"/following", token, nil)
	require.Equal(t, http.StatusOK, status)
	var following []models.FollowUser
	decodeData(t, env, &following)
	require.Len(t, following, 1)
	assert.True(t, following[0].IsFollowing)

	status, _ = doRequest(t, app, http.MethodDelete, "/api/follows?following_id="+bob.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = doRequest(t, app, http.MethodGet, "/api/users/"+bob.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, status)
	var profile models.Profile
	decodeData(t, env, &profile)
	assert.False(t, profile.IsFollowing)
	assert.Zero(t, profile.Stats.FollowersCount)
}

func TestSyncUser(t *testing.T) {
	app, _ := newTestServer(t, nil)
	token := testutil.SignToken(t, "new-subject", "Claimed Name")

	status, env := doRequest(t, app, http.MethodPost, "/api/users/sync", token, nil)
	require.Equal(t, http.StatusOK, status)
	var user models.User
	decodeData(t, env, &user)
	assert.Equal(t, "Claimed Name", user.Name)

	status, env = doRequest(t, app, http.MethodPost, "/api/users/sync", token, map[string]string{"name": "Chosen"})
	require.Equal(t, http.StatusOK, status)
	var renamed models.User
	decodeData(t, env, &renamed)
	assert.Equal(t, user.ID, renamed.ID)
	assert.Equal(t, "Chosen", renamed.Name)

	status, env = doRequest(t, app, http.MethodPost, "/api/users/sync", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthenticated, env.Code)
}
