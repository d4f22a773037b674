package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountRequest(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := countRequest(ctx, rdb, "like", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}
	allowed, err := countRequest(ctx, rdb, "like", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.True(t, mr.TTL("rl:like:ip:1.2.3.4") > 0)

	mr.FastForward(2 * time.Minute)
	allowed, err = countRequest(ctx, rdb, "like", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	_, err = countRequest(ctx, nil, "like", "x", 1, time.Minute)
	assert.Error(t, err)
}

func TestCheckRateLimit_DisabledInTest(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	allowed, err := CheckRateLimit(context.Background(), nil, "like", "x", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		allowed    bool
		checkErr   error
		policy     FailPolicy
		wantStatus int
	}{
		{"allowed", true, nil, FailOpen, fiber.StatusOK},
		{"limited", false, nil, FailOpen, fiber.StatusTooManyRequests},
		{"redis down fails open", false, errors.New("down"), FailOpen, fiber.StatusOK},
		{"redis down fails closed", false, errors.New("down"), FailClosed, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotResource, gotID string
			check := func(_ context.Context, _ *redis.Client, resource, id string, _ int, _ time.Duration) (bool, error) {
				gotResource, gotID = resource, id
				return tt.allowed, tt.checkErr
			}

			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				c.Locals(LocalSubject, "user-1")
				return c.Next()
			})
			app.Post("/likes", rateLimit(check, nil, 1, time.Minute, tt.policy, "like"), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest("POST", "/likes", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "like", gotResource)
			assert.Equal(t, "sub:user-1", gotID)
		})
	}
}
