package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"pixelfeed/internal/config"
	"pixelfeed/internal/models"
	"pixelfeed/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
	Error      string             `json:"error"`
	Code       string             `json:"code"`
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Env:              "test",
		AuthJWTSecret:    testutil.TestJWTSecret,
		FeedDefaultLimit: 10,
		FeedMaxLimit:     50,
	}
}

func newTestServer(t *testing.T, rdb *redis.Client) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	s, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	return s.App(), db
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

