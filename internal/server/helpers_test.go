package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListParams(t *testing.T) {
	app := fiber.New()
	var got ListParams
	app.Get("/list", func(c *fiber.Ctx) error {
		got = parseListParams(c)
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		name      string
		target    string
		wantLimit int
	}{
		{"default limit", "/list", 20},
		{"explicit limit", "/list?limit=5", 5},
		{"zero falls back to default", "/list?limit=0", 20},
		{"negative falls back to default", "/list?limit=-3", 20},
		{"excessive limit is clamped", "/list?limit=500", 100},
		{"non-numeric falls back to default", "/list?limit=abc", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}

	t.Run("cursor and query pass through untouched", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/list?cursor=eyJpZCI6NX0&query=go", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, "eyJpZCI6NX0", got.Cursor)
		assert.Equal(t, "go", got.Query)
	})
}

func TestParamName(t *testing.T) {
	app := fiber.New()
	var gotName string
	var gotErr error
	app.Get("/users/:username", func(c *fiber.Ctx) error {
		gotName, gotErr = paramName(c, "username")
		return c.SendStatus(http.StatusOK)
	})

	t.Run("plain name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.NoError(t, gotErr)
		assert.Equal(t, "alice", gotName)
	})

	t.Run("escaped name is unescaped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/al%2Dce", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.NoError(t, gotErr)
		assert.Equal(t, "al-ce", gotName)
	})
}

func TestRespondRenamed(t *testing.T) {
	app := fiber.New()
	app.Put("/users/add-friend/:friend_name", func(c *fiber.Ctx) error {
		return respondRenamed(c, c.Params("friend_name"), "current_name")
	})

	req := httptest.NewRequest(http.MethodPut, "/users/add-friend/old_name?limit=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusPermanentRedirect, resp.StatusCode)
	assert.Equal(t, "/users/add-friend/current_name?limit=5", resp.Header.Get("Location"))
}
