package server

import (
	"net/url"
	"strings"

	"snippetly/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListParams holds the parsed query parameters shared by list endpoints.
type ListParams struct {
	Limit  int
	Cursor string
	Query  string
}

// parseListParams extracts limit/cursor/query. Limit is clamped to 1..100
// with a default of 20; the cursor stays an opaque string for the service
// layer to decode.
func parseListParams(c *fiber.Ctx) ListParams {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return ListParams{
		Limit:  limit,
		Cursor: c.Query("cursor"),
		Query:  c.Query("query"),
	}
}

// paramName extracts a username route parameter, undoing URL escaping.
func paramName(c *fiber.Ctx, param string) (string, error) {
	raw := c.Params(param)
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.NewValidationError("Missing " + param + " parameter")
	}
	return name, nil
}

// respondRenamed signals that the requested username is historical. The
// client retries the same operation against the current name, so the
// response is a permanent redirect carrying that name.
func respondRenamed(c *fiber.Ctx, oldName, newName string) error {
	location := strings.Replace(c.OriginalURL(), url.PathEscape(oldName), url.PathEscape(newName), 1)
	c.Set(fiber.HeaderLocation, location)
	return c.Status(fiber.StatusPermanentRedirect).JSON(fiber.Map{
		"message": "User has been renamed",
		"data": fiber.Map{
			"username": newName,
		},
	})
}

// respondData writes the mutation envelope.
func respondData(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

// respondPage writes the paginated list envelope.
func respondPage(c *fiber.Ctx, message string, items interface{}, nextCursor *string, total int64) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    message,
		"items":      items,
		"nextCursor": nextCursor,
		"total":      total,
	})
}
