// Package pagination implements the shared overfetch-by-one cursor convention
// used by every list endpoint: callers ask storage for limit+1 rows and this
// package trims the probe row and derives the resume cursor.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"snippetly/internal/models"
)

// Page is a trimmed window plus the cursor value to resume after it.
// NextCursor is nil when the underlying query is exhausted.
type Page[T any] struct {
	Items      []T
	NextCursor *T
}

// Paginate converts an overfetched window into a page. items must have been
// queried with limit+1; if more than limit rows came back there is another
// page and the cursor is the last row of the trimmed page, not the probe row.
// Pure: same inputs always produce the same output.
func Paginate[T any](items []T, limit int) Page[T] {
	if limit > 0 && len(items) > limit {
		page := items[:limit]
		last := page[len(page)-1]
		return Page[T]{Items: page, NextCursor: &last}
	}
	return Page[T]{Items: items, NextCursor: nil}
}

// IDCursor resumes id-ordered lists (friendships, users).
type IDCursor struct {
	ID uint `json:"id"`
}

// TimeCursor resumes updated_at-ordered lists (snippets, collections).
type TimeCursor struct {
	UpdatedAt time.Time `json:"updated_at"`
	// ID breaks ties between rows sharing the same timestamp.
	ID uint `json:"id"`
}

// Encode serializes a cursor into the opaque token handed to clients.
func Encode(cursor any) (string, error) {
	b, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode parses a client-supplied token back into the cursor shape that
// produced it. A malformed token is a validation error, not a server fault.
func Decode(token string, dest any) error {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return models.NewValidationError("Invalid cursor")
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return models.NewValidationError("Invalid cursor")
	}
	return nil
}
