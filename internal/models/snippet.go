// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Snippet represents a code snippet in the Snippetly application.
type Snippet struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Title        string      `gorm:"not null" json:"title"`
	Slug         string      `gorm:"not null;uniqueIndex:idx_snippets_owner_slug" json:"slug"`
	Language     string      `gorm:"not null;index" json:"language"`
	Code         string      `gorm:"type:text;not null" json:"code"`
	Description  string      `gorm:"type:text" json:"description"`
	Public       bool        `gorm:"default:false;index" json:"public"`
	UserID       uint        `gorm:"not null;uniqueIndex:idx_snippets_owner_slug" json:"user_id"`
	User         User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CollectionID *uint       `gorm:"index" json:"collection_id,omitempty"`
	Collection   *Collection `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`
	Tags         []Tag       `gorm:"many2many:snippet_tags;" json:"tags,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Snippet) TableName() string {
	return "snippets"
}

// SnippetSummary is the reduced snippet shape embedded in friend and profile views.
type SnippetSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the reduced DTO for this snippet.
func (s *Snippet) Summary() SnippetSummary {
	return SnippetSummary{
		ID:        s.ID,
		Title:     s.Title,
		Slug:      s.Slug,
		Language:  s.Language,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// PublicSnippet is the snippet shape exposed to viewers other than the owner.
type PublicSnippet struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Language    string        `json:"language"`
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Owner       PublicProfile `json:"owner"`
	Tags        []Tag         `json:"tags,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PublicView returns the DTO shown to non-owners.
func (s *Snippet) PublicView() PublicSnippet {
	return PublicSnippet{
		ID:          s.ID,
		Title:       s.Title,
		Slug:        s.Slug,
		Language:    s.Language,
		Code:        s.Code,
		Description: s.Description,
		Owner:       s.User.Public(),
		Tags:        s.Tags,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
