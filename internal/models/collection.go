// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Collection groups a user's snippets.
type Collection struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"not null;uniqueIndex:idx_collections_owner_slug" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Public      bool           `gorm:"default:false;index" json:"public"`
	UserID      uint           `gorm:"not null;uniqueIndex:idx_collections_owner_slug" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Snippets    []Snippet      `gorm:"foreignKey:CollectionID" json:"snippets,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Collection) TableName() string {
	return "collections"
}

// CollectionView is the collection shape returned by list and get endpoints.
type CollectionView struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Public        bool      `json:"public"`
	UserID        uint      `json:"user_id"`
	SnippetsCount int64     `json:"snippets_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// View returns the DTO for this collection with the given snippet count.
func (c *Collection) View(snippetsCount int64) CollectionView {
	return CollectionView{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Description:   c.Description,
		Public:        c.Public,
		UserID:        c.UserID,
		SnippetsCount: snippetsCount,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
