// Package models contains data structures for the application's domain models.
package models

import "time"

// Tag labels snippets across users. Names are stored lowercase.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	// SnippetsCount is not persisted; computed at query time
	SnippetsCount int64 `gorm:"->" json:"snippets_count,omitempty"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}
