// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the Snippetly application.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `json:"bio"`
	Avatar    string         `json:"avatar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Snippets  []Snippet      `gorm:"foreignKey:UserID" json:"snippets,omitempty"`
}

// UsernameChange records a rename so stale profile links keep resolving.
// Lookups by a former username redirect to the current one.
type UsernameChange struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	OldUsername string    `gorm:"not null;index" json:"old_username"`
	NewUsername string    `gorm:"not null" json:"new_username"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (UsernameChange) TableName() string {
	return "username_changes"
}

// PublicProfile is the user shape exposed to other users.
type PublicProfile struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the profile DTO for this user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}
