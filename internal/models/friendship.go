// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// FriendshipStatus represents the status of a friendship request.
type FriendshipStatus string

const (
	// FriendshipStatusPending indicates a pending friendship request.
	FriendshipStatusPending FriendshipStatus = "pending"
	// FriendshipStatusAccepted indicates an accepted friendship request.
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	// FriendshipStatusRejected indicates a request rejected by the addressee.
	FriendshipStatusRejected FriendshipStatus = "rejected"
	// FriendshipStatusCancelled indicates a request withdrawn by the requester.
	FriendshipStatusCancelled FriendshipStatus = "cancelled"
)

// Friendship represents a directed friendship edge between two users.
// Edges are never deleted; state changes only through the four lifecycle
// transitions, each stamping its own timestamp.
type Friendship struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;uniqueIndex:idx_friendship_users" json:"requester_id"`
	AddresseeID uint             `gorm:"not null;uniqueIndex:idx_friendship_users" json:"addressee_id"`
	Status      FriendshipStatus `gorm:"type:varchar(20);default:'pending';index:idx_friendships_status" json:"status"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
	RejectedAt  *time.Time       `json:"rejected_at,omitempty"`
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee User `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// IsPending reports whether the edge can still transition.
func (f *Friendship) IsPending() bool {
	return f.Status == FriendshipStatusPending
}

// FriendView is one row of a user's friends list: the other party of an
// accepted edge plus a sample of their recent work.
type FriendView struct {
	User              PublicProfile    `json:"user"`
	RequestStatus     FriendshipStatus `json:"request_status"`
	RequestAcceptedAt *time.Time       `json:"request_accepted_at"`
	FriendshipID      uint             `json:"friendship_id"`
	SnippetsCount     int64            `json:"snippets_count"`
	RecentSnippets    []SnippetSummary `json:"recent_snippets"`
}

// FriendRequestView is one row of the pending inbox or outbox.
type FriendRequestView struct {
	User          PublicProfile    `json:"user"`
	RequestStatus FriendshipStatus `json:"request_status"`
	RequestSentAt time.Time        `json:"request_sent_at"`
	SnippetsCount int64            `json:"snippets_count"`
}
