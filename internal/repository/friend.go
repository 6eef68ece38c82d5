// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"snippetly/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines the interface for friendship edge operations.
// Edges are append-then-transition only; nothing here deletes rows.
type FriendRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByPair(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error)
	GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error)
	Transition(ctx context.Context, friendshipID uint, status models.FriendshipStatus, at time.Time) error
	ListAccepted(ctx context.Context, viewerID uint, limit int, cursorID *uint) ([]models.Friendship, error)
	CountAccepted(ctx context.Context, viewerID uint) (int64, error)
	ListInbox(ctx context.Context, viewerID uint, limit int, cursorID *uint, query string) ([]models.Friendship, error)
	CountInbox(ctx context.Context, viewerID uint, query string) (int64, error)
	ListOutbox(ctx context.Context, viewerID uint, limit int, cursorID *uint, query string) ([]models.Friendship, error)
	CountOutbox(ctx context.Context, viewerID uint, query string) (int64, error)
}

// friendRepository implements FriendRepository
type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		// The unique index on (requester_id, addressee_id) is the backstop
		// against two concurrent sends racing past the existence check.
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Friend request already sent")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) GetByPair(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND addressee_id = ?", requesterID, addresseeID).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No edge in this direction
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	var friendship models.Friendship

	// Find an edge where the users are requester/addressee in either order
	if err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No edge exists
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) Transition(ctx context.Context, friendshipID uint, status models.FriendshipStatus, at time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": at,
	}
	switch status {
	case models.FriendshipStatusAccepted:
		updates["accepted_at"] = at
	case models.FriendshipStatusRejected:
		updates["rejected_at"] = at
	case models.FriendshipStatusCancelled:
		updates["cancelled_at"] = at
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ?", friendshipID).
		Updates(updates).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) ListAccepted(ctx context.Context, viewerID uint, limit int, cursorID *uint) ([]models.Friendship, error) {
	var friendships []models.Friendship

	q := r.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
			models.FriendshipStatusAccepted, viewerID, viewerID)
	if cursorID != nil {
		q = q.Where("id < ?", *cursorID)
	}
	if err := q.
		Order("id DESC").
		Limit(limit).
		Preload("Requester").
		Preload("Addressee").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return friendships, nil
}

func (r *friendRepository) CountAccepted(ctx context.Context, viewerID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
			models.FriendshipStatusAccepted, viewerID, viewerID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// pendingQuery builds the inbox/outbox base query: pending edges joined with
// the counterparty user so filtering and ordering run on their identity.
func (r *friendRepository) pendingQuery(ctx context.Context, viewerID uint, inbox bool, cursorID *uint, query string) *gorm.DB {
	peerColumn := "friendships.requester_id"
	viewerColumn := "friendships.addressee_id"
	if !inbox {
		peerColumn = "friendships.addressee_id"
		viewerColumn = "friendships.requester_id"
	}

	q := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Joins("JOIN users ON users.id = "+peerColumn).
		Where(viewerColumn+" = ? AND friendships.status = ?", viewerID, models.FriendshipStatusPending)

	if query != "" {
		q = q.Where("users.username LIKE ? OR users.email LIKE ?", "%"+query+"%", "%"+query+"%")
	}
	if cursorID != nil {
		q = q.Where("users.id < ?", *cursorID)
	}
	return q
}

func (r *friendRepository) ListInbox(ctx context.Context, viewerID uint, limit int, cursorID *uint, query string) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.pendingQuery(ctx, viewerID, true, cursorID, query).
		Order("users.id DESC").
		Limit(limit).
		Preload("Requester").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendRepository) CountInbox(ctx context.Context, viewerID uint, query string) (int64, error) {
	var count int64
	if err := r.pendingQuery(ctx, viewerID, true, nil, query).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *friendRepository) ListOutbox(ctx context.Context, viewerID uint, limit int, cursorID *uint, query string) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.pendingQuery(ctx, viewerID, false, cursorID, query).
		Order("users.id DESC").
		Limit(limit).
		Preload("Addressee").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendRepository) CountOutbox(ctx context.Context, viewerID uint, query string) (int64, error) {
	var count int64
	if err := r.pendingQuery(ctx, viewerID, false, nil, query).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
