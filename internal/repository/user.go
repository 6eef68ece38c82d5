package repository

import (
	"context"
	"errors"
	"strings"

	"snippetly/internal/cache"
	"snippetly/internal/models"

	"gorm.io/gorm"
)

// isUniqueConstraintError checks if the error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "23505")
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	RecordRename(ctx context.Context, change *models.UsernameChange) error
	FindRename(ctx context.Context, oldUsername string) (*models.UsernameChange, error)
	List(ctx context.Context, limit int, cursorID *uint, query string) ([]models.User, error)
	Count(ctx context.Context, query string) (int64, error)
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User not found")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found is not an error for lookups
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) RecordRename(ctx context.Context, change *models.UsernameChange) error {
	if err := r.db.WithContext(ctx).Create(change).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FindRename returns the most recent rename record away from oldUsername,
// or nil when the name was never held. Chained renames resolve one hop at
// a time; callers follow the chain.
func (r *userRepository) FindRename(ctx context.Context, oldUsername string) (*models.UsernameChange, error) {
	var change models.UsernameChange
	if err := r.db.WithContext(ctx).
		Where("old_username = ?", oldUsername).
		Order("id DESC").
		First(&change).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &change, nil
}

func (r *userRepository) List(ctx context.Context, limit int, cursorID *uint, query string) ([]models.User, error) {
	var users []models.User

	q := r.db.WithContext(ctx).Model(&models.User{})
	if query != "" {
		q = q.Where("username LIKE ? OR email LIKE ?", "%"+query+"%", "%"+query+"%")
	}
	if cursorID != nil {
		q = q.Where("id < ?", *cursorID)
	}
	if err := q.Order("id DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, query string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{})
	if query != "" {
		q = q.Where("username LIKE ? OR email LIKE ?", "%"+query+"%", "%"+query+"%")
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
