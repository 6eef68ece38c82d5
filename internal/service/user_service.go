// Package service contains the business logic of the application.
package service

import (
	"context"
	"strings"

	"snippetly/internal/middleware"
	"snippetly/internal/models"
	"snippetly/internal/pagination"
	"snippetly/internal/repository"
	"snippetly/internal/validation"
)

// maxRenameHops bounds how far a historical-name chain is followed.
const maxRenameHops = 5

// NameResolution is the outcome of resolving a username that may have been
// renamed. Exactly one shape applies:
//   - User set, RenamedTo empty: the name is current.
//   - User nil, RenamedTo set: the name is historical; retry with RenamedTo.
//
// An unresolvable name is returned as a NotFound error instead.
type NameResolution struct {
	User      *models.User
	RenamedTo string
}

// UserService defines the interface for user business logic
type UserService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ResolveName(ctx context.Context, name string) (*NameResolution, error)
	GetProfile(ctx context.Context, name string) (*models.PublicProfile, string, error)
	UpdateProfile(ctx context.Context, userID uint, updates ProfileUpdates) (*models.User, error)
	ListUsers(ctx context.Context, limit int, cursor string, query string) (*models.UserPage, error)
}

// ProfileUpdates carries the mutable profile fields. Nil means "leave as is".
type ProfileUpdates struct {
	Username *string
	Bio      *string
	Avatar   *string
}

// userService implements UserService
type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ResolveName looks a user up by current username, falling back to the
// rename history. A historical name resolves to a redirect signal carrying
// the current name rather than the user itself.
func (s *userService) ResolveName(ctx context.Context, name string) (*NameResolution, error) {
	user, err := s.userRepo.GetByUsername(ctx, name)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return &NameResolution{User: user}, nil
	}

	// Follow the rename chain: a user renamed a->b->c still resolves from "a".
	current := name
	for hop := 0; hop < maxRenameHops; hop++ {
		change, err := s.userRepo.FindRename(ctx, current)
		if err != nil {
			return nil, err
		}
		if change == nil {
			break
		}
		current = change.NewUsername
		if user, err := s.userRepo.GetByUsername(ctx, current); err != nil {
			return nil, err
		} else if user != nil {
			return &NameResolution{RenamedTo: current}, nil
		}
	}

	return nil, models.NewNotFoundError("User not found")
}

func (s *userService) GetProfile(ctx context.Context, name string) (*models.PublicProfile, string, error) {
	res, err := s.ResolveName(ctx, name)
	if err != nil {
		return nil, "", err
	}
	if res.RenamedTo != "" {
		return nil, res.RenamedTo, nil
	}
	profile := res.User.Public()
	return &profile, "", nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, updates ProfileUpdates) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldUsername := user.Username
	if updates.Username != nil && *updates.Username != user.Username {
		newName := strings.TrimSpace(*updates.Username)
		if err := validation.ValidateUsername(newName); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = newName
	}
	if updates.Bio != nil {
		user.Bio = *updates.Bio
	}
	if updates.Avatar != nil {
		user.Avatar = *updates.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Record the rename so old profile links keep working via redirect.
	if user.Username != oldUsername {
		change := &models.UsernameChange{
			UserID:      user.ID,
			OldUsername: oldUsername,
			NewUsername: user.Username,
		}
		if err := s.userRepo.RecordRename(ctx, change); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to record username change",
				"user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, limit int, cursor string, query string) (*models.UserPage, error) {
	var cursorID *uint
	if cursor != "" {
		var c pagination.IDCursor
		if err := pagination.Decode(cursor, &c); err != nil {
			return nil, err
		}
		cursorID = &c.ID
	}

	users, err := s.userRepo.List(ctx, limit+1, cursorID, query)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	page := pagination.Paginate(users, limit)
	items := make([]models.PublicProfile, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, page.Items[i].Public())
	}

	result := &models.UserPage{Items: items, Total: total}
	if page.NextCursor != nil {
		token, err := pagination.Encode(pagination.IDCursor{ID: page.NextCursor.ID})
		if err != nil {
			return nil, err
		}
		result.NextCursor = &token
	}
	return result, nil
}
