package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"snippetly/internal/cache"
	"snippetly/internal/middleware"
	"snippetly/internal/models"
	"snippetly/internal/repository"
	"snippetly/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AccessTokenTTL is intentionally short; refresh tokens do the long haul.
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenPair is the credential set handed out on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AccessClaims are the JWT claims carried by access tokens.
type AccessClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// RefreshClaims are the JWT claims carried by refresh tokens. Family groups
// every token descended from one login so a stolen-then-replayed token can
// take the whole chain down.
type RefreshClaims struct {
	UserID uint   `json:"user_id"`
	Family string `json:"family"`
	jwt.RegisteredClaims
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// authService implements AuthService
type authService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtSecret string) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: []byte(jwtSecret)}
}

func familyKey(family string) string {
	return "refresh_family:" + family
}

func (s *authService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	// Same error for unknown email and wrong password.
	if user == nil {
		return nil, nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, models.NewUnauthorizedError("Invalid email or password")
	}

	pair, err := s.issuePair(ctx, user.ID, uuid.NewString())
	if err != nil {
		return nil, nil, err
	}

	middleware.Logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, pair, nil
}

// issuePair mints an access/refresh pair and records the refresh token's jti
// as the family's single live token.
func (s *authService) issuePair(ctx context.Context, userID uint, family string) (*TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
			Subject:   fmt.Sprintf("%d", userID),
		},
	})
	accessToken, err := access.SignedString(s.jwtSecret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	refreshJTI := uuid.NewString()
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		UserID: userID,
		Family: family,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        refreshJTI,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
			Subject:   fmt.Sprintf("%d", userID),
		},
	})
	refreshToken, err := refresh.SignedString(s.jwtSecret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if client := cache.GetClient(); client != nil {
		if err := client.Set(ctx, familyKey(family), refreshJTI, RefreshTokenTTL).Err(); err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
	}, nil
}

func (s *authService) parseRefresh(refreshToken string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}
	return claims, nil
}

// Refresh rotates the refresh token. Presenting a token that is valid but no
// longer the family's live one means it was already spent, i.e. someone is
// replaying it; the whole family is revoked.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	client := cache.GetClient()
	if client == nil {
		return nil, models.NewInternalError(errors.New("token store unavailable"))
	}

	live, err := client.Get(ctx, familyKey(claims.Family)).Result()
	if err != nil || live == "" {
		// Family already revoked or expired
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}
	if live != claims.ID {
		client.Del(ctx, familyKey(claims.Family))
		middleware.Logger.WarnContext(ctx, "refresh token reuse detected, revoking family",
			"user_id", claims.UserID, "family", claims.Family)
		return nil, models.NewUnauthorizedError("Refresh token reuse detected")
	}

	return s.issuePair(ctx, claims.UserID, claims.Family)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	if client := cache.GetClient(); client != nil {
		client.Del(ctx, familyKey(claims.Family))
	}
	middleware.Logger.InfoContext(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}
