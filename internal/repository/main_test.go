package repository

import (
	"fmt"
	"testing"

	"snippetly/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UsernameChange{},
		&models.Friendship{},
		&models.Collection{},
		&models.Snippet{},
		&models.Tag{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected an error with code %s, got nil", code)
	}
	appErr, ok := err.(*models.AppError)
	if !ok {
		t.Fatalf("Expected *models.AppError, got %T", err)
	}
	if appErr.Code != code {
		t.Fatalf("Expected error code %s, got %s", code, appErr.Code)
	}
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}
	return user
}
