// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"unicode"
)

var (
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
	userRe    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	langRe    = regexp.MustCompile(`^[a-zA-Z0-9+#._-]+$`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("password must be at least 12 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	hasUpper := false
	hasLower := false
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digitRe.MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !specialRe.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}
	if !userRe.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateSnippetTitle checks snippet/collection title constraints.
func ValidateSnippetTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 120 {
		return fmt.Errorf("title must not exceed 120 characters")
	}
	return nil
}

// ValidateLanguage checks the snippet language identifier (e.g. "go", "c++", "c#").
func ValidateLanguage(language string) error {
	if language == "" {
		return fmt.Errorf("language is required")
	}
	if len(language) > 40 {
		return fmt.Errorf("language must not exceed 40 characters")
	}
	if !langRe.MatchString(language) {
		return fmt.Errorf("invalid language identifier")
	}
	return nil
}
