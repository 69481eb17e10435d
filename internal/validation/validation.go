// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Post and comment payload bounds.
const (
	MinTitleLen   = 5
	MaxTitleLen   = 200
	MinContentLen = 10
	MaxCommentLen = 10000
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	// Check minimum length
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	// Check maximum length (prevent unreasonable inputs)
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	// Check for uppercase letter
	hasUpper := false
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	// Check for lowercase letter
	hasLower := false
	for _, r := range password {
		if unicode.IsLower(r) {
			hasLower = true
			break
		}
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	// Check for digit
	hasDigit := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements.
// Usernames are case-preserving; uniqueness is enforced at the store.
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if utf8.RuneCountInString(username) > 150 {
		return fmt.Errorf("username must not exceed 150 characters")
	}

	// Only allow alphanumeric, underscores and hyphens
	if !regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	// Cannot start or end with underscore/hyphen
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	// Simple email validation - regex approach
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}

// ValidatePostTitle checks post title bounds.
func ValidatePostTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < MinTitleLen {
		return fmt.Errorf("title must be at least %d characters long", MinTitleLen)
	}
	if n > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}
	return nil
}

// ValidatePostContent checks post content bounds.
func ValidatePostContent(content string) error {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < MinContentLen {
		return fmt.Errorf("content must be at least %d characters long", MinContentLen)
	}
	return nil
}

// ValidateCommentContent checks comment content bounds.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLen {
		return fmt.Errorf("comment must not exceed %d characters", MaxCommentLen)
	}
	return nil
}
