package model

import (
	"fmt"
	"time"
	"unicode"
)

// User is a marketplace account as returned by the backend.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"review_count"`
	ProfileImage string    `json:"profile_image,omitempty"`
	PhoneEnabled bool      `json:"phone_enabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// IsAdmin reports whether the role grants admin access. Unknown roles are not admins.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// ValidRole reports whether role is one the backend knows about.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// MinPasswordLength is the minimum accepted password length on register.
const MinPasswordLength = 8

// ValidatePassword checks the registration password policy: at least
// MinPasswordLength characters with an upper-case letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	var upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !digit {
		return fmt.Errorf("password must contain an upper-case letter and a digit")
	}
	return nil
}

// AuthResponse is the body returned by login and register.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	PhoneEnabled *bool   `json:"phone_enabled,omitempty"`
}
