package models

import (
	"fmt"
	"strings"
	"time"
)

// User is the public profile returned by the login API
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Account is a user row held by the mock API, including the password hash
type Account struct {
	User
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks if the account fields are valid
func (a *Account) Validate() error {
	if a.Username == "" {
		return fmt.Errorf("username is required")
	}

	if a.Username != strings.ToLower(a.Username) {
		return fmt.Errorf("username must be lower case")
	}

	if len(a.Username) > 255 {
		return fmt.Errorf("username must be at most 255 characters")
	}

	if len(a.Email) > 255 {
		return fmt.Errorf("email must be at most 255 characters")
	}

	if a.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}

	return nil
}
