package models

import (
	"fmt"
	"time"
)

// SessionRecord is the locally persisted result of a successful login.
// It is written as a whole and never partially updated.
type SessionRecord struct {
	Token    string `json:"-"` // Never serialize to JSON
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Username string `json:"username"`
	Email    string `json:"email"`

	// SavedAt is read back from storage; it is not part of the record itself
	SavedAt time.Time `json:"saved_at,omitempty"`
}

// Validate checks that the session carries a token
func (s *SessionRecord) Validate() error {
	if s.Token == "" {
		return fmt.Errorf("token is required")
	}

	return nil
}

// DisplayName returns the best name available for greeting the user
func (s *SessionRecord) DisplayName() string {
	switch {
	case s.UserName != "":
		return s.UserName
	case s.Username != "":
		return s.Username
	default:
		return fmt.Sprintf("user #%d", s.UserID)
	}
}
