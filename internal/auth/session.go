package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/shindakun/campuslogin/internal/models"
	"github.com/shindakun/campuslogin/internal/storage"
)

// Preference keys of the persisted session record
const (
	KeyToken    = "token"
	KeyUserID   = "user_id"
	KeyUserName = "user_name"
	KeyUsername = "username"
	KeyEmail    = "email"
)

// ErrNoSession is returned when no session has been saved
var ErrNoSession = errors.New("no session found")

// SessionManager persists the login session in the local preference store
type SessionManager struct {
	prefs *storage.Prefs
}

// NewSessionManager creates a session manager over prefs
func NewSessionManager(prefs *storage.Prefs) *SessionManager {
	return &SessionManager{prefs: prefs}
}

// SaveSession overwrites the stored session with record in one batch
func (sm *SessionManager) SaveSession(ctx context.Context, record models.SessionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	batch := storage.NewBatch().
		PutString(KeyToken, record.Token).
		PutInt(KeyUserID, record.UserID).
		PutString(KeyUserName, record.UserName).
		PutString(KeyUsername, record.Username).
		PutString(KeyEmail, record.Email)

	if err := sm.prefs.Apply(ctx, batch); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession reads the stored session back
func (sm *SessionManager) GetSession(ctx context.Context) (*models.SessionRecord, error) {
	values, err := sm.prefs.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	token, ok := values[KeyToken]
	if !ok || token == "" {
		return nil, ErrNoSession
	}

	userID, err := sm.prefs.GetInt(ctx, KeyUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	record := &models.SessionRecord{
		Token:    token,
		UserID:   userID,
		UserName: values[KeyUserName],
		Username: values[KeyUsername],
		Email:    values[KeyEmail],
	}

	if savedAt, err := sm.prefs.UpdatedAt(ctx, KeyToken); err == nil {
		record.SavedAt = savedAt
	}

	return record, nil
}

// ClearSession removes the stored session (logout)
func (sm *SessionManager) ClearSession(ctx context.Context) error {
	if err := sm.prefs.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
