package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shindakun/campuslogin/internal/models"
	"github.com/shindakun/campuslogin/internal/storage"
)

func newTestManager(t *testing.T) (*SessionManager, *storage.Prefs) {
	t.Helper()
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	prefs := storage.NewPrefs(db, "auth_prefs")
	return NewSessionManager(prefs), prefs
}

func TestSaveAndGetSession(t *testing.T) {
	ctx := context.Background()
	sm, prefs := newTestManager(t)

	if _, err := sm.GetSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("GetSession() on empty store error = %v, want ErrNoSession", err)
	}

	record := models.SessionRecord{Token: "1|abc", UserID: 7, UserName: "Ana Reyes", Username: "areyes", Email: "ana@example.com"}
	if err := sm.SaveSession(ctx, record); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	// Stored under the fixed keys
	want := map[string]string{
		"token":     "1|abc",
		"user_id":   "7",
		"user_name": "Ana Reyes",
		"username":  "areyes",
		"email":     "ana@example.com",
	}
	all, err := prefs.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	for k, v := range want {
		if all[k] != v {
			t.Errorf("pref %s = %q, want %q", k, all[k], v)
		}
	}

	got, err := sm.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Token != record.Token || got.UserID != record.UserID || got.Email != record.Email {
		t.Errorf("GetSession() = %+v", got)
	}
	if got.SavedAt.IsZero() {
		t.Error("SavedAt not populated")
	}
}

func TestSaveSessionOverwritesWholesale(t *testing.T) {
	ctx := context.Background()
	sm, _ := newTestManager(t)

	first := models.SessionRecord{Token: "a", UserID: 1, UserName: "Ana", Username: "ana", Email: "ana@example.com"}
	second := models.SessionRecord{Token: "b", UserID: 2}

	if err := sm.SaveSession(ctx, first); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := sm.SaveSession(ctx, second); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := sm.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Token != "b" || got.UserID != 2 || got.UserName != "" || got.Username != "" || got.Email != "" {
		t.Errorf("GetSession() = %+v, want only the second record", got)
	}
}

func TestSaveSessionRejectsEmptyToken(t *testing.T) {
	ctx := context.Background()
	sm, prefs := newTestManager(t)

	if err := sm.SaveSession(ctx, models.SessionRecord{UserID: 1}); err == nil {
		t.Fatal("SaveSession() without token should fail")
	}
	all, _ := prefs.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("partial record written: %v", all)
	}
}

func TestClearSession(t *testing.T) {
	ctx := context.Background()
	sm, _ := newTestManager(t)

	if err := sm.SaveSession(ctx, models.SessionRecord{Token: "a", UserID: 1}); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := sm.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if _, err := sm.GetSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("GetSession() after clear error = %v, want ErrNoSession", err)
	}
}
