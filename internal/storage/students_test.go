package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shindakun/campuslogin/internal/models"
)

func TestCreateLinkedUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	st := &models.Student{StudentID: "S-100", FirstName: "Ana", LastName: "Reyes", Birthday: "2004-05-06"}
	if err := UpsertStudent(ctx, db, st); err != nil {
		t.Fatalf("UpsertStudent() error = %v", err)
	}

	if _, err := GetStudent(ctx, db, "S-404"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("GetStudent(unknown) error = %v, want ErrStudentNotFound", err)
	}

	account := &models.Account{
		User:         models.User{Name: "Ana Reyes", Username: "AReyes", Email: "ana@example.com"},
		PasswordHash: "hash",
	}
	id, err := CreateLinkedUser(ctx, db, account, "S-100")
	if err != nil {
		t.Fatalf("CreateLinkedUser() error = %v", err)
	}
	if account.Username != "areyes" || account.ID != id {
		t.Errorf("account = %+v", account)
	}

	got, err := GetStudent(ctx, db, "S-100")
	if err != nil {
		t.Fatalf("GetStudent() error = %v", err)
	}
	if got.UserID == nil || *got.UserID != id {
		t.Errorf("student user_id = %v, want %d", got.UserID, id)
	}

	// Reseeding keeps the link
	if err := UpsertStudent(ctx, db, st); err != nil {
		t.Fatalf("UpsertStudent() again error = %v", err)
	}
	if got, _ := GetStudent(ctx, db, "S-100"); got.UserID == nil {
		t.Error("reseeding dropped the account link")
	}

	if taken, err := EmailTaken(ctx, db, "ANA@example.com"); err != nil || !taken {
		t.Errorf("EmailTaken() = %v, %v; want true", taken, err)
	}

	t.Run("student already linked", func(t *testing.T) {
		other := &models.Account{User: models.User{Username: "ana2", Email: "ana2@example.com"}, PasswordHash: "hash"}
		if _, err := CreateLinkedUser(ctx, db, other, "S-100"); !errors.Is(err, ErrStudentLinked) {
			t.Fatalf("error = %v, want ErrStudentLinked", err)
		}
		if _, err := GetUserByUsername(ctx, db, "ana2"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("user created despite failed link: %v", err)
		}
	})

	t.Run("duplicate username and email", func(t *testing.T) {
		if err := UpsertStudent(ctx, db, &models.Student{StudentID: "S-200", FirstName: "Ben", LastName: "Cruz", Birthday: "2003-01-02"}); err != nil {
			t.Fatalf("UpsertStudent() error = %v", err)
		}
		dupUser := &models.Account{User: models.User{Username: "areyes", Email: "x@example.com"}, PasswordHash: "hash"}
		if _, err := CreateLinkedUser(ctx, db, dupUser, "S-200"); !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("error = %v, want ErrUsernameTaken", err)
		}
		dupEmail := &models.Account{User: models.User{Username: "bcruz", Email: "ana@example.com"}, PasswordHash: "hash"}
		if _, err := CreateLinkedUser(ctx, db, dupEmail, "S-200"); !errors.Is(err, ErrEmailTaken) {
			t.Errorf("error = %v, want ErrEmailTaken", err)
		}
	})
}
