package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/models"
	"github.com/shindakun/campuslogin/internal/storage"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "mock.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	err = SeedStudents(ctx, db, []config.SeedStudent{
		{StudentID: "S-100", FirstName: "Ana", LastName: "Reyes", Birthday: "2004-05-06"},
	})
	if err != nil {
		t.Fatalf("SeedStudents() error = %v", err)
	}

	valid := models.Registration{
		Email:     "ana@example.com",
		Username:  "AReyes",
		Password:  "correct horse",
		StudentID: "S-100",
		FirstName: "ana",
		LastName:  "REYES",
		Birthday:  "2004-05-06",
	}

	rejections := []struct {
		name   string
		mutate func(*models.Registration)
		field  string
		msg    string
	}{
		{"unknown student", func(r *models.Registration) { r.StudentID = "S-404" }, "student_id", MsgStudentUnknown},
		{"wrong birthday", func(r *models.Registration) { r.Birthday = "2004-05-07" }, "student_id", MsgStudentMismatch},
		{"wrong name", func(r *models.Registration) { r.FirstName = "Bea" }, "student_id", MsgStudentMismatch},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			reg := valid
			tt.mutate(&reg)
			_, err := Register(ctx, db, reg)
			var rerr *RegistrationError
			if !errors.As(err, &rerr) || rerr.Field != tt.field || rerr.Message != tt.msg {
				t.Errorf("Register() error = %v, want %s: %s", err, tt.field, tt.msg)
			}
		})
	}

	account, err := Register(ctx, db, valid)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if account.Name != "ana REYES" || account.Username != "areyes" || account.ID == 0 {
		t.Errorf("account = %+v", account.User)
	}
	if _, err := Authenticate(ctx, db, "areyes", "correct horse"); err != nil {
		t.Errorf("Authenticate() after Register error = %v", err)
	}

	t.Run("student already linked", func(t *testing.T) {
		reg := valid
		reg.Username, reg.Email = "other", "other@example.com"
		_, err := Register(ctx, db, reg)
		var rerr *RegistrationError
		if !errors.As(err, &rerr) || rerr.Message != MsgStudentLinked {
			t.Errorf("Register() error = %v, want linked", err)
		}
	})

	t.Run("username taken", func(t *testing.T) {
		_, err := Register(ctx, db, valid)
		var rerr *RegistrationError
		if !errors.As(err, &rerr) || rerr.Field != "username" {
			t.Errorf("Register() error = %v, want username taken", err)
		}
	})
}
