package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/models"
	"github.com/shindakun/campuslogin/internal/storage"
)

// Registration rejection messages
const (
	MsgStudentUnknown  = "Only registered students can create an account. Please provide a valid student ID."
	MsgStudentLinked   = "This student ID is already linked to an account. Please log in instead."
	MsgStudentMismatch = "The student ID, last name, first name, or birthday does not match our records. Only registered students can create an account."
	MsgUsernameTaken   = "The username has already been taken."
	MsgEmailTaken      = "The email has already been taken."
)

// RegistrationError is a rejected registration attributed to one field
type RegistrationError struct {
	Field   string
	Message string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration rejected: %s: %s", e.Field, e.Message)
}

// SeedStudents creates or refreshes the configured student records
func SeedStudents(ctx context.Context, db *sql.DB, students []config.SeedStudent) error {
	for _, s := range students {
		st := &models.Student{
			StudentID: s.StudentID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Birthday:  s.Birthday,
		}
		if err := storage.UpsertStudent(ctx, db, st); err != nil {
			return fmt.Errorf("failed to seed student %s: %w", s.StudentID, err)
		}
	}
	return nil
}

// Register creates an account for a listed student whose name and
// birthday match the record, and links the two
func Register(ctx context.Context, db *sql.DB, reg models.Registration) (*models.Account, error) {
	if _, err := storage.GetUserByUsername(ctx, db, reg.Username); err == nil {
		return nil, &RegistrationError{Field: "username", Message: MsgUsernameTaken}
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, err
	}
	taken, err := storage.EmailTaken(ctx, db, reg.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &RegistrationError{Field: "email", Message: MsgEmailTaken}
	}

	student, err := storage.GetStudent(ctx, db, reg.StudentID)
	if errors.Is(err, storage.ErrStudentNotFound) {
		return nil, &RegistrationError{Field: "student_id", Message: MsgStudentUnknown}
	}
	if err != nil {
		return nil, err
	}
	if student.UserID != nil {
		return nil, &RegistrationError{Field: "student_id", Message: MsgStudentLinked}
	}

	nameMatch := strings.EqualFold(student.LastName, reg.LastName) &&
		strings.EqualFold(student.FirstName, reg.FirstName)
	if !nameMatch || student.Birthday != reg.Birthday {
		return nil, &RegistrationError{Field: "student_id", Message: MsgStudentMismatch}
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		User: models.User{
			Name:     strings.TrimSpace(reg.FirstName) + " " + strings.TrimSpace(reg.LastName),
			Username: reg.Username,
			Email:    reg.Email,
		},
		PasswordHash: hash,
	}

	_, err = storage.CreateLinkedUser(ctx, db, account, student.StudentID)
	switch {
	case errors.Is(err, storage.ErrUsernameTaken):
		return nil, &RegistrationError{Field: "username", Message: MsgUsernameTaken}
	case errors.Is(err, storage.ErrEmailTaken):
		return nil, &RegistrationError{Field: "email", Message: MsgEmailTaken}
	case errors.Is(err, storage.ErrStudentLinked):
		return nil, &RegistrationError{Field: "student_id", Message: MsgStudentLinked}
	case err != nil:
		return nil, err
	}

	return account, nil
}
