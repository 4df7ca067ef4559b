package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shindakun/campuslogin/internal/models"
)

var (
	// ErrStudentNotFound is returned when no student record matches
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentLinked is returned when the student already has an account
	ErrStudentLinked = errors.New("student already linked to an account")
	// ErrUsernameTaken is returned when the username is in use
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken is returned when the email is in use
	ErrEmailTaken = errors.New("email already taken")
)

// UpsertStudent creates or refreshes a student record, keeping any account link
func UpsertStudent(ctx context.Context, db *sql.DB, st *models.Student) error {
	query := `
		INSERT INTO students (student_id, first_name, last_name, birthday)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			birthday = excluded.birthday
	`
	if _, err := db.ExecContext(ctx, query, st.StudentID, st.FirstName, st.LastName, st.Birthday); err != nil {
		return fmt.Errorf("failed to save student: %w", err)
	}
	return nil
}

// GetStudent looks a student record up by id
func GetStudent(ctx context.Context, db *sql.DB, studentID string) (*models.Student, error) {
	var st models.Student
	var userID sql.NullInt64
	err := db.QueryRowContext(ctx, `
		SELECT student_id, first_name, last_name, birthday, user_id
		FROM students
		WHERE student_id = ?
	`, studentID).Scan(&st.StudentID, &st.FirstName, &st.LastName, &st.Birthday, &userID)
	if err == sql.ErrNoRows {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if userID.Valid {
		st.UserID = &userID.Int64
	}
	return &st, nil
}

// EmailTaken reports whether an account already uses email
func EmailTaken(ctx context.Context, db *sql.DB, email string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ? COLLATE NOCASE", email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

// CreateLinkedUser inserts a new account and links it to studentID in one
// transaction. The student must not be linked yet.
func CreateLinkedUser(ctx context.Context, db *sql.DB, account *models.Account, studentID string) (int64, error) {
	account.Username = strings.ToLower(account.Username)
	if err := account.Validate(); err != nil {
		return 0, fmt.Errorf("invalid account: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", account.Username).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to check username: %w", err)
	}
	if n > 0 {
		return 0, ErrUsernameTaken
	}
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ? COLLATE NOCASE", account.Email).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to check email: %w", err)
	}
	if n > 0 {
		return 0, ErrEmailTaken
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (name, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, account.Name, account.Username, account.Email, account.PasswordHash, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		"UPDATE students SET user_id = ? WHERE student_id = ? AND user_id IS NULL",
		id, studentID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to link student: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to link student: %w", err)
	}
	if rows == 0 {
		return 0, ErrStudentLinked
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit registration: %w", err)
	}

	account.ID = id
	account.CreatedAt = now
	return id, nil
}
