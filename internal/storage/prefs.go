package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrKeyNotFound is returned when a preference key has no value
var ErrKeyNotFound = errors.New("preference not found")

// Prefs is a typed key/value store scoped to one namespace
type Prefs struct {
	db        *sql.DB
	namespace string
	now       func() time.Time
}

// NewPrefs creates a preference store for namespace
func NewPrefs(db *sql.DB, namespace string) *Prefs {
	return &Prefs{db: db, namespace: namespace, now: time.Now}
}

// Get retrieves a string value
func (p *Prefs) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.db.QueryRowContext(ctx,
		"SELECT value FROM prefs WHERE namespace = ? AND key = ?",
		p.namespace, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%s/%s: %w", p.namespace, key, ErrKeyNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, nil
}

// GetInt retrieves an integer value
func (p *Prefs) GetInt(ctx context.Context, key string) (int64, error) {
	value, err := p.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("preference %s is not an integer: %w", key, err)
	}
	return n, nil
}

// GetAll retrieves every key in the namespace
func (p *Prefs) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT key, value FROM prefs WHERE namespace = ?", p.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		values[key] = value
	}

	return values, rows.Err()
}

// UpdatedAt returns when key was last written
func (p *Prefs) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var updatedAt time.Time
	err := p.db.QueryRowContext(ctx,
		"SELECT updated_at FROM prefs WHERE namespace = ? AND key = ?",
		p.namespace, key,
	).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("%s/%s: %w", p.namespace, key, ErrKeyNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get preference timestamp: %w", err)
	}
	return updatedAt, nil
}

// Clear removes every key in the namespace
func (p *Prefs) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM prefs WHERE namespace = ?", p.namespace); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	return nil
}

// Apply writes all entries of b in one transaction: either every key is
// written or none is.
func (p *Prefs) Apply(ctx context.Context, b *Batch) error {
	if b == nil || len(b.entries) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prefs (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare preference write: %w", err)
	}
	defer stmt.Close()

	now := p.now().UTC()
	for _, e := range b.entries {
		if _, err := stmt.ExecContext(ctx, p.namespace, e.key, e.value, now); err != nil {
			return fmt.Errorf("failed to write preference %s: %w", e.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}

	return nil
}

// Batch collects preference writes applied atomically by Prefs.Apply
type Batch struct {
	entries []batchEntry
}

type batchEntry struct {
	key   string
	value string
}

// NewBatch returns an empty batch
func NewBatch() *Batch {
	return &Batch{}
}

// PutString queues a string value
func (b *Batch) PutString(key, value string) *Batch {
	b.entries = append(b.entries, batchEntry{key: key, value: value})
	return b
}

// PutInt queues an integer value
func (b *Batch) PutInt(key string, value int64) *Batch {
	return b.PutString(key, strconv.FormatInt(value, 10))
}

