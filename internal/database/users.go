package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateUser inserts a user record. Emails are stored lowercased so the
// invitation email-match rule is case-insensitive.
func (db *DB) CreateUser(ctx context.Context, email, fullName, phone string) (*User, error) {
	u := &User{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FullName:  fullName,
		CreatedAt: time.Now().UTC(),
	}
	if phone != "" {
		u.Phone = sql.NullString{String: phone, Valid: true}
	}

	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO users (id, email, full_name, phone, created_at) VALUES (?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.FullName, u.Phone, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

// GetUserByID retrieves a user by ID. Returns nil, nil when absent.
func (db *DB) GetUserByID(ctx context.Context, id string) (*User, error) {
	u := &User{}
	err := db.GetContext(ctx, u, db.Rebind(
		`SELECT id, email, full_name, phone, created_at FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email. Returns nil, nil when absent.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := db.GetContext(ctx, u, db.Rebind(
		`SELECT id, email, full_name, phone, created_at FROM users WHERE email = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}
