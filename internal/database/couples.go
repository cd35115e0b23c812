package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CreateCoupleTx inserts a couple inside an existing transaction. Used by
// the partner-invitation accept path so the invitation transition and the
// couple creation commit together.
func (db *DB) CreateCoupleTx(ctx context.Context, tx *sqlx.Tx, user1ID, user2ID string) (*Couple, error) {
	c := &Couple{
		ID:          uuid.New().String(),
		User1ID:     user1ID,
		User2ID:     user2ID,
		Status:      "engaged",
		EngagedDate: time.Now().UTC(),
		CreatedAt:   time.Now().UTC(),
	}

	_, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO couples (id, user1_id, user2_id, status, engaged_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		c.ID, c.User1ID, c.User2ID, c.Status, c.EngagedDate, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create couple: %w", err)
	}

	return c, nil
}

// GetCoupleByUser retrieves the couple a user belongs to, on either side.
// Returns nil, nil when the user is not part of a couple.
func (db *DB) GetCoupleByUser(ctx context.Context, userID string) (*Couple, error) {
	c := &Couple{}
	err := db.GetContext(ctx, c, db.Rebind(
		`SELECT id, user1_id, user2_id, status, engaged_date, married_date, created_at
		 FROM couples WHERE user1_id = ? OR user2_id = ?
		 ORDER BY created_at DESC LIMIT 1`), userID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return c, nil
}

// GetCoupleByID retrieves a couple by ID. Returns nil, nil when absent.
func (db *DB) GetCoupleByID(ctx context.Context, id string) (*Couple, error) {
	c := &Couple{}
	err := db.GetContext(ctx, c, db.Rebind(
		`SELECT id, user1_id, user2_id, status, engaged_date, married_date, created_at
		 FROM couples WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return c, nil
}
