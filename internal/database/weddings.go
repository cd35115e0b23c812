package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InsertWeddingTx inserts a wedding row inside an existing transaction.
func (db *DB) InsertWeddingTx(ctx context.Context, tx *sqlx.Tx, w *Wedding) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO weddings (id, couple_id, name, date, venue, city, mode, budget_limit, guest_limit, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		w.ID, w.CoupleID, w.Name, w.Date, w.Venue, w.City, w.Mode, w.BudgetLimit, w.GuestLimit, w.Status, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wedding: %w", err)
	}
	return nil
}

// GetWeddingByID retrieves a wedding by ID. Returns nil, nil when absent.
func (db *DB) GetWeddingByID(ctx context.Context, id string) (*Wedding, error) {
	w := &Wedding{}
	err := db.GetContext(ctx, w, db.Rebind(
		`SELECT id, couple_id, name, date, venue, city, mode, budget_limit, guest_limit, status, created_at
		 FROM weddings WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wedding: %w", err)
	}
	return w, nil
}

// GetWeddingByCouple retrieves the most recent wedding for a couple.
// Returns nil, nil when the couple has no wedding yet.
func (db *DB) GetWeddingByCouple(ctx context.Context, coupleID string) (*Wedding, error) {
	w := &Wedding{}
	err := db.GetContext(ctx, w, db.Rebind(
		`SELECT id, couple_id, name, date, venue, city, mode, budget_limit, guest_limit, status, created_at
		 FROM weddings WHERE couple_id = ?
		 ORDER BY created_at DESC LIMIT 1`), coupleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wedding by couple: %w", err)
	}
	return w, nil
}
