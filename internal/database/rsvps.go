package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const rsvpColumns = `id, event_id, guest_id, wedding_id, status, adults_count, teens_count,
	children_count, calculated_headcount, dietary_preferences, special_requirements,
	rsvp_notes, submitted_at, created_at`

// UpsertRSVP creates or updates the one RSVP row per (event_id, guest_id).
// The unique constraint plus ON CONFLICT keeps double submissions from two
// tabs down to a single row.
func (db *DB) UpsertRSVP(ctx context.Context, r *RSVP) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO rsvps (id, event_id, guest_id, wedding_id, status, adults_count, teens_count,
			children_count, calculated_headcount, dietary_preferences, special_requirements,
			rsvp_notes, submitted_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (event_id, guest_id) DO UPDATE SET
			status = excluded.status,
			adults_count = excluded.adults_count,
			teens_count = excluded.teens_count,
			children_count = excluded.children_count,
			calculated_headcount = excluded.calculated_headcount,
			dietary_preferences = excluded.dietary_preferences,
			special_requirements = excluded.special_requirements,
			rsvp_notes = excluded.rsvp_notes,
			submitted_at = excluded.submitted_at`),
		r.ID, r.EventID, r.GuestID, r.WeddingID, r.Status, r.AdultsCount, r.TeensCount,
		r.ChildrenCount, r.CalculatedHeadcount, r.DietaryPreferences, r.SpecialRequirements,
		r.RSVPNotes, r.SubmittedAt, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rsvp: %w", err)
	}
	return nil
}

// GetRSVP retrieves the RSVP for an (event, guest) pair. Returns nil, nil
// when the guest has not responded.
func (db *DB) GetRSVP(ctx context.Context, eventID, guestID string) (*RSVP, error) {
	r := &RSVP{}
	err := db.GetContext(ctx, r, db.Rebind(
		`SELECT `+rsvpColumns+` FROM rsvps WHERE event_id = ? AND guest_id = ?`), eventID, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rsvp: %w", err)
	}
	return r, nil
}

// ListRSVPsByEvent returns every RSVP row for an event.
func (db *DB) ListRSVPsByEvent(ctx context.Context, eventID string) ([]*RSVP, error) {
	var rsvps []*RSVP
	err := db.SelectContext(ctx, &rsvps, db.Rebind(
		`SELECT `+rsvpColumns+` FROM rsvps WHERE event_id = ? ORDER BY created_at`), eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	return rsvps, nil
}

// CountRSVPsByEvent returns the number of RSVP rows per (event, guest)
// pair for an event. Used by tests to assert the uniqueness invariant.
func (db *DB) CountRSVPsByEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, db.Rebind(
		`SELECT COUNT(*) FROM rsvps WHERE event_id = ?`), eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to count rsvps: %w", err)
	}
	return n, nil
}

func listRSVPsByEventTx(ctx context.Context, tx *sqlx.Tx, eventID string) ([]*RSVP, error) {
	var rsvps []*RSVP
	err := tx.SelectContext(ctx, &rsvps, tx.Rebind(
		`SELECT `+rsvpColumns+` FROM rsvps WHERE event_id = ?`), eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps in tx: %w", err)
	}
	return rsvps, nil
}
