package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const snapshotColumns = `id, event_id, wedding_id, side, total_invited, total_attending,
	total_declined, total_maybe, total_pending, adults_count, teens_count, children_count,
	calculated_headcount, vegetarian_count, vegan_count, halal_count, snapshot_date, created_at`

// SnapshotSource is the consistent read the aggregator works from: the
// event, the invited guests matching the side filter, and every RSVP row
// for the event, all read in one transaction so a guest whose status
// changes mid-computation cannot be double counted.
type SnapshotSource struct {
	Event  *Event
	Guests []*Guest
	RSVPs  []*RSVP
}

// ReadSnapshotSource collects the aggregation input for an event in a
// single transaction. side may be empty for an all-sides snapshot.
func (db *DB) ReadSnapshotSource(ctx context.Context, eventID, side string) (*SnapshotSource, error) {
	src := &SnapshotSource{}
	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		e := &Event{}
		err := tx.GetContext(ctx, e, tx.Rebind(
			`SELECT `+eventColumns+` FROM events WHERE id = ?`), eventID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get event in tx: %w", err)
		}
		src.Event = e

		if src.Guests, err = listGuestsBySideTx(ctx, tx, e.WeddingID, side); err != nil {
			return err
		}
		if src.RSVPs, err = listRSVPsByEventTx(ctx, tx, eventID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

// InsertSnapshot appends a snapshot row. Snapshots are never updated in
// place; consumers read the latest by snapshot_date.
func (db *DB) InsertSnapshot(ctx context.Context, s *HeadcountSnapshot) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO headcount_snapshots (id, event_id, wedding_id, side, total_invited, total_attending,
			total_declined, total_maybe, total_pending, adults_count, teens_count, children_count,
			calculated_headcount, vegetarian_count, vegan_count, halal_count, snapshot_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		s.ID, s.EventID, s.WeddingID, s.Side, s.TotalInvited, s.TotalAttending,
		s.TotalDeclined, s.TotalMaybe, s.TotalPending, s.AdultsCount, s.TeensCount, s.ChildrenCount,
		s.CalculatedHeadcount, s.VegetarianCount, s.VeganCount, s.HalalCount, s.SnapshotDate, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for an (event, side)
// key, or nil, nil when none has been computed yet.
func (db *DB) LatestSnapshot(ctx context.Context, eventID, side string) (*HeadcountSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM headcount_snapshots WHERE event_id = ?`
	args := []interface{}{eventID}
	if side == "" {
		query += ` AND side IS NULL`
	} else {
		query += ` AND side = ?`
		args = append(args, side)
	}
	query += ` ORDER BY snapshot_date DESC, created_at DESC LIMIT 1`

	s := &HeadcountSnapshot{}
	err := db.GetContext(ctx, s, db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return s, nil
}

// ListSnapshotsByEvent returns every snapshot for an event, newest first.
func (db *DB) ListSnapshotsByEvent(ctx context.Context, eventID string) ([]*HeadcountSnapshot, error) {
	var snapshots []*HeadcountSnapshot
	err := db.SelectContext(ctx, &snapshots, db.Rebind(
		`SELECT `+snapshotColumns+` FROM headcount_snapshots WHERE event_id = ?
		 ORDER BY snapshot_date DESC, created_at DESC`), eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}
