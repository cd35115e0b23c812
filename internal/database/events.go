package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const eventColumns = `id, wedding_id, name, description, event_type, date, start_time, end_time,
	venue, city, dress_code, rsvp_deadline, auto_generated, created_by, created_at`

// InsertEventTx inserts an event row inside an existing transaction.
func (db *DB) InsertEventTx(ctx context.Context, tx *sqlx.Tx, e *Event) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO events (id, wedding_id, name, description, event_type, date, start_time, end_time,
			venue, city, dress_code, rsvp_deadline, auto_generated, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.WeddingID, e.Name, e.Description, e.EventType, e.Date, e.StartTime, e.EndTime,
		e.Venue, e.City, e.DressCode, e.RSVPDeadline, e.AutoGenerated, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// InsertEvent inserts an event row outside a transaction.
func (db *DB) InsertEvent(ctx context.Context, e *Event) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO events (id, wedding_id, name, description, event_type, date, start_time, end_time,
			venue, city, dress_code, rsvp_deadline, auto_generated, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.WeddingID, e.Name, e.Description, e.EventType, e.Date, e.StartTime, e.EndTime,
		e.Venue, e.City, e.DressCode, e.RSVPDeadline, e.AutoGenerated, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetEventByID retrieves an event by ID. Returns nil, nil when absent.
func (db *DB) GetEventByID(ctx context.Context, id string) (*Event, error) {
	e := &Event{}
	err := db.GetContext(ctx, e, db.Rebind(
		`SELECT `+eventColumns+` FROM events WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// ListEventsByWedding returns a wedding's events in date order.
func (db *DB) ListEventsByWedding(ctx context.Context, weddingID string) ([]*Event, error) {
	var events []*Event
	err := db.SelectContext(ctx, &events, db.Rebind(
		`SELECT `+eventColumns+` FROM events WHERE wedding_id = ? ORDER BY date, created_at`), weddingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateEvent overwrites the editable fields of an event.
func (db *DB) UpdateEvent(ctx context.Context, e *Event) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`UPDATE events SET name = ?, description = ?, date = ?, start_time = ?, end_time = ?,
			venue = ?, city = ?, dress_code = ?, rsvp_deadline = ?
		 WHERE id = ?`),
		e.Name, e.Description, e.Date, e.StartTime, e.EndTime,
		e.Venue, e.City, e.DressCode, e.RSVPDeadline, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event and its RSVP rows in one transaction.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM rsvps WHERE event_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete event rsvps: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM events WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}
