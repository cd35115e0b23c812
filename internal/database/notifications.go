package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertNotification appends a notification record.
func (db *DB) InsertNotification(ctx context.Context, userID, typ, title, message, actionURL string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if actionURL != "" {
		n.ActionURL = sql.NullString{String: actionURL, Valid: true}
	}

	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO notifications (id, user_id, type, title, message, read, action_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Read, n.ActionURL, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return n, nil
}

// ListNotificationsByUser returns a user's notifications, newest first.
func (db *DB) ListNotificationsByUser(ctx context.Context, userID string) ([]*Notification, error) {
	var notifications []*Notification
	err := db.SelectContext(ctx, &notifications, db.Rebind(
		`SELECT id, user_id, type, title, message, read, action_url, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (db *DB) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`UPDATE notifications SET read = TRUE WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
