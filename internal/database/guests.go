package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const guestColumns = `id, wedding_id, user_id, email, full_name, phone, side, role, invited_by,
	can_invite_others, plus_one_allowed, plus_one_name, is_vip, under_18, age,
	dietary_preferences, special_requirements, status, invitation_sent_at, responded_at, created_at`

// GuestFilter narrows ListGuests. Zero values mean "no filter"; set filters
// AND together.
type GuestFilter struct {
	Side   string
	Role   string
	Status string
	// Search matches name, email or phone as a case-insensitive substring.
	Search string
}

// InsertGuest inserts a guest row.
func (db *DB) InsertGuest(ctx context.Context, g *Guest) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO guests (id, wedding_id, user_id, email, full_name, phone, side, role, invited_by,
			can_invite_others, plus_one_allowed, plus_one_name, is_vip, under_18, age,
			dietary_preferences, special_requirements, status, invitation_sent_at, responded_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, g.WeddingID, g.UserID, g.Email, g.FullName, g.Phone, g.Side, g.Role, g.InvitedBy,
		g.CanInviteOthers, g.PlusOneAllowed, g.PlusOneName, g.IsVIP, g.Under18, g.Age,
		g.DietaryPreferences, g.SpecialRequirements, g.Status, g.InvitationSentAt, g.RespondedAt, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert guest: %w", err)
	}
	return nil
}

// InsertGuestTx inserts a guest row inside an existing transaction. Used
// by the guest-invitation accept path.
func (db *DB) InsertGuestTx(ctx context.Context, tx *sqlx.Tx, g *Guest) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO guests (id, wedding_id, user_id, email, full_name, phone, side, role, invited_by,
			can_invite_others, plus_one_allowed, plus_one_name, is_vip, under_18, age,
			dietary_preferences, special_requirements, status, invitation_sent_at, responded_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, g.WeddingID, g.UserID, g.Email, g.FullName, g.Phone, g.Side, g.Role, g.InvitedBy,
		g.CanInviteOthers, g.PlusOneAllowed, g.PlusOneName, g.IsVIP, g.Under18, g.Age,
		g.DietaryPreferences, g.SpecialRequirements, g.Status, g.InvitationSentAt, g.RespondedAt, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert guest in tx: %w", err)
	}
	return nil
}

// GetGuestByID retrieves a guest by ID. Returns nil, nil when absent.
func (db *DB) GetGuestByID(ctx context.Context, id string) (*Guest, error) {
	g := &Guest{}
	err := db.GetContext(ctx, g, db.Rebind(
		`SELECT `+guestColumns+` FROM guests WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	return g, nil
}

// GetGuestByWeddingAndUser finds the guest record linking a user to a
// wedding. Returns nil, nil when the user is not a guest of that wedding.
func (db *DB) GetGuestByWeddingAndUser(ctx context.Context, weddingID, userID string) (*Guest, error) {
	g := &Guest{}
	err := db.GetContext(ctx, g, db.Rebind(
		`SELECT `+guestColumns+` FROM guests WHERE wedding_id = ? AND user_id = ?`), weddingID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest by user: %w", err)
	}
	return g, nil
}

// ListGuests returns a wedding's guests matching the filter, newest first.
func (db *DB) ListGuests(ctx context.Context, weddingID string, filter GuestFilter) ([]*Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE wedding_id = ?`
	args := []interface{}{weddingID}

	if filter.Side != "" {
		// Guests marked "both" belong to either side.
		query += ` AND (side = ? OR side = ?)`
		args = append(args, filter.Side, SideBoth)
	}
	if filter.Role != "" {
		query += ` AND role = ?`
		args = append(args, filter.Role)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		query += ` AND (LOWER(full_name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ? OR LOWER(COALESCE(phone, '')) LIKE ?)`
		args = append(args, needle, needle, needle)
	}

	query += ` ORDER BY created_at DESC`

	var guests []*Guest
	if err := db.SelectContext(ctx, &guests, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

// listGuestsBySideTx returns a wedding's guests filtered to a side, with
// "both" matching either side. Used by the snapshot source read.
func listGuestsBySideTx(ctx context.Context, tx *sqlx.Tx, weddingID, side string) ([]*Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE wedding_id = ?`
	args := []interface{}{weddingID}
	if side != "" {
		query += ` AND (side = ? OR side = ?)`
		args = append(args, side, SideBoth)
	}

	var guests []*Guest
	if err := tx.SelectContext(ctx, &guests, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list guests by side: %w", err)
	}
	return guests, nil
}

// UpdateGuest overwrites the mutable guest fields. Status and
// invitation_sent_at are deliberately not touched here; those move only
// through the invite and RSVP paths.
func (db *DB) UpdateGuest(ctx context.Context, g *Guest) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`UPDATE guests SET email = ?, full_name = ?, phone = ?, side = ?, role = ?,
			can_invite_others = ?, plus_one_allowed = ?, plus_one_name = ?, is_vip = ?,
			under_18 = ?, age = ?, dietary_preferences = ?, special_requirements = ?
		 WHERE id = ?`),
		g.Email, g.FullName, g.Phone, g.Side, g.Role,
		g.CanInviteOthers, g.PlusOneAllowed, g.PlusOneName, g.IsVIP,
		g.Under18, g.Age, g.DietaryPreferences, g.SpecialRequirements, g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update guest: %w", err)
	}
	return nil
}

// UpdateGuestStatus records the guest's own response.
func (db *DB) UpdateGuestStatus(ctx context.Context, id, status string) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`UPDATE guests SET status = ?, responded_at = CURRENT_TIMESTAMP WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("failed to update guest status: %w", err)
	}
	return nil
}

// DeleteGuest hard-deletes a guest and cascades to the guest's RSVP rows
// in one transaction, so no orphaned RSVPs survive.
func (db *DB) DeleteGuest(ctx context.Context, id string) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM rsvps WHERE guest_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete guest rsvps: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM guests WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete guest: %w", err)
		}
		return nil
	})
}

// CountGuestsByStatus returns per-status guest counts for a wedding.
func (db *DB) CountGuestsByStatus(ctx context.Context, weddingID string) (map[string]int, error) {
	rows, err := db.QueryxContext(ctx, db.Rebind(
		`SELECT status, COUNT(*) AS n FROM guests WHERE wedding_id = ? GROUP BY status`), weddingID)
	if err != nil {
		return nil, fmt.Errorf("failed to count guests: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan guest count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
