package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const partnerInvitationColumns = `id, code, sender_id, receiver_email, status, rejection_count,
	message, created_at, expires_at, responded_at`

const guestInvitationColumns = `id, wedding_id, sender_id, receiver_email, receiver_name, role,
	side, can_invite_others, personal_message, status, created_at, expires_at, responded_at`

const vendorInvitationColumns = `id, wedding_id, vendor_id, invited_by, category,
	invitation_message, status, sent_at, responded_at, expires_at, created_at`

// InsertPartnerInvitation inserts a partner invitation row.
func (db *DB) InsertPartnerInvitation(ctx context.Context, inv *PartnerInvitation) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO partner_invitations (id, code, sender_id, receiver_email, status, rejection_count,
			message, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		inv.ID, inv.Code, inv.SenderID, inv.ReceiverEmail, inv.Status, inv.RejectionCount,
		inv.Message, inv.CreatedAt, inv.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert partner invitation: %w", err)
	}
	return nil
}

// PartnerInvitationCodeExists reports whether a code is already taken.
func (db *DB) PartnerInvitationCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := db.GetContext(ctx, &exists, db.Rebind(
		`SELECT EXISTS(SELECT 1 FROM partner_invitations WHERE code = ?)`), code)
	if err != nil {
		return false, fmt.Errorf("failed to check code uniqueness: %w", err)
	}
	return exists, nil
}

// GetPartnerInvitationByCode retrieves a partner invitation by its code.
// Codes are stored uppercase; lookup folds case. Returns nil, nil when the
// code is unknown.
func (db *DB) GetPartnerInvitationByCode(ctx context.Context, code string) (*PartnerInvitation, error) {
	inv := &PartnerInvitation{}
	err := db.GetContext(ctx, inv, db.Rebind(
		`SELECT `+partnerInvitationColumns+` FROM partner_invitations WHERE code = ?`),
		strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner invitation: %w", err)
	}
	return inv, nil
}

// TransitionPartnerInvitationTx moves a pending partner invitation to a
// terminal status inside a transaction. The WHERE status = 'pending' guard
// makes the transition atomic: of two concurrent responders only one sees
// a row updated. Returns false when the invitation was no longer pending.
func (db *DB) TransitionPartnerInvitationTx(ctx context.Context, tx *sqlx.Tx, id, toStatus string, bumpRejections bool) (bool, error) {
	query := `UPDATE partner_invitations SET status = ?, responded_at = ?`
	if bumpRejections {
		query += `, rejection_count = rejection_count + 1`
	}
	query += ` WHERE id = ? AND status = ?`

	res, err := tx.ExecContext(ctx, tx.Rebind(query), toStatus, time.Now().UTC(), id, InvitationStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to transition partner invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// InsertGuestInvitation inserts a guest invitation row.
func (db *DB) InsertGuestInvitation(ctx context.Context, inv *GuestInvitation) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO guest_invitations (id, wedding_id, sender_id, receiver_email, receiver_name, role,
			side, can_invite_others, personal_message, status, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		inv.ID, inv.WeddingID, inv.SenderID, inv.ReceiverEmail, inv.ReceiverName, inv.Role,
		inv.Side, inv.CanInviteOthers, inv.PersonalMessage, inv.Status, inv.CreatedAt, inv.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert guest invitation: %w", err)
	}
	return nil
}

// GetGuestInvitationByID retrieves a guest invitation. Returns nil, nil
// when absent.
func (db *DB) GetGuestInvitationByID(ctx context.Context, id string) (*GuestInvitation, error) {
	inv := &GuestInvitation{}
	err := db.GetContext(ctx, inv, db.Rebind(
		`SELECT `+guestInvitationColumns+` FROM guest_invitations WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest invitation: %w", err)
	}
	return inv, nil
}

// GetPendingGuestInvitation finds the newest pending invitation keyed by
// wedding and recipient email. An expired pending row may coexist with a
// later re-invite, so the query pins the most recent one. Returns nil,
// nil when none is pending.
func (db *DB) GetPendingGuestInvitation(ctx context.Context, weddingID, receiverEmail string) (*GuestInvitation, error) {
	inv := &GuestInvitation{}
	err := db.GetContext(ctx, inv, db.Rebind(
		`SELECT `+guestInvitationColumns+` FROM guest_invitations
		 WHERE wedding_id = ? AND receiver_email = ? AND status = ?
		 ORDER BY created_at DESC LIMIT 1`),
		weddingID, strings.ToLower(strings.TrimSpace(receiverEmail)), InvitationStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending guest invitation: %w", err)
	}
	return inv, nil
}

// TransitionGuestInvitationTx conditionally moves a pending guest
// invitation to a terminal status. Returns false when already responded.
func (db *DB) TransitionGuestInvitationTx(ctx context.Context, tx *sqlx.Tx, id, toStatus string) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(
		`UPDATE guest_invitations SET status = ?, responded_at = ? WHERE id = ? AND status = ?`),
		toStatus, time.Now().UTC(), id, InvitationStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to transition guest invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// InsertVendorInvitation inserts a vendor invitation row.
func (db *DB) InsertVendorInvitation(ctx context.Context, inv *VendorInvitation) error {
	_, err := db.ExecContext(ctx, db.Rebind(
		`INSERT INTO vendor_invitations (id, wedding_id, vendor_id, invited_by, category,
			invitation_message, status, sent_at, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		inv.ID, inv.WeddingID, inv.VendorID, inv.InvitedBy, inv.Category,
		inv.InvitationMessage, inv.Status, inv.SentAt, inv.ExpiresAt, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vendor invitation: %w", err)
	}
	return nil
}

// GetVendorInvitationByID retrieves a vendor invitation. Returns nil, nil
// when absent.
func (db *DB) GetVendorInvitationByID(ctx context.Context, id string) (*VendorInvitation, error) {
	inv := &VendorInvitation{}
	err := db.GetContext(ctx, inv, db.Rebind(
		`SELECT `+vendorInvitationColumns+` FROM vendor_invitations WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor invitation: %w", err)
	}
	return inv, nil
}

// GetPendingVendorInvitation finds the newest pending invitation keyed by
// wedding and vendor. Returns nil, nil when none is pending.
func (db *DB) GetPendingVendorInvitation(ctx context.Context, weddingID, vendorID string) (*VendorInvitation, error) {
	inv := &VendorInvitation{}
	err := db.GetContext(ctx, inv, db.Rebind(
		`SELECT `+vendorInvitationColumns+` FROM vendor_invitations
		 WHERE wedding_id = ? AND vendor_id = ? AND status = ?
		 ORDER BY created_at DESC LIMIT 1`),
		weddingID, vendorID, InvitationStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending vendor invitation: %w", err)
	}
	return inv, nil
}

// TransitionVendorInvitationTx conditionally moves a pending vendor
// invitation to a terminal status. Returns false when already responded.
func (db *DB) TransitionVendorInvitationTx(ctx context.Context, tx *sqlx.Tx, id, toStatus string) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(
		`UPDATE vendor_invitations SET status = ?, responded_at = ? WHERE id = ? AND status = ?`),
		toStatus, time.Now().UTC(), id, InvitationStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to transition vendor invitation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
