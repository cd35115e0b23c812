package invite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/notify"
)

// CreateVendorInvitation creates a pending vendor invitation keyed by
// wedding and vendor, with the long vendor TTL.
func (s *Service) CreateVendorInvitation(ctx context.Context, callerID, weddingID, vendorID, category, message string) (*database.VendorInvitation, error) {
	if vendorID == "" {
		return nil, errs.Validation("vendor id is required")
	}
	if category == "" {
		return nil, errs.Validation("category is required")
	}

	wedding, err := s.db.GetWeddingByID(ctx, weddingID)
	if err != nil {
		return nil, errs.Dependency(err, "loading wedding")
	}
	if wedding == nil {
		return nil, errs.NotFound("wedding %s not found", weddingID)
	}

	existing, err := s.db.GetPendingVendorInvitation(ctx, weddingID, vendorID)
	if err != nil {
		return nil, errs.Dependency(err, "checking pending vendor invitation")
	}
	if existing != nil && !time.Now().UTC().After(existing.ExpiresAt) {
		return nil, errs.Conflict("a pending invitation already exists for this vendor")
	}

	now := time.Now().UTC()
	inv := &database.VendorInvitation{
		ID:        uuid.New().String(),
		WeddingID: weddingID,
		VendorID:  vendorID,
		InvitedBy: callerID,
		Category:  category,
		Status:    database.InvitationStatusPending,
		SentAt:    now,
		ExpiresAt: now.Add(s.VendorTTL),
		CreatedAt: now,
	}
	if message != "" {
		inv.InvitationMessage = sql.NullString{String: message, Valid: true}
	}

	if err := s.db.InsertVendorInvitation(ctx, inv); err != nil {
		return nil, errs.Dependency(err, "inserting vendor invitation")
	}

	s.log.Info().Str("invitation_id", inv.ID).Str("vendor_id", vendorID).Msg("vendor invitation created")
	return inv, nil
}

// respondVendorInvitation runs the shared accept/reject path. Only the
// invited vendor may respond.
func (s *Service) respondVendorInvitation(ctx context.Context, invitationID, callerID, toStatus string) (*database.VendorInvitation, error) {
	inv, err := s.db.GetVendorInvitationByID(ctx, invitationID)
	if err != nil {
		return nil, errs.Dependency(err, "loading vendor invitation")
	}
	if inv == nil {
		return nil, errs.NotFound("vendor invitation %s not found", invitationID)
	}

	if time.Now().UTC().After(inv.ExpiresAt) {
		return nil, errs.Expired("vendor invitation has expired")
	}
	if inv.Status != database.InvitationStatusPending {
		return nil, errs.Conflict("invitation has already been %s", inv.Status)
	}
	if inv.VendorID != callerID {
		return nil, errs.NotAuthorized("only the invited vendor may respond")
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.db.TransitionVendorInvitationTx(ctx, tx, inv.ID, toStatus)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Conflict("invitation has already been responded to")
		}
		return nil
	})
	if err != nil {
		if errs.KindOf(err) != 0 {
			return nil, err
		}
		return nil, errs.Dependency(err, "responding to vendor invitation")
	}

	return inv, nil
}

// AcceptVendorInvitation accepts a pending vendor invitation.
func (s *Service) AcceptVendorInvitation(ctx context.Context, invitationID, callerID string) error {
	inv, err := s.respondVendorInvitation(ctx, invitationID, callerID, database.InvitationStatusAccepted)
	if err != nil {
		return err
	}

	s.notifier.Send(ctx, inv.InvitedBy, notify.TypeAcceptance,
		"Vendor Invitation Accepted",
		fmt.Sprintf("Your %s vendor has accepted the invitation.", inv.Category),
		"/vendors")
	return nil
}

// RejectVendorInvitation rejects a pending vendor invitation.
func (s *Service) RejectVendorInvitation(ctx context.Context, invitationID, callerID string) error {
	inv, err := s.respondVendorInvitation(ctx, invitationID, callerID, database.InvitationStatusRejected)
	if err != nil {
		return err
	}

	s.notifier.Send(ctx, inv.InvitedBy, notify.TypeRejection,
		"Vendor Invitation Declined",
		fmt.Sprintf("Your %s vendor has declined the invitation.", inv.Category),
		"")
	return nil
}
