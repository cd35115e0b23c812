package invite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/notify"
)

// GuestInvitationInput carries the fields for inviting a guest by email.
type GuestInvitationInput struct {
	ReceiverEmail   string
	ReceiverName    string
	Role            string
	Side            string
	CanInviteOthers bool
	PersonalMessage string
}

func validGuestRole(role string) bool {
	for _, r := range database.GuestRoles {
		if r == role {
			return true
		}
	}
	return false
}

// CreateGuestInvitation creates a pending guest invitation keyed by
// wedding and recipient email. One pending invitation per key.
func (s *Service) CreateGuestInvitation(ctx context.Context, senderID, weddingID string, in GuestInvitationInput) (*database.GuestInvitation, error) {
	email := strings.ToLower(strings.TrimSpace(in.ReceiverEmail))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.Validation("receiver email is required")
	}
	if len(strings.TrimSpace(in.ReceiverName)) < 3 {
		return nil, errs.Validation("receiver name must be at least 3 characters")
	}
	if in.Side != database.SideGroom && in.Side != database.SideBride {
		return nil, errs.Validation("side must be groom or bride")
	}
	if !validGuestRole(in.Role) {
		return nil, errs.Validation("unknown role %q", in.Role)
	}

	wedding, err := s.db.GetWeddingByID(ctx, weddingID)
	if err != nil {
		return nil, errs.Dependency(err, "loading wedding")
	}
	if wedding == nil {
		return nil, errs.NotFound("wedding %s not found", weddingID)
	}

	existing, err := s.db.GetPendingGuestInvitation(ctx, weddingID, email)
	if err != nil {
		return nil, errs.Dependency(err, "checking pending guest invitation")
	}
	if existing != nil && !time.Now().UTC().After(existing.ExpiresAt) {
		return nil, errs.Conflict("a pending invitation already exists for %s", email)
	}

	now := time.Now().UTC()
	inv := &database.GuestInvitation{
		ID:              uuid.New().String(),
		WeddingID:       weddingID,
		SenderID:        senderID,
		ReceiverEmail:   email,
		ReceiverName:    strings.TrimSpace(in.ReceiverName),
		Role:            in.Role,
		Side:            in.Side,
		CanInviteOthers: in.CanInviteOthers,
		Status:          database.InvitationStatusPending,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.GuestTTL),
	}
	if in.PersonalMessage != "" {
		inv.PersonalMessage = sql.NullString{String: in.PersonalMessage, Valid: true}
	}

	if err := s.db.InsertGuestInvitation(ctx, inv); err != nil {
		return nil, errs.Dependency(err, "inserting guest invitation")
	}

	s.log.Info().Str("invitation_id", inv.ID).Str("wedding_id", weddingID).Msg("guest invitation created")
	return inv, nil
}

// AcceptGuestInvitation accepts a pending guest invitation and creates
// the linked guest record in the same transaction.
func (s *Service) AcceptGuestInvitation(ctx context.Context, invitationID, responderID string) (*database.Guest, error) {
	inv, err := s.db.GetGuestInvitationByID(ctx, invitationID)
	if err != nil {
		return nil, errs.Dependency(err, "loading guest invitation")
	}
	if inv == nil {
		return nil, errs.NotFound("guest invitation %s not found", invitationID)
	}

	if time.Now().UTC().After(inv.ExpiresAt) {
		return nil, errs.Expired("guest invitation has expired")
	}
	if inv.Status != database.InvitationStatusPending {
		return nil, errs.Conflict("invitation has already been %s", inv.Status)
	}

	responder, err := s.db.GetUserByID(ctx, responderID)
	if err != nil {
		return nil, errs.Dependency(err, "loading responder")
	}
	if responder == nil {
		return nil, errs.NotFound("user %s not found", responderID)
	}
	if !strings.EqualFold(responder.Email, inv.ReceiverEmail) {
		return nil, errs.NotAuthorized("invitation is addressed to a different email")
	}

	now := time.Now().UTC()
	guest := &database.Guest{
		ID:               uuid.New().String(),
		WeddingID:        inv.WeddingID,
		UserID:           sql.NullString{String: responder.ID, Valid: true},
		Email:            sql.NullString{String: responder.Email, Valid: true},
		FullName:         inv.ReceiverName,
		Side:             inv.Side,
		Role:             inv.Role,
		InvitedBy:        inv.SenderID,
		CanInviteOthers:  inv.CanInviteOthers,
		Status:           database.GuestStatusAccepted,
		InvitationSentAt: sql.NullTime{Time: inv.CreatedAt, Valid: true},
		RespondedAt:      sql.NullTime{Time: now, Valid: true},
		CreatedAt:        now,
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.db.TransitionGuestInvitationTx(ctx, tx, inv.ID, database.InvitationStatusAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Conflict("invitation has already been responded to")
		}
		return s.db.InsertGuestTx(ctx, tx, guest)
	})
	if err != nil {
		if errs.KindOf(err) != 0 {
			return nil, err
		}
		return nil, errs.Dependency(err, "accepting guest invitation")
	}

	s.notifier.Send(ctx, inv.SenderID, notify.TypeAcceptance,
		"Guest Invitation Accepted",
		fmt.Sprintf("%s will be joining the celebrations.", inv.ReceiverName),
		"/guests")

	return guest, nil
}

// RejectGuestInvitation rejects a pending guest invitation.
func (s *Service) RejectGuestInvitation(ctx context.Context, invitationID, responderID string) error {
	inv, err := s.db.GetGuestInvitationByID(ctx, invitationID)
	if err != nil {
		return errs.Dependency(err, "loading guest invitation")
	}
	if inv == nil {
		return errs.NotFound("guest invitation %s not found", invitationID)
	}

	if time.Now().UTC().After(inv.ExpiresAt) {
		return errs.Expired("guest invitation has expired")
	}
	if inv.Status != database.InvitationStatusPending {
		return errs.Conflict("invitation has already been %s", inv.Status)
	}

	responder, err := s.db.GetUserByID(ctx, responderID)
	if err != nil {
		return errs.Dependency(err, "loading responder")
	}
	if responder == nil {
		return errs.NotFound("user %s not found", responderID)
	}
	if !strings.EqualFold(responder.Email, inv.ReceiverEmail) {
		return errs.NotAuthorized("invitation is addressed to a different email")
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.db.TransitionGuestInvitationTx(ctx, tx, inv.ID, database.InvitationStatusRejected)
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
			return err
		}
		return errs.Dependency(err, "rejecting guest invitation")
	}

	s.notifier.Send(ctx, inv.SenderID, notify.TypeRejection,
		"Guest Invitation Declined",
		fmt.Sprintf("%s has declined the invitation.", inv.ReceiverName),
		"")

	return nil
}
