// Package invite implements the time-boxed, single-use invitation
// workflow in its three concrete uses: partner invitations (code-based),
// guest invitations (keyed by wedding and recipient email) and vendor
// invitations (keyed by wedding and vendor). Responded invitations are
// terminal; expiry is computed at read time against expires_at rather
// than stored as a transition.
package invite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/notify"
)

// Default invitation lifetimes.
const (
	DefaultPartnerTTL = 48 * time.Hour
	DefaultGuestTTL   = 7 * 24 * time.Hour
	DefaultVendorTTL  = 30 * 24 * time.Hour
)

type Service struct {
	db       *database.DB
	notifier *notify.Service
	log      zerolog.Logger

	PartnerTTL time.Duration
	GuestTTL   time.Duration
	VendorTTL  time.Duration
}

func New(db *database.DB, notifier *notify.Service, log zerolog.Logger) *Service {
	return &Service{
		db:         db,
		notifier:   notifier,
		log:        log.With().Str("component", "invite").Logger(),
		PartnerTTL: DefaultPartnerTTL,
		GuestTTL:   DefaultGuestTTL,
		VendorTTL:  DefaultVendorTTL,
	}
}

// CreatePartnerInvitation generates a unique 6-character code and
// persists a pending invitation with the configured TTL.
func (s *Service) CreatePartnerInvitation(ctx context.Context, senderID, receiverEmail, message string) (*database.PartnerInvitation, error) {
	receiverEmail = strings.ToLower(strings.TrimSpace(receiverEmail))
	if receiverEmail == "" || !strings.Contains(receiverEmail, "@") {
		return nil, errs.Validation("receiver email is required")
	}

	sender, err := s.db.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, errs.Dependency(err, "loading sender")
	}
	if sender == nil {
		return nil, errs.NotFound("sender %s not found", senderID)
	}
	if sender.Email == receiverEmail {
		return nil, errs.Validation("cannot invite yourself")
	}

	code, err := generateUniqueCode(ctx, s.db)
	if err != nil {
		return nil, errs.Dependency(err, "generating invitation code")
	}

	now := time.Now().UTC()
	inv := &database.PartnerInvitation{
		ID:            uuid.New().String(),
		Code:          code,
		SenderID:      senderID,
		ReceiverEmail: receiverEmail,
		Status:        database.InvitationStatusPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.PartnerTTL),
	}
	if message != "" {
		inv.Message = sql.NullString{String: message, Valid: true}
	}

	if err := s.db.InsertPartnerInvitation(ctx, inv); err != nil {
		return nil, errs.Dependency(err, "inserting partner invitation")
	}

	s.log.Info().Str("code", code).Str("sender_id", senderID).Msg("partner invitation created")
	return inv, nil
}

// GetPartnerInvitation fetches an invitation by code.
func (s *Service) GetPartnerInvitation(ctx context.Context, code string) (*database.PartnerInvitation, error) {
	inv, err := s.db.GetPartnerInvitationByCode(ctx, code)
	if err != nil {
		return nil, errs.Dependency(err, "loading partner invitation")
	}
	if inv == nil {
		return nil, errs.NotFound("invalid invitation code")
	}
	return inv, nil
}

// checkPartnerResponse runs the shared accept/reject preconditions and
// returns the invitation and responding user when all hold.
func (s *Service) checkPartnerResponse(ctx context.Context, code, responderID string) (*database.PartnerInvitation, *database.User, error) {
	inv, err := s.GetPartnerInvitation(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	// Expiry wins over the stored status: a stale pending row past its
	// deadline must never become acceptable again.
	if time.Now().UTC().After(inv.ExpiresAt) {
		return nil, nil, errs.Expired("invitation code %s has expired", inv.Code)
	}
	if inv.Status != database.InvitationStatusPending {
		return nil, nil, errs.Conflict("invitation has already been %s", inv.Status)
	}

	responder, err := s.db.GetUserByID(ctx, responderID)
	if err != nil {
		return nil, nil, errs.Dependency(err, "loading responder")
	}
	if responder == nil {
		return nil, nil, errs.NotFound("user %s not found", responderID)
	}
	if !strings.EqualFold(responder.Email, inv.ReceiverEmail) {
		return nil, nil, errs.NotAuthorized("invitation is addressed to a different email")
	}

	return inv, responder, nil
}

// AcceptPartnerInvitation accepts a pending invitation and creates the
// couple in the same transaction. The conditional transition ensures two
// concurrent accepts cannot both create a couple.
func (s *Service) AcceptPartnerInvitation(ctx context.Context, code, responderID string) (*database.Couple, error) {
	inv, responder, err := s.checkPartnerResponse(ctx, code, responderID)
	if err != nil {
		return nil, err
	}

	var couple *database.Couple
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.db.TransitionPartnerInvitationTx(ctx, tx, inv.ID, database.InvitationStatusAccepted, false)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Conflict("invitation has already been responded to")
		}

		couple, err = s.db.CreateCoupleTx(ctx, tx, inv.SenderID, responder.ID)
		return err
	})
	if err != nil {
		if errs.KindOf(err) != 0 {
			return nil, err
		}
		return nil, errs.Dependency(err, "accepting partner invitation")
	}

	s.notifier.Send(ctx, inv.SenderID, notify.TypeAcceptance,
		"Partner Invitation Accepted!",
		fmt.Sprintf("%s has accepted your invitation. You can now start planning together!", responder.FullName),
		"/dashboard")

	s.log.Info().Str("code", inv.Code).Str("couple_id", couple.ID).Msg("partner invitation accepted")
	return couple, nil
}

// RejectPartnerInvitation rejects a pending invitation, bumping its
// rejection count once. The code is spent either way; a new invitation
// needs a new code.
func (s *Service) RejectPartnerInvitation(ctx context.Context, code, responderID string) error {
	inv, responder, err := s.checkPartnerResponse(ctx, code, responderID)
	if err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.db.TransitionPartnerInvitationTx(ctx, tx, inv.ID, database.InvitationStatusRejected, true)
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
		return errs.Dependency(err, "rejecting partner invitation")
	}

	s.notifier.Send(ctx, inv.SenderID, notify.TypeRejection,
		"Partner Invitation Declined",
		fmt.Sprintf("%s has declined your invitation.", responder.FullName),
		"")

	s.log.Info().Str("code", inv.Code).Msg("partner invitation rejected")
	return nil
}
