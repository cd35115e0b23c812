// Package registry manages guest records within a wedding: inviting,
// updating, removing and listing them. RSVP rows are created lazily on
// first response, never here.
package registry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/utils"
)

type Service struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log.With().Str("component", "registry").Logger()}
}

// InviteGuestInput carries the invite form fields. Side is restricted to
// groom or bride here; "both" exists in storage but is never produced by
// the invite path.
type InviteGuestInput struct {
	FullName            string
	Email               string
	Phone               string
	Side                string
	Role                string
	CanInviteOthers     bool
	PlusOneAllowed      bool
	PlusOneName         string
	IsVIP               bool
	Under18             bool
	Age                 int
	DietaryPreferences  []string
	SpecialRequirements string
}

// GuestPatch holds the fields UpdateGuest may change. Nil pointers leave
// the stored value untouched. Status and invitation_sent_at are not
// patchable; they move only through the invite and RSVP paths.
type GuestPatch struct {
	FullName            *string
	Email               *string
	Phone               *string
	Side                *string
	Role                *string
	CanInviteOthers     *bool
	PlusOneAllowed      *bool
	PlusOneName         *string
	IsVIP               *bool
	Under18             *bool
	Age                 *int
	DietaryPreferences  []string
	SpecialRequirements *string
}

func validRole(role string) bool {
	for _, r := range database.GuestRoles {
		if r == role {
			return true
		}
	}
	return false
}

// InviteGuest creates a guest with status invited and a stamped
// invitation_sent_at.
func (s *Service) InviteGuest(ctx context.Context, callerID, weddingID string, in InviteGuestInput) (*database.Guest, error) {
	if len(strings.TrimSpace(in.FullName)) < 3 {
		return nil, errs.Validation("full name must be at least 3 characters")
	}
	if in.Side != database.SideGroom && in.Side != database.SideBride {
		return nil, errs.Validation("side must be groom or bride")
	}
	if !validRole(in.Role) {
		return nil, errs.Validation("unknown role %q", in.Role)
	}

	wedding, err := s.db.GetWeddingByID(ctx, weddingID)
	if err != nil {
		return nil, errs.Dependency(err, "loading wedding")
	}
	if wedding == nil {
		return nil, errs.NotFound("wedding %s not found", weddingID)
	}

	now := time.Now().UTC()
	g := &database.Guest{
		ID:                 uuid.New().String(),
		WeddingID:          weddingID,
		FullName:           strings.TrimSpace(in.FullName),
		Side:               in.Side,
		Role:               in.Role,
		InvitedBy:          callerID,
		CanInviteOthers:    in.CanInviteOthers,
		PlusOneAllowed:     in.PlusOneAllowed,
		IsVIP:              in.IsVIP,
		Under18:            in.Under18,
		DietaryPreferences: in.DietaryPreferences,
		Status:             database.GuestStatusInvited,
		InvitationSentAt:   sql.NullTime{Time: now, Valid: true},
		CreatedAt:          now,
	}
	if in.Email != "" {
		g.Email = sql.NullString{String: strings.ToLower(strings.TrimSpace(in.Email)), Valid: true}
	}
	if in.Phone != "" {
		normalized, err := utils.NormalizePhoneNumber(in.Phone)
		if err != nil {
			return nil, errs.Validation("invalid phone number %q", in.Phone)
		}
		g.Phone = sql.NullString{String: normalized, Valid: true}
	}
	if in.PlusOneName != "" {
		g.PlusOneName = sql.NullString{String: in.PlusOneName, Valid: true}
	}
	if in.Age > 0 {
		g.Age = sql.NullInt64{Int64: int64(in.Age), Valid: true}
	}
	if in.SpecialRequirements != "" {
		g.SpecialRequirements = sql.NullString{String: in.SpecialRequirements, Valid: true}
	}

	if err := s.db.InsertGuest(ctx, g); err != nil {
		return nil, errs.Dependency(err, "inserting guest")
	}

	s.log.Info().Str("guest_id", g.ID).Str("wedding_id", weddingID).Msg("guest invited")
	return g, nil
}

// UpdateGuest applies a partial update to a guest.
func (s *Service) UpdateGuest(ctx context.Context, guestID string, patch GuestPatch) (*database.Guest, error) {
	g, err := s.db.GetGuestByID(ctx, guestID)
	if err != nil {
		return nil, errs.Dependency(err, "loading guest")
	}
	if g == nil {
		return nil, errs.NotFound("guest %s not found", guestID)
	}

	if patch.FullName != nil {
		if len(strings.TrimSpace(*patch.FullName)) < 3 {
			return nil, errs.Validation("full name must be at least 3 characters")
		}
		g.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Email != nil {
		g.Email = nullString(strings.ToLower(strings.TrimSpace(*patch.Email)))
	}
	if patch.Phone != nil {
		if *patch.Phone == "" {
			g.Phone = sql.NullString{}
		} else {
			normalized, err := utils.NormalizePhoneNumber(*patch.Phone)
			if err != nil {
				return nil, errs.Validation("invalid phone number %q", *patch.Phone)
			}
			g.Phone = sql.NullString{String: normalized, Valid: true}
		}
	}
	if patch.Side != nil {
		// Direct updates may set "both"; only the invite form is limited
		// to groom/bride.
		if *patch.Side != database.SideGroom && *patch.Side != database.SideBride && *patch.Side != database.SideBoth {
			return nil, errs.Validation("side must be groom, bride or both")
		}
		g.Side = *patch.Side
	}
	if patch.Role != nil {
		if !validRole(*patch.Role) {
			return nil, errs.Validation("unknown role %q", *patch.Role)
		}
		g.Role = *patch.Role
	}
	if patch.CanInviteOthers != nil {
		g.CanInviteOthers = *patch.CanInviteOthers
	}
	if patch.PlusOneAllowed != nil {
		g.PlusOneAllowed = *patch.PlusOneAllowed
	}
	if patch.PlusOneName != nil {
		g.PlusOneName = nullString(*patch.PlusOneName)
	}
	if patch.IsVIP != nil {
		g.IsVIP = *patch.IsVIP
	}
	if patch.Under18 != nil {
		g.Under18 = *patch.Under18
	}
	if patch.Age != nil {
		if *patch.Age < 0 {
			return nil, errs.Validation("age cannot be negative")
		}
		g.Age = sql.NullInt64{Int64: int64(*patch.Age), Valid: *patch.Age > 0}
	}
	if patch.DietaryPreferences != nil {
		g.DietaryPreferences = patch.DietaryPreferences
	}
	if patch.SpecialRequirements != nil {
		g.SpecialRequirements = nullString(*patch.SpecialRequirements)
	}

	if err := s.db.UpdateGuest(ctx, g); err != nil {
		return nil, errs.Dependency(err, "updating guest")
	}
	return g, nil
}

// RemoveGuest hard-deletes a guest together with the guest's RSVP rows.
func (s *Service) RemoveGuest(ctx context.Context, guestID string) error {
	g, err := s.db.GetGuestByID(ctx, guestID)
	if err != nil {
		return errs.Dependency(err, "loading guest")
	}
	if g == nil {
		return errs.NotFound("guest %s not found", guestID)
	}

	if err := s.db.DeleteGuest(ctx, guestID); err != nil {
		return errs.Dependency(err, "deleting guest")
	}

	s.log.Info().Str("guest_id", guestID).Str("wedding_id", g.WeddingID).Msg("guest removed")
	return nil
}

// ListGuests returns a wedding's guests matching the filter, newest first.
func (s *Service) ListGuests(ctx context.Context, weddingID string, filter database.GuestFilter) ([]*database.Guest, error) {
	guests, err := s.db.ListGuests(ctx, weddingID, filter)
	if err != nil {
		return nil, errs.Dependency(err, "listing guests")
	}
	return guests, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
