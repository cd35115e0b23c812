// Package rsvp is the RSVP ledger: exactly one row per (event, guest)
// pair, created or updated idempotently, with the headcount derived from
// the submitted counts.
package rsvp

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/headcount"
)

type Service struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log.With().Str("component", "rsvp").Logger()}
}

// SubmitInput carries an RSVP submission. Counts may accompany any
// status; they only contribute to aggregation when status is attending.
type SubmitInput struct {
	Status              string
	AdultsCount         int
	TeensCount          int
	ChildrenCount       int
	DietaryPreferences  []string
	SpecialRequirements string
	Notes               string
}

func validStatus(status string) bool {
	switch status {
	case database.RSVPStatusAttending, database.RSVPStatusNotAttending,
		database.RSVPStatusMaybe, database.RSVPStatusPending:
		return true
	}
	return false
}

// guestStatusFor maps an RSVP status to the guest lifecycle status it
// implies. A pending RSVP is not a response and maps to nothing.
func guestStatusFor(status string) string {
	switch status {
	case database.RSVPStatusAttending:
		return database.GuestStatusAccepted
	case database.RSVPStatusNotAttending:
		return database.GuestStatusDeclined
	case database.RSVPStatusMaybe:
		return database.GuestStatusMaybe
	}
	return ""
}

// SubmitOrUpdate records a guest's RSVP for an event. Calling it twice
// with identical inputs leaves one row equal to a single call's result.
// The guest must belong to the same wedding as the event.
func (s *Service) SubmitOrUpdate(ctx context.Context, eventID, guestID string, in SubmitInput) (*database.RSVP, error) {
	if !validStatus(in.Status) {
		return nil, errs.Validation("unknown rsvp status %q", in.Status)
	}
	if in.AdultsCount < 0 || in.TeensCount < 0 || in.ChildrenCount < 0 {
		return nil, errs.Validation("counts cannot be negative")
	}

	event, err := s.db.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errs.Dependency(err, "loading event")
	}
	if event == nil {
		return nil, errs.NotFound("event %s not found", eventID)
	}

	guest, err := s.db.GetGuestByID(ctx, guestID)
	if err != nil {
		return nil, errs.Dependency(err, "loading guest")
	}
	if guest == nil {
		return nil, errs.NotFound("guest %s not found", guestID)
	}
	if guest.WeddingID != event.WeddingID {
		return nil, errs.NotAuthorized("guest does not belong to this event's wedding")
	}

	now := time.Now().UTC()
	r := &database.RSVP{
		ID:                  uuid.New().String(),
		EventID:             eventID,
		GuestID:             guestID,
		WeddingID:           event.WeddingID,
		Status:              in.Status,
		AdultsCount:         in.AdultsCount,
		TeensCount:          in.TeensCount,
		ChildrenCount:       in.ChildrenCount,
		CalculatedHeadcount: headcount.Compute(in.AdultsCount, in.TeensCount, in.ChildrenCount),
		DietaryPreferences:  in.DietaryPreferences,
		SubmittedAt:         sql.NullTime{Time: now, Valid: true},
		CreatedAt:           now,
	}
	if in.SpecialRequirements != "" {
		r.SpecialRequirements = sql.NullString{String: in.SpecialRequirements, Valid: true}
	}
	if in.Notes != "" {
		r.RSVPNotes = sql.NullString{String: in.Notes, Valid: true}
	}

	if err := s.db.UpsertRSVP(ctx, r); err != nil {
		return nil, errs.Dependency(err, "upserting rsvp")
	}

	// The insert may have collapsed into an update of the existing row;
	// re-read so callers see the stored identity.
	stored, err := s.db.GetRSVP(ctx, eventID, guestID)
	if err != nil {
		return nil, errs.Dependency(err, "reloading rsvp")
	}

	// A non-pending response moves the guest out of the invited state so
	// dashboards count them under their answer.
	if gs := guestStatusFor(in.Status); gs != "" {
		if err := s.db.UpdateGuestStatus(ctx, guestID, gs); err != nil {
			return nil, errs.Dependency(err, "updating guest status")
		}
	}

	s.log.Info().
		Str("event_id", eventID).
		Str("guest_id", guestID).
		Str("status", in.Status).
		Float64("headcount", stored.CalculatedHeadcount).
		Msg("rsvp recorded")

	return stored, nil
}

// Get returns the stored RSVP for an (event, guest) pair, or a NotFound
// error when the guest has not responded.
func (s *Service) Get(ctx context.Context, eventID, guestID string) (*database.RSVP, error) {
	r, err := s.db.GetRSVP(ctx, eventID, guestID)
	if err != nil {
		return nil, errs.Dependency(err, "loading rsvp")
	}
	if r == nil {
		return nil, errs.NotFound("no rsvp for event %s and guest %s", eventID, guestID)
	}
	return r, nil
}
