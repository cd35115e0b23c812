// Package wedding creates weddings together with their seven canonical
// auto-generated events in one transaction, and manages custom events.
// Auto-generated events can be edited but never deleted.
package wedding

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/notify"
)

type Service struct {
	db       *database.DB
	notifier *notify.Service
	log      zerolog.Logger
}

func New(db *database.DB, notifier *notify.Service, log zerolog.Logger) *Service {
	return &Service{db: db, notifier: notifier, log: log.With().Str("component", "wedding").Logger()}
}

// CreateWeddingInput carries the wedding creation form.
type CreateWeddingInput struct {
	Name        string
	Date        time.Time
	Venue       string
	City        string
	Mode        string
	BudgetLimit float64
	GuestLimit  int
}

// CreateWeddingResult mirrors the composite operation's result shape.
type CreateWeddingResult struct {
	Wedding       *database.Wedding
	EventsCreated int
}

// Offsets of the canonical events relative to the wedding date.
var canonicalOffsets = map[string]time.Duration{
	"engagement":    -60 * 24 * time.Hour,
	"save_the_date": -45 * 24 * time.Hour,
	"haldi":         -2 * 24 * time.Hour,
	"mehendi":       -2 * 24 * time.Hour,
	"sangeet":       -1 * 24 * time.Hour,
	"wedding":       0,
	"reception":     24 * time.Hour,
}

func canonicalName(eventType string) string {
	words := strings.Split(eventType, "_")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// CreateWeddingWithEvents atomically creates a wedding and its seven
// canonical events. The caller must belong to a couple.
func (s *Service) CreateWeddingWithEvents(ctx context.Context, callerID string, in CreateWeddingInput) (*CreateWeddingResult, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errs.Validation("wedding name is required")
	}
	if in.Date.IsZero() {
		return nil, errs.Validation("wedding date is required")
	}
	if strings.TrimSpace(in.Venue) == "" || strings.TrimSpace(in.City) == "" {
		return nil, errs.Validation("venue and city are required")
	}
	if in.Mode != "combined" && in.Mode != "separate" {
		return nil, errs.Validation("mode must be combined or separate")
	}
	if in.GuestLimit <= 0 {
		in.GuestLimit = 500
	}

	couple, err := s.db.GetCoupleByUser(ctx, callerID)
	if err != nil {
		return nil, errs.Dependency(err, "loading couple")
	}
	if couple == nil {
		return nil, errs.NotAuthorized("only a connected partner can create a wedding")
	}

	existing, err := s.db.GetWeddingByCouple(ctx, couple.ID)
	if err != nil {
		return nil, errs.Dependency(err, "checking existing wedding")
	}
	if existing != nil {
		return nil, errs.Conflict("this couple already has a wedding")
	}

	now := time.Now().UTC()
	w := &database.Wedding{
		ID:         uuid.New().String(),
		CoupleID:   couple.ID,
		Name:       strings.TrimSpace(in.Name),
		Date:       in.Date,
		Venue:      strings.TrimSpace(in.Venue),
		City:       strings.TrimSpace(in.City),
		Mode:       in.Mode,
		GuestLimit: in.GuestLimit,
		Status:     "planning",
		CreatedAt:  now,
	}
	if in.BudgetLimit > 0 {
		w.BudgetLimit = sql.NullFloat64{Float64: in.BudgetLimit, Valid: true}
	}

	created := 0
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.db.InsertWeddingTx(ctx, tx, w); err != nil {
			return err
		}
		for _, eventType := range database.CanonicalEventTypes {
			e := &database.Event{
				ID:            uuid.New().String(),
				WeddingID:     w.ID,
				Name:          canonicalName(eventType),
				EventType:     eventType,
				Date:          in.Date.Add(canonicalOffsets[eventType]),
				Venue:         w.Venue,
				City:          w.City,
				AutoGenerated: true,
				CreatedBy:     sql.NullString{String: callerID, Valid: true},
				CreatedAt:     now,
			}
			if err := s.db.InsertEventTx(ctx, tx, e); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return nil, errs.Dependency(err, "creating wedding with events")
	}

	title := "Wedding Created!"
	message := "Your wedding " + w.Name + " has been created with the full ceremony schedule."
	s.notifier.Send(ctx, couple.User1ID, notify.TypeWeddingCreated, title, message, "/dashboard")
	s.notifier.Send(ctx, couple.User2ID, notify.TypeWeddingCreated, title, message, "/dashboard")

	s.log.Info().Str("wedding_id", w.ID).Int("events_created", created).Msg("wedding created")
	return &CreateWeddingResult{Wedding: w, EventsCreated: created}, nil
}

// EventInput carries the editable event fields.
type EventInput struct {
	Name         string
	Description  string
	Date         time.Time
	StartTime    string
	EndTime      string
	Venue        string
	City         string
	DressCode    string
	RSVPDeadline time.Time
}

// CreateCustomEvent adds a custom event to a wedding.
func (s *Service) CreateCustomEvent(ctx context.Context, callerID, weddingID string, in EventInput) (*database.Event, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errs.Validation("event name is required")
	}
	if in.Date.IsZero() {
		return nil, errs.Validation("event date is required")
	}

	wedding, err := s.db.GetWeddingByID(ctx, weddingID)
	if err != nil {
		return nil, errs.Dependency(err, "loading wedding")
	}
	if wedding == nil {
		return nil, errs.NotFound("wedding %s not found", weddingID)
	}

	e := &database.Event{
		ID:            uuid.New().String(),
		WeddingID:     weddingID,
		Name:          strings.TrimSpace(in.Name),
		EventType:     database.EventTypeCustom,
		Date:          in.Date,
		Venue:         in.Venue,
		City:          in.City,
		AutoGenerated: false,
		CreatedBy:     sql.NullString{String: callerID, Valid: true},
		CreatedAt:     time.Now().UTC(),
	}
	applyEventInput(e, in)

	if err := s.db.InsertEvent(ctx, e); err != nil {
		return nil, errs.Dependency(err, "inserting event")
	}
	return e, nil
}

// UpdateEvent edits an event. Both custom and auto-generated events are
// editable.
func (s *Service) UpdateEvent(ctx context.Context, eventID string, in EventInput) (*database.Event, error) {
	e, err := s.db.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errs.Dependency(err, "loading event")
	}
	if e == nil {
		return nil, errs.NotFound("event %s not found", eventID)
	}

	if in.Name != "" {
		e.Name = strings.TrimSpace(in.Name)
	}
	if !in.Date.IsZero() {
		e.Date = in.Date
	}
	if in.Venue != "" {
		e.Venue = in.Venue
	}
	if in.City != "" {
		e.City = in.City
	}
	applyEventInput(e, in)

	if err := s.db.UpdateEvent(ctx, e); err != nil {
		return nil, errs.Dependency(err, "updating event")
	}
	return e, nil
}

// DeleteEvent removes a custom event. Auto-generated events can only be
// edited.
func (s *Service) DeleteEvent(ctx context.Context, eventID string) error {
	e, err := s.db.GetEventByID(ctx, eventID)
	if err != nil {
		return errs.Dependency(err, "loading event")
	}
	if e == nil {
		return errs.NotFound("event %s not found", eventID)
	}
	if e.AutoGenerated {
		return errs.Validation("auto-generated events cannot be deleted")
	}

	if err := s.db.DeleteEvent(ctx, eventID); err != nil {
		return errs.Dependency(err, "deleting event")
	}
	return nil
}

// ListEvents returns a wedding's events in date order.
func (s *Service) ListEvents(ctx context.Context, weddingID string) ([]*database.Event, error) {
	events, err := s.db.ListEventsByWedding(ctx, weddingID)
	if err != nil {
		return nil, errs.Dependency(err, "listing events")
	}
	return events, nil
}

func applyEventInput(e *database.Event, in EventInput) {
	if in.Description != "" {
		e.Description = sql.NullString{String: in.Description, Valid: true}
	}
	if in.StartTime != "" {
		e.StartTime = sql.NullString{String: in.StartTime, Valid: true}
	}
	if in.EndTime != "" {
		e.EndTime = sql.NullString{String: in.EndTime, Valid: true}
	}
	if in.DressCode != "" {
		e.DressCode = sql.NullString{String: in.DressCode, Valid: true}
	}
	if !in.RSVPDeadline.IsZero() {
		e.RSVPDeadline = sql.NullTime{Time: in.RSVPDeadline, Valid: true}
	}
}
