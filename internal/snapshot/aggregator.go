// Package snapshot rolls RSVP ledger rows up into immutable, timestamped
// headcount snapshots per (event, side). Recomputation always appends a
// new row; the current value is the latest by snapshot_date. Computation
// is pull-based: a dashboard view or explicit refresh triggers it, and
// numbers may be stale between views.
package snapshot

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

// Dietary tags counted per snapshot, matched case-insensitively.
const (
	TagVegetarian = "vegetarian"
	TagVegan      = "vegan"
	TagHalal      = "halal"
)

type Service struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log.With().Str("component", "snapshot").Logger()}
}

// Aggregate computes snapshot values from a consistent source read. Pure;
// exported for direct testing.
func Aggregate(src *database.SnapshotSource, side string) *database.HeadcountSnapshot {
	now := time.Now().UTC()
	s := &database.HeadcountSnapshot{
		ID:           uuid.New().String(),
		EventID:      src.Event.ID,
		WeddingID:    src.Event.WeddingID,
		SnapshotDate: now,
		CreatedAt:    now,
	}
	if side != "" {
		s.Side = sql.NullString{String: side, Valid: true}
	}

	// Index RSVPs by guest so invited-but-silent guests read as pending.
	byGuest := make(map[string]*database.RSVP, len(src.RSVPs))
	for _, r := range src.RSVPs {
		byGuest[r.GuestID] = r
	}

	s.TotalInvited = len(src.Guests)

	for _, g := range src.Guests {
		r, ok := byGuest[g.ID]
		if !ok {
			s.TotalPending++
			continue
		}

		switch r.Status {
		case database.RSVPStatusAttending:
			s.TotalAttending++
		case database.RSVPStatusNotAttending:
			s.TotalDeclined++
		case database.RSVPStatusMaybe:
			s.TotalMaybe++
		default:
			s.TotalPending++
		}

		// Counts and dietary tags contribute only for attending guests;
		// stored counts on a declined RSVP are ignored.
		if r.Status != database.RSVPStatusAttending {
			continue
		}

		s.AdultsCount += r.AdultsCount
		s.TeensCount += r.TeensCount
		s.ChildrenCount += r.ChildrenCount

		prefs := r.DietaryPreferences
		if len(prefs) == 0 {
			prefs = g.DietaryPreferences
		}
		if prefs.Contains(TagVegetarian) {
			s.VegetarianCount++
		}
		if prefs.Contains(TagVegan) {
			s.VeganCount++
		}
		if prefs.Contains(TagHalal) {
			s.HalalCount++
		}
	}

	s.CalculatedHeadcount = headcount.Compute(s.AdultsCount, s.TeensCount, s.ChildrenCount)
	return s
}

// Compute produces and persists a new snapshot for an event, optionally
// filtered to one side ("" aggregates every guest).
func (s *Service) Compute(ctx context.Context, eventID, side string) (*database.HeadcountSnapshot, error) {
	if side != "" && side != database.SideGroom && side != database.SideBride {
		return nil, errs.Validation("side must be groom or bride")
	}

	src, err := s.db.ReadSnapshotSource(ctx, eventID, side)
	if err != nil {
		return nil, errs.Dependency(err, "reading snapshot source")
	}
	if src.Event == nil {
		return nil, errs.NotFound("event %s not found", eventID)
	}

	snap := Aggregate(src, side)
	if err := s.db.InsertSnapshot(ctx, snap); err != nil {
		return nil, errs.Dependency(err, "inserting snapshot")
	}

	s.log.Info().
		Str("event_id", eventID).
		Str("side", side).
		Int("attending", snap.TotalAttending).
		Float64("headcount", snap.CalculatedHeadcount).
		Msg("snapshot computed")

	return snap, nil
}

// Latest returns the most recent snapshot for an (event, side) key, or a
// NotFound error when none has been computed.
func (s *Service) Latest(ctx context.Context, eventID, side string) (*database.HeadcountSnapshot, error) {
	snap, err := s.db.LatestSnapshot(ctx, eventID, side)
	if err != nil {
		return nil, errs.Dependency(err, "loading latest snapshot")
	}
	if snap == nil {
		return nil, errs.NotFound("no snapshot for event %s", eventID)
	}
	return snap, nil
}
