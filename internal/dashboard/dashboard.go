// Package dashboard composes the engaged-dashboard read model from the
// couple, wedding, guest registry and latest snapshots. The whole read is
// idempotent, so it runs under a bounded timeout with a single retry;
// nothing here writes.
package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
)

const (
	readTimeout   = 5 * time.Second
	retryInterval = 200 * time.Millisecond
)

type Service struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log.With().Str("component", "dashboard").Logger()}
}

// EventSummary is one event with its latest all-sides snapshot, when one
// has been computed.
type EventSummary struct {
	Event    *database.Event
	Snapshot *database.HeadcountSnapshot
}

// Data is the composite read model for an engaged user's dashboard.
type Data struct {
	Couple           *database.Couple
	Partner          *database.User
	Wedding          *database.Wedding
	DaysUntilWedding int
	GuestCounts      map[string]int
	Events           []*EventSummary
}

// Get loads the dashboard for a user. Fails with NotFound when the user
// has no couple yet.
func (s *Service) Get(ctx context.Context, userID string) (*Data, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var data *Data
	err := retry.Do(ctx, retry.WithMaxRetries(1, retry.NewConstant(retryInterval)), func(ctx context.Context) error {
		d, err := s.load(ctx, userID)
		if err != nil {
			if errs.IsDependency(err) {
				// Store hiccups on a pure read are worth one more try.
				return retry.RetryableError(err)
			}
			return err
		}
		data = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) load(ctx context.Context, userID string) (*Data, error) {
	couple, err := s.db.GetCoupleByUser(ctx, userID)
	if err != nil {
		return nil, errs.Dependency(err, "loading couple")
	}
	if couple == nil {
		return nil, errs.NotFound("user %s is not part of a couple", userID)
	}

	partnerID := couple.User1ID
	if partnerID == userID {
		partnerID = couple.User2ID
	}
	partner, err := s.db.GetUserByID(ctx, partnerID)
	if err != nil {
		return nil, errs.Dependency(err, "loading partner")
	}

	data := &Data{Couple: couple, Partner: partner}

	wedding, err := s.db.GetWeddingByCouple(ctx, couple.ID)
	if err != nil {
		return nil, errs.Dependency(err, "loading wedding")
	}
	if wedding == nil {
		return data, nil
	}
	data.Wedding = wedding
	if until := time.Until(wedding.Date); until > 0 {
		data.DaysUntilWedding = int(until.Hours() / 24)
	}

	counts, err := s.db.CountGuestsByStatus(ctx, wedding.ID)
	if err != nil {
		return nil, errs.Dependency(err, "counting guests")
	}
	data.GuestCounts = counts

	events, err := s.db.ListEventsByWedding(ctx, wedding.ID)
	if err != nil {
		return nil, errs.Dependency(err, "listing events")
	}
	for _, e := range events {
		snap, err := s.db.LatestSnapshot(ctx, e.ID, "")
		if err != nil {
			return nil, errs.Dependency(err, "loading latest snapshot")
		}
		data.Events = append(data.Events, &EventSummary{Event: e, Snapshot: snap})
	}

	return data, nil
}
