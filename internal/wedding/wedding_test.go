package wedding

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
	"github.com/emowed/emowed-server/internal/notify"
)

func newTestService(t *testing.T) (*Service, *database.DB) {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return New(db, notify.New(db, zerolog.Nop()), zerolog.Nop()), db
}

func seedCouple(t *testing.T, db *database.DB) (*database.Couple, *database.User) {
	t.Helper()
	ctx := context.Background()

	u1, err := db.CreateUser(ctx, "asha@example.com", "Asha Rao", "")
	require.NoError(t, err)
	u2, err := db.CreateUser(ctx, "dev@example.com", "Dev Mehta", "")
	require.NoError(t, err)

	var couple *database.Couple
	require.NoError(t, db.WithTx(ctx, func(tx *sqlx.Tx) error {
		c, err := db.CreateCoupleTx(ctx, tx, u1.ID, u2.ID)
		couple = c
		return err
	}))
	return couple, u1
}

func validInput(date time.Time) CreateWeddingInput {
	return CreateWeddingInput{
		Name:  "Asha & Dev",
		Date:  date,
		Venue: "Lakeview Gardens",
		City:  "Mumbai",
		Mode:  "combined",
	}
}

func TestCreateWeddingWithEvents(t *testing.T) {
	svc, db := newTestService(t)
	_, owner := seedCouple(t, db)
	ctx := context.Background()

	date := time.Date(2027, 2, 14, 0, 0, 0, 0, time.UTC)
	result, err := svc.CreateWeddingWithEvents(ctx, owner.ID, validInput(date))
	require.NoError(t, err)
	require.Equal(t, 7, result.EventsCreated)
	require.Equal(t, 500, result.Wedding.GuestLimit)

	events, err := db.ListEventsByWedding(ctx, result.Wedding.ID)
	require.NoError(t, err)
	require.Len(t, events, 7)

	byType := make(map[string]*database.Event, len(events))
	for _, e := range events {
		require.True(t, e.AutoGenerated)
		byType[e.EventType] = e
	}

	// Canonical schedule hangs off the wedding date.
	wantDates := map[string]time.Time{
		"engagement":    date.AddDate(0, 0, -60),
		"save_the_date": date.AddDate(0, 0, -45),
		"haldi":         date.AddDate(0, 0, -2),
		"mehendi":       date.AddDate(0, 0, -2),
		"sangeet":       date.AddDate(0, 0, -1),
		"wedding":       date,
		"reception":     date.AddDate(0, 0, 1),
	}
	for eventType, want := range wantDates {
		require.True(t, byType[eventType].Date.Equal(want),
			"%s: got %v, want %v", eventType, byType[eventType].Date, want)
	}

	require.Equal(t, "Save The Date", byType["save_the_date"].Name)

	// Both partners get the creation notification.
	notifications, err := db.ListNotificationsByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
}

func TestCreateWeddingRequiresCouple(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	single, err := db.CreateUser(ctx, "solo@example.com", "Solo Singh", "")
	require.NoError(t, err)

	_, err = svc.CreateWeddingWithEvents(ctx, single.ID, validInput(time.Now().Add(24*time.Hour)))
	require.True(t, errs.IsNotAuthorized(err))
}

func TestCreateWeddingOncePerCouple(t *testing.T) {
	svc, db := newTestService(t)
	_, owner := seedCouple(t, db)
	ctx := context.Background()

	_, err := svc.CreateWeddingWithEvents(ctx, owner.ID, validInput(time.Now().Add(24*time.Hour)))
	require.NoError(t, err)

	_, err = svc.CreateWeddingWithEvents(ctx, owner.ID, validInput(time.Now().Add(48*time.Hour)))
	require.True(t, errs.IsConflict(err))
}

func TestCreateWeddingValidation(t *testing.T) {
	svc, db := newTestService(t)
	_, owner := seedCouple(t, db)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateWeddingInput)
	}{
		{"missing name", func(in *CreateWeddingInput) { in.Name = " " }},
		{"missing date", func(in *CreateWeddingInput) { in.Date = time.Time{} }},
		{"missing venue", func(in *CreateWeddingInput) { in.Venue = "" }},
		{"bad mode", func(in *CreateWeddingInput) { in.Mode = "hybrid" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(time.Now().Add(24 * time.Hour))
			tt.mutate(&in)
			_, err := svc.CreateWeddingWithEvents(ctx, owner.ID, in)
			require.True(t, errs.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCustomEventLifecycle(t *testing.T) {
	svc, db := newTestService(t)
	_, owner := seedCouple(t, db)
	ctx := context.Background()

	result, err := svc.CreateWeddingWithEvents(ctx, owner.ID, validInput(time.Now().Add(90*24*time.Hour)))
	require.NoError(t, err)

	e, err := svc.CreateCustomEvent(ctx, owner.ID, result.Wedding.ID, EventInput{
		Name:      "Cocktail Night",
		Date:      result.Wedding.Date.AddDate(0, 0, -3),
		Venue:     "Sky Bar",
		City:      "Mumbai",
		DressCode: "cocktail",
	})
	require.NoError(t, err)
	require.Equal(t, database.EventTypeCustom, e.EventType)
	require.False(t, e.AutoGenerated)

	updated, err := svc.UpdateEvent(ctx, e.ID, EventInput{Name: "Cocktail Evening", StartTime: "19:00"})
	require.NoError(t, err)
	require.Equal(t, "Cocktail Evening", updated.Name)
	require.Equal(t, "19:00", updated.StartTime.String)

	require.NoError(t, svc.DeleteEvent(ctx, e.ID))

	gone, err := db.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestAutoGeneratedEventsCannotBeDeleted(t *testing.T) {
	svc, db := newTestService(t)
	_, owner := seedCouple(t, db)
	ctx := context.Background()

	result, err := svc.CreateWeddingWithEvents(ctx, owner.ID, validInput(time.Now().Add(90*24*time.Hour)))
	require.NoError(t, err)

	events, err := db.ListEventsByWedding(ctx, result.Wedding.ID)
	require.NoError(t, err)

	err = svc.DeleteEvent(ctx, events[0].ID)
	require.True(t, errs.IsValidation(err))

	// Still editable.
	updated, err := svc.UpdateEvent(ctx, events[0].ID, EventInput{Venue: "New Venue"})
	require.NoError(t, err)
	require.Equal(t, "New Venue", updated.Venue)
}
