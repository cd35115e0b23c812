package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestGetRequiresCouple(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, zerolog.Nop())
	ctx := context.Background()

	single, err := db.CreateUser(ctx, "solo@example.com", "Solo Singh", "")
	require.NoError(t, err)

	_, err = svc.Get(ctx, single.ID)
	require.True(t, errs.IsNotFound(err))
}

func TestGetComposesDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, zerolog.Nop())
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

	// Before the wedding exists, the dashboard still shows the couple.
	data, err := svc.Get(ctx, u1.ID)
	require.NoError(t, err)
	require.Equal(t, couple.ID, data.Couple.ID)
	require.Equal(t, u2.ID, data.Partner.ID)
	require.Nil(t, data.Wedding)

	now := time.Now().UTC()
	w := &database.Wedding{
		ID: uuid.New().String(), CoupleID: couple.ID, Name: "Asha & Dev",
		Date: now.Add(30 * 24 * time.Hour), Venue: "Lakeview Gardens", City: "Mumbai",
		Mode: "combined", GuestLimit: 500, Status: "planning", CreatedAt: now,
	}
	require.NoError(t, db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return db.InsertWeddingTx(ctx, tx, w)
	}))

	e := &database.Event{
		ID: uuid.New().String(), WeddingID: w.ID, Name: "Reception",
		EventType: "reception", Date: w.Date.Add(24 * time.Hour),
		Venue: w.Venue, City: w.City, CreatedAt: now,
	}
	require.NoError(t, db.InsertEvent(ctx, e))

	g := &database.Guest{
		ID: uuid.New().String(), WeddingID: w.ID, FullName: "Priya Sharma",
		Side: database.SideBride, Role: "cousin", InvitedBy: u1.ID,
		Status: database.GuestStatusInvited, CreatedAt: now,
	}
	require.NoError(t, db.InsertGuest(ctx, g))

	data, err = svc.Get(ctx, u2.ID)
	require.NoError(t, err)
	require.Equal(t, u1.ID, data.Partner.ID, "partner is resolved from the caller's side")
	require.NotNil(t, data.Wedding)
	require.InDelta(t, 29, data.DaysUntilWedding, 1)
	require.Equal(t, map[string]int{database.GuestStatusInvited: 1}, data.GuestCounts)
	require.Len(t, data.Events, 1)
	require.Nil(t, data.Events[0].Snapshot, "no snapshot computed yet")

	snap := &database.HeadcountSnapshot{
		ID: uuid.New().String(), EventID: e.ID, WeddingID: w.ID,
		TotalInvited: 1, TotalPending: 1, SnapshotDate: now, CreatedAt: now,
	}
	require.NoError(t, db.InsertSnapshot(ctx, snap))

	data, err = svc.Get(ctx, u1.ID)
	require.NoError(t, err)
	require.NotNil(t, data.Events[0].Snapshot)
	require.Equal(t, snap.ID, data.Events[0].Snapshot.ID)
}
