package registry

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

func seedWedding(t *testing.T, db *database.DB) (*database.Wedding, *database.User) {
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

	w := &database.Wedding{
		ID:         uuid.New().String(),
		CoupleID:   couple.ID,
		Name:       "Asha & Dev",
		Date:       time.Now().UTC().Add(90 * 24 * time.Hour),
		Venue:      "Lakeview Gardens",
		City:       "Mumbai",
		Mode:       "combined",
		GuestLimit: 500,
		Status:     "planning",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return db.InsertWeddingTx(ctx, tx, w)
	}))

	return w, u1
}

func TestInviteGuest(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, zerolog.Nop())
	w, owner := seedWedding(t, db)
	ctx := context.Background()

	g, err := svc.InviteGuest(ctx, owner.ID, w.ID, InviteGuestInput{
		FullName: "Priya Sharma",
		Email:    "  Priya@Example.COM ",
		Phone:    "9876543210",
		Side:     database.SideBride,
		Role:     "cousin",
	})
	require.NoError(t, err)

	require.Equal(t, database.GuestStatusInvited, g.Status)
	require.True(t, g.InvitationSentAt.Valid)
	require.Equal(t, "priya@example.com", g.Email.String)
	require.Equal(t, "+919876543210", g.Phone.String)
	require.Equal(t, owner.ID, g.InvitedBy)

	stored, err := db.GetGuestByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, g.FullName, stored.FullName)
}

func TestInviteGuestValidation(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, zerolog.Nop())
	w, owner := seedWedding(t, db)
	ctx := context.Background()

	tests := []struct {
		name  string
		input InviteGuestInput
	}{
		{"short name", InviteGuestInput{FullName: "Al", Side: database.SideGroom, Role: "friend"}},
		{"side both rejected on invite", InviteGuestInput{FullName: "Priya Sharma", Side: database.SideBoth, Role: "friend"}},
		{"unknown side", InviteGuestInput{FullName: "Priya Sharma", Side: "neither", Role: "friend"}},
		{"unknown role", InviteGuestInput{FullName: "Priya Sharma", Side: database.SideBride, Role: "plumber"}},
		{"bad phone", InviteGuestInput{FullName: "Priya Sharma", Side: database.SideBride, Role: "friend", Phone: "12"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.InviteGuest(ctx, owner.ID, w.ID, tt.input)
			require.True(t, errs.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	_, err := svc.InviteGuest(ctx, owner.ID, uuid.New().String(), InviteGuestInput{
		FullName: "Priya Sharma", Side: database.SideBride, Role: "friend",
	})
	require.True(t, errs.IsNotFound(err))
}

func TestUpdateGuestLeavesStatusAlone(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, zerolog.Nop())
	w, owner := seedWedding(t, db)
	ctx := context.Background()

	g, err := svc.InviteGuest(ctx, owner.ID, w.ID, InviteGuestInput{
		FullName: "Priya Sharma", Side: database.SideBride, Role: "cousin",
	})
	require.NoError(t, err)

	side := database.SideBoth
	vip := true
	updated, err := svc.UpdateGuest(ctx, g.ID, GuestPatch{
		Side:               &side,
		IsVIP:              &vip,
		DietaryPreferences: []string{"vegetarian"},
	})
	require.NoError(t, err)

	require.Equal(t, database.SideBoth, updated.Side)
	require.True(t, updated.IsVIP)
	require.Equal(t, database.GuestStatusInvited, updated.Status)
	require.Equal(t, g.InvitationSentAt.Time.Unix(), updated.InvitationSentAt.Time.Unix())
}

func TestRemoveGuestCascadesRSVPs(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, zerolog.Nop())
	w, owner := seedWedding(t, db)
	ctx := context.Background()

	g, err := svc.InviteGuest(ctx, owner.ID, w.ID, InviteGuestInput{
		FullName: "Priya Sharma", Side: database.SideBride, Role: "cousin",
	})
	require.NoError(t, err)

	e := &database.Event{
		ID:        uuid.New().String(),
		WeddingID: w.ID,
		Name:      "Sangeet",
		EventType: "sangeet",
		Date:      w.Date.Add(-24 * time.Hour),
		Venue:     w.Venue,
		City:      w.City,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.InsertEvent(ctx, e))

	r := &database.RSVP{
		ID:          uuid.New().String(),
		EventID:     e.ID,
		GuestID:     g.ID,
		WeddingID:   w.ID,
		Status:      database.RSVPStatusAttending,
		AdultsCount: 2,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.UpsertRSVP(ctx, r))

	require.NoError(t, svc.RemoveGuest(ctx, g.ID))

	gone, err := db.GetGuestByID(ctx, g.ID)
	require.NoError(t, err)
	require.Nil(t, gone)

	orphan, err := db.GetRSVP(ctx, e.ID, g.ID)
	require.NoError(t, err)
	require.Nil(t, orphan)
}

func TestListGuestsFilters(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, zerolog.Nop())
	w, owner := seedWedding(t, db)
	ctx := context.Background()

	_, err := svc.InviteGuest(ctx, owner.ID, w.ID, InviteGuestInput{
		FullName: "Priya Sharma", Side: database.SideBride, Role: "cousin",
	})
	require.NoError(t, err)
	g2, err := svc.InviteGuest(ctx, owner.ID, w.ID, InviteGuestInput{
		FullName: "Rahul Verma", Side: database.SideGroom, Role: "friend",
	})
	require.NoError(t, err)

	// A shared family friend belongs to both sides.
	side := database.SideBoth
	_, err = svc.UpdateGuest(ctx, g2.ID, GuestPatch{Side: &side})
	require.NoError(t, err)

	all, err := svc.ListGuests(ctx, w.ID, database.GuestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Side filters include guests marked "both".
	groomSide, err := svc.ListGuests(ctx, w.ID, database.GuestFilter{Side: database.SideGroom})
	require.NoError(t, err)
	require.Len(t, groomSide, 1)
	require.Equal(t, "Rahul Verma", groomSide[0].FullName)

	brideSide, err := svc.ListGuests(ctx, w.ID, database.GuestFilter{Side: database.SideBride})
	require.NoError(t, err)
	require.Len(t, brideSide, 2)

	found, err := svc.ListGuests(ctx, w.ID, database.GuestFilter{Search: "priya"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Priya Sharma", found[0].FullName)
}
