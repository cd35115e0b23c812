package invite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/errs"
)

func seedWedding(t *testing.T, db *database.DB) (*database.Wedding, *database.User) {
	t.Helper()
	ctx := context.Background()

	u1 := seedUser(t, db, "asha@example.com", "Asha Rao")
	u2 := seedUser(t, db, "dev@example.com", "Dev Mehta")

	var couple *database.Couple
	require.NoError(t, db.WithTx(ctx, func(tx *sqlx.Tx) error {
		c, err := db.CreateCoupleTx(ctx, tx, u1.ID, u2.ID)
		couple = c
		return err
	}))

	now := time.Now().UTC()
	w := &database.Wedding{
		ID: uuid.New().String(), CoupleID: couple.ID, Name: "Asha & Dev",
		Date: now.Add(90 * 24 * time.Hour), Venue: "Lakeview Gardens", City: "Mumbai",
		Mode: "combined", GuestLimit: 500, Status: "planning", CreatedAt: now,
	}
	require.NoError(t, db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return db.InsertWeddingTx(ctx, tx, w)
	}))

	return w, u1
}

func TestCreateGuestInvitation(t *testing.T) {
	svc, db := newTestService(t)
	w, owner := seedWedding(t, db)
	ctx := context.Background()

	inv, err := svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: "Priya@Example.com",
		ReceiverName:  "Priya Sharma",
		Role:          "cousin",
		Side:          database.SideBride,
	})
	require.NoError(t, err)
	require.Equal(t, database.InvitationStatusPending, inv.Status)
	require.Equal(t, "priya@example.com", inv.ReceiverEmail)
	require.WithinDuration(t, time.Now().UTC().Add(DefaultGuestTTL), inv.ExpiresAt, time.Minute)

	// One pending invitation per (wedding, email).
	_, err = svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: "priya@example.com",
		ReceiverName:  "Priya Sharma",
		Role:          "cousin",
		Side:          database.SideBride,
	})
	require.True(t, errs.IsConflict(err))
}

func TestCreateGuestInvitationValidation(t *testing.T) {
	svc, db := newTestService(t)
	w, owner := seedWedding(t, db)
	ctx := context.Background()

	_, err := svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: "priya@example.com", ReceiverName: "Pr", Role: "cousin", Side: database.SideBride,
	})
	require.True(t, errs.IsValidation(err))

	_, err = svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: "priya@example.com", ReceiverName: "Priya Sharma", Role: "cousin", Side: database.SideBoth,
	})
	require.True(t, errs.IsValidation(err))

	_, err = svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: "priya@example.com", ReceiverName: "Priya Sharma", Role: "plus-one", Side: database.SideBride,
	})
	require.True(t, errs.IsValidation(err))

	_, err = svc.CreateGuestInvitation(ctx, owner.ID, uuid.New().String(), GuestInvitationInput{
		ReceiverEmail: "priya@example.com", ReceiverName: "Priya Sharma", Role: "cousin", Side: database.SideBride,
	})
	require.True(t, errs.IsNotFound(err))
}

func TestAcceptGuestInvitation(t *testing.T) {
	svc, db := newTestService(t)
	w, owner := seedWedding(t, db)
	responder := seedUser(t, db, "priya@example.com", "Priya Sharma")
	ctx := context.Background()

	inv, err := svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: responder.Email,
		ReceiverName:  "Priya Sharma",
		Role:          "cousin",
		Side:          database.SideBride,
	})
	require.NoError(t, err)

	guest, err := svc.AcceptGuestInvitation(ctx, inv.ID, responder.ID)
	require.NoError(t, err)

	// The created guest is linked to the responding account and already
	// accepted.
	require.Equal(t, database.GuestStatusAccepted, guest.Status)
	require.Equal(t, responder.ID, guest.UserID.String)
	require.Equal(t, w.ID, guest.WeddingID)
	require.Equal(t, owner.ID, guest.InvitedBy)
	require.True(t, guest.RespondedAt.Valid)

	_, err = svc.AcceptGuestInvitation(ctx, inv.ID, responder.ID)
	require.True(t, errs.IsConflict(err))
}

func TestGuestInvitationEmailMismatch(t *testing.T) {
	svc, db := newTestService(t)
	w, owner := seedWedding(t, db)
	stranger := seedUser(t, db, "mallory@example.com", "Mallory K")
	ctx := context.Background()

	inv, err := svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: "priya@example.com",
		ReceiverName:  "Priya Sharma",
		Role:          "cousin",
		Side:          database.SideBride,
	})
	require.NoError(t, err)

	_, err = svc.AcceptGuestInvitation(ctx, inv.ID, stranger.ID)
	require.True(t, errs.IsNotAuthorized(err))

	err = svc.RejectGuestInvitation(ctx, inv.ID, stranger.ID)
	require.True(t, errs.IsNotAuthorized(err))
}

func TestRejectGuestInvitation(t *testing.T) {
	svc, db := newTestService(t)
	w, owner := seedWedding(t, db)
	responder := seedUser(t, db, "priya@example.com", "Priya Sharma")
	ctx := context.Background()

	inv, err := svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: responder.Email,
		ReceiverName:  "Priya Sharma",
		Role:          "cousin",
		Side:          database.SideBride,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RejectGuestInvitation(ctx, inv.ID, responder.ID))

	// No guest record is created on rejection.
	guests, err := db.ListGuests(ctx, w.ID, database.GuestFilter{})
	require.NoError(t, err)
	require.Empty(t, guests)

	err = svc.RejectGuestInvitation(ctx, inv.ID, responder.ID)
	require.True(t, errs.IsConflict(err))
}

func TestExpiredGuestInvitation(t *testing.T) {
	svc, db := newTestService(t)
	w, owner := seedWedding(t, db)
	responder := seedUser(t, db, "priya@example.com", "Priya Sharma")
	ctx := context.Background()

	now := time.Now().UTC()
	inv := &database.GuestInvitation{
		ID:            uuid.New().String(),
		WeddingID:     w.ID,
		SenderID:      owner.ID,
		ReceiverEmail: responder.Email,
		ReceiverName:  "Priya Sharma",
		Role:          "cousin",
		Side:          database.SideBride,
		Status:        database.InvitationStatusPending,
		CreatedAt:     now.Add(-8 * 24 * time.Hour),
		ExpiresAt:     now.Add(-24 * time.Hour),
	}
	require.NoError(t, db.InsertGuestInvitation(ctx, inv))

	_, err := svc.AcceptGuestInvitation(ctx, inv.ID, responder.ID)
	require.True(t, errs.IsExpired(err))
}

func TestReinviteAfterExpiryPinsNewestPending(t *testing.T) {
	svc, db := newTestService(t)
	w, owner := seedWedding(t, db)
	ctx := context.Background()

	// A pending invitation that ran out without a response stays in the
	// table; re-inviting the same email is allowed past its expiry.
	now := time.Now().UTC()
	stale := &database.GuestInvitation{
		ID:            uuid.New().String(),
		WeddingID:     w.ID,
		SenderID:      owner.ID,
		ReceiverEmail: "priya@example.com",
		ReceiverName:  "Priya Sharma",
		Role:          "cousin",
		Side:          database.SideBride,
		Status:        database.InvitationStatusPending,
		CreatedAt:     now.Add(-8 * 24 * time.Hour),
		ExpiresAt:     now.Add(-24 * time.Hour),
	}
	require.NoError(t, db.InsertGuestInvitation(ctx, stale))

	fresh, err := svc.CreateGuestInvitation(ctx, owner.ID, w.ID, GuestInvitationInput{
		ReceiverEmail: "priya@example.com",
		ReceiverName:  "Priya Sharma",
		Role:          "cousin",
		Side:          database.SideBride,
	})
	require.NoError(t, err)

	// Both rows are pending now; the lookup must resolve to the re-invite,
	// not whichever row the store happens to scan first.
	got, err := db.GetPendingGuestInvitation(ctx, w.ID, "priya@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, fresh.ID, got.ID)
}
