package invite

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
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

func seedUser(t *testing.T, db *database.DB, email, name string) *database.User {
	t.Helper()
	u, err := db.CreateUser(context.Background(), email, name, "")
	require.NoError(t, err)
	return u
}

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestGenerateCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.True(t, codePattern.MatchString(code), "unexpected code %q", code)
		seen[code] = true
	}
	// 50 draws from a 36^6 space should not collide.
	require.Greater(t, len(seen), 45)
}

func TestCreatePartnerInvitation(t *testing.T) {
	svc, db := newTestService(t)
	sender := seedUser(t, db, "asha@example.com", "Asha Rao")
	ctx := context.Background()

	inv, err := svc.CreatePartnerInvitation(ctx, sender.ID, "Dev@Example.com", "marry me?")
	require.NoError(t, err)

	require.True(t, codePattern.MatchString(inv.Code))
	require.Equal(t, database.InvitationStatusPending, inv.Status)
	require.Equal(t, "dev@example.com", inv.ReceiverEmail)
	require.WithinDuration(t, time.Now().UTC().Add(DefaultPartnerTTL), inv.ExpiresAt, time.Minute)

	_, err = svc.CreatePartnerInvitation(ctx, sender.ID, "asha@example.com", "")
	require.True(t, errs.IsValidation(err), "inviting yourself must fail")

	_, err = svc.CreatePartnerInvitation(ctx, sender.ID, "not-an-email", "")
	require.True(t, errs.IsValidation(err))
}

func TestAcceptPartnerInvitation(t *testing.T) {
	svc, db := newTestService(t)
	sender := seedUser(t, db, "asha@example.com", "Asha Rao")
	receiver := seedUser(t, db, "dev@example.com", "Dev Mehta")
	ctx := context.Background()

	inv, err := svc.CreatePartnerInvitation(ctx, sender.ID, receiver.Email, "")
	require.NoError(t, err)

	couple, err := svc.AcceptPartnerInvitation(ctx, inv.Code, receiver.ID)
	require.NoError(t, err)
	require.Equal(t, sender.ID, couple.User1ID)
	require.Equal(t, receiver.ID, couple.User2ID)

	stored, err := db.GetCoupleByUser(ctx, sender.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	// Responded invitations are terminal.
	_, err = svc.AcceptPartnerInvitation(ctx, inv.Code, receiver.ID)
	require.True(t, errs.IsConflict(err))
	err = svc.RejectPartnerInvitation(ctx, inv.Code, receiver.ID)
	require.True(t, errs.IsConflict(err))
}

func TestAcceptRequiresMatchingEmail(t *testing.T) {
	svc, db := newTestService(t)
	sender := seedUser(t, db, "asha@example.com", "Asha Rao")
	stranger := seedUser(t, db, "mallory@example.com", "Mallory K")
	ctx := context.Background()

	inv, err := svc.CreatePartnerInvitation(ctx, sender.ID, "dev@example.com", "")
	require.NoError(t, err)

	_, err = svc.AcceptPartnerInvitation(ctx, inv.Code, stranger.ID)
	require.True(t, errs.IsNotAuthorized(err))

	err = svc.RejectPartnerInvitation(ctx, inv.Code, stranger.ID)
	require.True(t, errs.IsNotAuthorized(err))
}

func TestRejectPartnerInvitation(t *testing.T) {
	svc, db := newTestService(t)
	sender := seedUser(t, db, "asha@example.com", "Asha Rao")
	receiver := seedUser(t, db, "dev@example.com", "Dev Mehta")
	ctx := context.Background()

	inv, err := svc.CreatePartnerInvitation(ctx, sender.ID, receiver.Email, "")
	require.NoError(t, err)

	require.NoError(t, svc.RejectPartnerInvitation(ctx, inv.Code, receiver.ID))

	stored, err := svc.GetPartnerInvitation(ctx, inv.Code)
	require.NoError(t, err)
	require.Equal(t, database.InvitationStatusRejected, stored.Status)
	require.Equal(t, 1, stored.RejectionCount)

	// A second reject hits the terminal state, not the counter.
	err = svc.RejectPartnerInvitation(ctx, inv.Code, receiver.ID)
	require.True(t, errs.IsConflict(err))

	stored, err = svc.GetPartnerInvitation(ctx, inv.Code)
	require.NoError(t, err)
	require.Equal(t, 1, stored.RejectionCount)

	// No couple was formed.
	couple, err := db.GetCoupleByUser(ctx, sender.ID)
	require.NoError(t, err)
	require.Nil(t, couple)
}

func TestExpiredPartnerInvitation(t *testing.T) {
	svc, db := newTestService(t)
	sender := seedUser(t, db, "asha@example.com", "Asha Rao")
	receiver := seedUser(t, db, "dev@example.com", "Dev Mehta")
	ctx := context.Background()

	now := time.Now().UTC()
	inv := &database.PartnerInvitation{
		ID:            uuid.New().String(),
		Code:          "EXPIRD",
		SenderID:      sender.ID,
		ReceiverEmail: receiver.Email,
		Status:        database.InvitationStatusPending,
		CreatedAt:     now.Add(-72 * time.Hour),
		ExpiresAt:     now.Add(-24 * time.Hour),
	}
	require.NoError(t, db.InsertPartnerInvitation(ctx, inv))

	// Expiry is computed at read time; the stored row still says pending.
	require.Equal(t, database.InvitationStatusExpired, inv.EffectiveStatus(now))

	_, err := svc.AcceptPartnerInvitation(ctx, inv.Code, receiver.ID)
	require.True(t, errs.IsExpired(err))

	err = svc.RejectPartnerInvitation(ctx, inv.Code, receiver.ID)
	require.True(t, errs.IsExpired(err))
}

func TestGetPartnerInvitationUnknownCode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetPartnerInvitation(context.Background(), "NOSUCH")
	require.True(t, errs.IsNotFound(err))
}
