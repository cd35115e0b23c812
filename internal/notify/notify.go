// Package notify is the fire-and-forget notification sink. A failed send
// is logged and swallowed; it must never fail the operation that
// triggered it.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emowed/emowed-server/internal/database"
)

// Notification types.
const (
	TypeInvitation     = "invitation"
	TypeAcceptance     = "acceptance"
	TypeRejection      = "rejection"
	TypeWeddingCreated = "wedding_created"
)

type Service struct {
	db  *database.DB
	log zerolog.Logger
}

func New(db *database.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log.With().Str("component", "notify").Logger()}
}

// Send records a notification for a user. Errors are logged at warn and
// dropped.
func (s *Service) Send(ctx context.Context, userID, typ, title, message, actionURL string) {
	if _, err := s.db.InsertNotification(ctx, userID, typ, title, message, actionURL); err != nil {
		s.log.Warn().Err(err).
			Str("user_id", userID).
			Str("type", typ).
			Msg("failed to send notification")
	}
}
