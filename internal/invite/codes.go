package invite

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/emowed/emowed-server/internal/database"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the length of partner invitation codes.
const CodeLength = 6

// GenerateCode returns a random uppercase alphanumeric code.
func GenerateCode() (string, error) {
	b := make([]byte, CodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// generateUniqueCode retries generation until the code is unused. The
// space is small enough that collisions are possible, so uniqueness is
// enforced here rather than trusted to chance.
func generateUniqueCode(ctx context.Context, db *database.DB) (string, error) {
	const maxRetries = 5

	for i := 0; i < maxRetries; i++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}

		exists, err := db.PartnerInvitationCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique code after %d retries", maxRetries)
}
