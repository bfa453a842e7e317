// Package token stores bearer access tokens. Only a SHA-256 digest of each
// token reaches the database.
package token

import (
	"context"
	"crypto/sha256"
	"time"
)

type Token struct {
	Token     string
	UserID    string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	// DeleteByUser revokes every token issued to userID.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Digest is the lookup key stored for a raw token.
func Digest(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}
