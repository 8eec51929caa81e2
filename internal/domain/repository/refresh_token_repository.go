package repository

import (
	"context"
	"time"

	"github.com/authgate/authgate/internal/domain/entity"
)

// RefreshTokenRepository tracks issued refresh-token identifiers.
type RefreshTokenRepository interface {
	Create(ctx context.Context, tokenID, userID string) error
	GetWithUser(ctx context.Context, tokenID string) (*entity.RefreshTokenWithUser, error)

	// Revoke marks the token revoked only if it is not already; it returns
	// the number of rows affected. Zero means the token was already consumed
	// (replay or a concurrent refresh) and the caller must fail closed.
	Revoke(ctx context.Context, tokenID string) (int64, error)

	// RevokeAllForUser marks every non-revoked token of the user revoked.
	RevokeAllForUser(ctx context.Context, userID string) error

	// DeleteCreatedBefore removes rows older than the cutoff (expiry sweep).
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
