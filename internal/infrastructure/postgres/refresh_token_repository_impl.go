package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
)

type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, tokenID, userID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_refresh_tokens (id, user_id)
		VALUES ($1, $2)
	`, tokenID, userID)
	return translate(err, "refresh token not found", "refresh token already exists")
}

func (r *RefreshTokenRepository) GetWithUser(ctx context.Context, tokenID string) (*entity.RefreshTokenWithUser, error) {
	out := &entity.RefreshTokenWithUser{}
	row := r.pool.QueryRow(ctx, `
		SELECT t.id, t.user_id, t.revoked, t.revoked_at, t.created_at,
		       `+prefixedUserColumns("u")+`
		FROM user_refresh_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
	`, tokenID)

	err := row.Scan(
		&out.ID, &out.UserID, &out.Revoked, &out.RevokedAt, &out.CreatedAt,
		&out.User.ID, &out.User.Email, &out.User.Password, &out.User.Name,
		&out.User.Phone, &out.User.Avatar, &out.User.Status,
		&out.User.IsEmailVerified, &out.User.CreatedAt, &out.User.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "refresh token not found", "")
	}
	return out, nil
}

// Revoke is conditional on the row not being revoked yet, so two concurrent
// refresh calls presenting the same token cannot both win: the loser sees
// zero rows affected.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE user_refresh_tokens
		SET revoked = true, revoked_at = now()
		WHERE id = $1 AND revoked = false
	`, tokenID)
	if err != nil {
		return 0, translate(err, "refresh token not found", "")
	}
	return res.RowsAffected(), nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_refresh_tokens
		SET revoked = true, revoked_at = now()
		WHERE user_id = $1 AND revoked = false
	`, userID)
	return translate(err, "refresh token not found", "")
}

func (r *RefreshTokenRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM user_refresh_tokens WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, translate(err, "refresh token not found", "")
	}
	return res.RowsAffected(), nil
}

func prefixedUserColumns(alias string) string {
	return alias + ".id, " + alias + ".email, " + alias + ".password_hash, " +
		alias + ".name, " + alias + ".phone, " + alias + ".avatar, " +
		alias + ".status, " + alias + ".is_email_verified, " +
		alias + ".created_at, " + alias + ".updated_at"
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
