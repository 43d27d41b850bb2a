package postgres

import (
	"context"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
)

type revokedTokensRepo struct {
	q querier
}

func (r *revokedTokensRepo) InsertRevokedToken(ctx context.Context, t domain.RevokedToken) error {
	// ON CONFLICT keeps logout idempotent: revoking twice is not an error.
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at, revoked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING`,
		t.JTI, t.ExpiresAt, t.RevokedAt,
	)
	return err
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = $1`, jti).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < $1`, time.Now().UTC())
	return err
}
