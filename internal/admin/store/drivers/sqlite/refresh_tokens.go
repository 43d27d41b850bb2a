package sqlite

import (
	"context"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
)

type refreshTokensRepo struct {
	q querier
}

const refreshTokenColumns = `id, principal_id, token_hash, session_id, role, amr,
	expires_at, revoked, created_at, updated_at`

func scanRefreshToken(s rowScanner) (domain.RefreshToken, error) {
	var (
		t   domain.RefreshToken
		amr string
	)
	err := s.Scan(
		&t.ID, &t.PrincipalID, &t.TokenHash, &t.SessionID, &t.Role, &amr,
		&t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	t.AMR = splitList(amr)
	return t, nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, principal_id, token_hash, session_id, role, amr,
			expires_at, revoked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.PrincipalID, t.TokenHash, t.SessionID, t.Role, joinList(t.AMR),
		t.ExpiresAt, t.Revoked, t.CreatedAt, t.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	t, err := scanRefreshToken(r.q.QueryRowContext(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, hash))
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE token_hash = ?`,
		time.Now().UTC(), hash,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *refreshTokensRepo) RevokeSessionRefreshTokens(ctx context.Context, sessionID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE session_id = ? AND revoked = 0`,
		time.Now().UTC(), sessionID,
	)
	return err
}

func (r *refreshTokensRepo) RevokePrincipalRefreshTokens(ctx context.Context, principalID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE principal_id = ? AND revoked = 0`,
		time.Now().UTC(), principalID,
	)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
