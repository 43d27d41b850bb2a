package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
)

type signingKeysRepo struct {
	q querier
}

const signingKeyColumns = `id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at`

func scanSigningKey(s rowScanner) (domain.SigningKey, error) {
	var (
		k       domain.SigningKey
		retired sql.NullTime
	)
	err := s.Scan(&k.ID, &k.Kid, &k.Algorithm, &k.PrivateKeyEncrypted, &k.CreatedAt, &retired, &k.ExpiresAt)
	if err != nil {
		return domain.SigningKey{}, err
	}
	k.RetiredAt = mapNullTimePtr(retired)
	return k, nil
}

func (r *signingKeysRepo) CreateSigningKey(ctx context.Context, key domain.SigningKey) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO signing_keys (id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Kid, key.Algorithm, key.PrivateKeyEncrypted,
		key.CreatedAt, mapOptionalTime(key.RetiredAt), key.ExpiresAt,
	)
	return mapUnique(err)
}

func (r *signingKeysRepo) GetSigningKeyByKid(ctx context.Context, kid string) (domain.SigningKey, error) {
	k, err := scanSigningKey(r.q.QueryRowContext(ctx,
		`SELECT `+signingKeyColumns+` FROM signing_keys WHERE kid = $1`, kid))
	if err != nil {
		return domain.SigningKey{}, mapNotFound(err)
	}
	return k, nil
}

func (r *signingKeysRepo) ListActiveSigningKeys(ctx context.Context) ([]domain.SigningKey, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+signingKeyColumns+` FROM signing_keys
		WHERE retired_at IS NULL AND expires_at > $1
		ORDER BY created_at DESC`,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSigningKeys(rows)
}

func (r *signingKeysRepo) ListAllSigningKeys(ctx context.Context) ([]domain.SigningKey, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+signingKeyColumns+` FROM signing_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSigningKeys(rows)
}

func collectSigningKeys(rows *sql.Rows) ([]domain.SigningKey, error) {
	var out []domain.SigningKey
	for rows.Next() {
		k, err := scanSigningKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *signingKeysRepo) RetireSigningKey(ctx context.Context, kid string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE signing_keys SET retired_at = $1 WHERE kid = $2 AND retired_at IS NULL`,
		time.Now().UTC(), kid,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *signingKeysRepo) DeleteExpiredSigningKeys(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM signing_keys WHERE expires_at < $1`, time.Now().UTC())
	return err
}
