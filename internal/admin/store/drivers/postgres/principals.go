package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
)

type principalsRepo struct {
	q querier
}

const principalColumns = `id, username, email, full_name, password_hash, role,
	mfa_enabled, mfa_secret, active, last_login_at, created_at, updated_at`

func scanPrincipal(s rowScanner) (domain.Principal, error) {
	var (
		p          domain.Principal
		mfaEnabled sql.NullTime
		mfaSecret  sql.NullString
		lastLogin  sql.NullTime
	)
	err := s.Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName, &p.PasswordHash, &p.Role,
		&mfaEnabled, &mfaSecret, &p.Active, &lastLogin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Principal{}, err
	}
	p.MFAEnabled = mapNullTimePtr(mfaEnabled)
	p.MFASecret = mapNullStringPtr(mfaSecret)
	p.LastLoginAt = mapNullTimePtr(lastLogin)
	return p, nil
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO principals (id, username, email, full_name, password_hash, role,
			mfa_enabled, mfa_secret, active, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Username, p.Email, p.FullName, p.PasswordHash, p.Role,
		mapOptionalTime(p.MFAEnabled), mapOptionalString(p.MFASecret),
		p.Active, mapOptionalTime(p.LastLoginAt), p.CreatedAt, p.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	p, err := scanPrincipal(r.q.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = $1`, id))
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *principalsRepo) GetPrincipalByUsername(ctx context.Context, username string) (domain.Principal, error) {
	p, err := scanPrincipal(r.q.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE username = $1`, username))
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *principalsRepo) ListPrincipals(ctx context.Context) ([]domain.Principal, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+principalColumns+` FROM principals ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *principalsRepo) UpdatePrincipal(ctx context.Context, id, email, fullName, role string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE principals SET email = $1, full_name = $2, role = $3, updated_at = $4
		WHERE id = $5`,
		email, fullName, role, time.Now().UTC(), id,
	)
	if err != nil {
		return mapUnique(err)
	}
	return requireRowAffected(res)
}

func (r *principalsRepo) SetPrincipalActive(ctx context.Context, id string, active bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE principals SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *principalsRepo) UpdatePasswordHash(ctx context.Context, id string, newHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE principals SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		newHash, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *principalsRepo) UpdateMFASecret(ctx context.Context, id string, secret string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE principals SET mfa_secret = $1, updated_at = $2 WHERE id = $3`,
		secret, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *principalsRepo) EnableMFA(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`UPDATE principals SET mfa_enabled = $1, updated_at = $2 WHERE id = $3`,
		now, now, id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *principalsRepo) DisableMFA(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE principals SET mfa_enabled = NULL, mfa_secret = NULL, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *principalsRepo) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE principals SET last_login_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	return err
}

func (r *principalsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM principals`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
