package postgres

import (
	"context"
	"time"
)

type backupCodesRepo struct {
	q querier
}

func (r *backupCodesRepo) CreateBackupCode(ctx context.Context, principalID string, codeHash string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO backup_codes (principal_id, code_hash, created_at)
		VALUES ($1, $2, $3)`,
		principalID, codeHash, time.Now().UTC(),
	)
	return mapUnique(err)
}

func (r *backupCodesRepo) VerifyBackupCode(ctx context.Context, principalID string, codeHash string) (bool, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM backup_codes WHERE principal_id = $1 AND code_hash = $2`,
		principalID, codeHash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *backupCodesRepo) DeleteBackupCode(ctx context.Context, principalID string, codeHash string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM backup_codes WHERE principal_id = $1 AND code_hash = $2`,
		principalID, codeHash,
	)
	return err
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, principalID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM backup_codes WHERE principal_id = $1`, principalID)
	return err
}

func (r *backupCodesRepo) CountBackupCodes(ctx context.Context, principalID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM backup_codes WHERE principal_id = $1`, principalID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
