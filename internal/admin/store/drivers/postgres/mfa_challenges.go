package postgres

import (
	"context"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
)

type mfaChallengesRepo struct {
	q querier
}

const mfaChallengeColumns = `id, principal_id, role, amr, session_id, attempts, created_at, expires_at`

func scanMFAChallenge(s rowScanner) (domain.MFASession, error) {
	var (
		m   domain.MFASession
		amr string
	)
	err := s.Scan(&m.ID, &m.PrincipalID, &m.Role, &amr, &m.SessionID, &m.Attempts, &m.CreatedAt, &m.ExpiresAt)
	if err != nil {
		return domain.MFASession{}, err
	}
	m.AMR = splitList(amr)
	return m, nil
}

func (r *mfaChallengesRepo) CreateMFAChallenge(ctx context.Context, session domain.MFASession) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO mfa_challenges (id, principal_id, role, amr, session_id, attempts, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.PrincipalID, session.Role, joinList(session.AMR),
		session.SessionID, session.Attempts, session.CreatedAt, session.ExpiresAt,
	)
	return mapUnique(err)
}

func (r *mfaChallengesRepo) GetMFAChallenge(ctx context.Context, mfaToken string) (domain.MFASession, error) {
	m, err := scanMFAChallenge(r.q.QueryRowContext(ctx, `
		SELECT `+mfaChallengeColumns+` FROM mfa_challenges
		WHERE id = $1 AND expires_at > $2`,
		mfaToken, time.Now().UTC(),
	))
	if err != nil {
		return domain.MFASession{}, mapNotFound(err)
	}
	return m, nil
}

func (r *mfaChallengesRepo) IncrementMFAChallengeAttempts(ctx context.Context, mfaToken string) (domain.MFASession, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE mfa_challenges SET attempts = attempts + 1 WHERE id = $1`, mfaToken)
	if err != nil {
		return domain.MFASession{}, err
	}
	if err := requireRowAffected(res); err != nil {
		return domain.MFASession{}, err
	}

	m, err := scanMFAChallenge(r.q.QueryRowContext(ctx,
		`SELECT `+mfaChallengeColumns+` FROM mfa_challenges WHERE id = $1`, mfaToken))
	if err != nil {
		return domain.MFASession{}, mapNotFound(err)
	}
	return m, nil
}

func (r *mfaChallengesRepo) DeleteMFAChallenge(ctx context.Context, mfaToken string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM mfa_challenges WHERE id = $1`, mfaToken)
	return err
}

func (r *mfaChallengesRepo) DeleteExpiredMFAChallenges(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM mfa_challenges WHERE expires_at < $1`, time.Now().UTC())
	return err
}
