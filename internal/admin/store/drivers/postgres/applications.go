package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
)

type applicationsRepo struct {
	q querier
}

const applicationColumns = `id, tracking_id, client_id, type, status, priority, data,
	submitted_at, updated_at`

func scanApplication(s rowScanner) (domain.Application, error) {
	var (
		a    domain.Application
		data sql.NullString
	)
	err := s.Scan(
		&a.ID, &a.TrackingID, &a.ClientID, &a.Type, &a.Status, &a.Priority, &data,
		&a.SubmittedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Application{}, err
	}
	if data.Valid && data.String != "" {
		a.Data = json.RawMessage(data.String)
	}
	return a, nil
}

func applicationFilterSQL(f store.ApplicationFilter) (string, []any) {
	var (
		conds []string
		args  []any
		idx   = 1
	)
	if f.ClientID != "" {
		conds = append(conds, fmt.Sprintf(`client_id = $%d`, idx))
		args = append(args, f.ClientID)
		idx++
	}
	if f.Type != "" {
		conds = append(conds, fmt.Sprintf(`type = $%d`, idx))
		args = append(args, string(f.Type))
		idx++
	}
	if f.Status != "" {
		conds = append(conds, fmt.Sprintf(`status = $%d`, idx))
		args = append(args, string(f.Status))
		idx++
	}
	if f.Priority != "" {
		conds = append(conds, fmt.Sprintf(`priority = $%d`, idx))
		args = append(args, f.Priority)
		idx++
	}
	if len(conds) == 0 {
		return ``, nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func (r *applicationsRepo) CreateApplication(ctx context.Context, a domain.Application) error {
	var data any
	if len(a.Data) > 0 {
		data = string(a.Data)
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO applications (id, tracking_id, client_id, type, status, priority, data,
			submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.TrackingID, a.ClientID, string(a.Type), string(a.Status), a.Priority, data,
		a.SubmittedAt, a.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *applicationsRepo) GetApplicationByID(ctx context.Context, id string) (domain.Application, error) {
	a, err := scanApplication(r.q.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	return a, nil
}

func (r *applicationsRepo) GetApplicationByTrackingID(ctx context.Context, trackingID string) (domain.Application, error) {
	a, err := scanApplication(r.q.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE tracking_id = $1`, trackingID))
	if err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	return a, nil
}

func (r *applicationsRepo) ListApplications(ctx context.Context, f store.ApplicationFilter) ([]domain.Application, error) {
	where, args := applicationFilterSQL(f)
	limit, offset := pageArgs(f.Limit, f.Offset)
	page := pageSQL(len(args))
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications`+where+
			` ORDER BY submitted_at DESC, id DESC`+page, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *applicationsRepo) CountApplications(ctx context.Context, f store.ApplicationFilter) (int64, error) {
	where, args := applicationFilterSQL(f)
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications`+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *applicationsRepo) CountApplicationsByStatus(ctx context.Context) (map[domain.ApplicationStatus]int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.ApplicationStatus]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[domain.ApplicationStatus(status)] = count
	}
	return out, rows.Err()
}

func (r *applicationsRepo) CountActiveApplicationsForClient(ctx context.Context, clientID string) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM applications
		WHERE client_id = $1 AND status NOT IN ($2, $3, $4)`,
		clientID,
		string(domain.StatusApproved), string(domain.StatusRejected), string(domain.StatusCancelled),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *applicationsRepo) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *applicationsRepo) AppendStatusChange(ctx context.Context, c domain.StatusChange) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO application_status_history (id, application_id, from_status, to_status,
			changed_by, note, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.ApplicationID, string(c.From), string(c.To), c.ChangedBy, c.Note, c.ChangedAt,
	)
	return err
}

func (r *applicationsRepo) ListStatusChanges(ctx context.Context, applicationID string) ([]domain.StatusChange, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, application_id, from_status, to_status, changed_by, note, changed_at
		FROM application_status_history
		WHERE application_id = $1
		ORDER BY changed_at ASC, id ASC`,
		applicationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StatusChange
	for rows.Next() {
		var c domain.StatusChange
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.From, &c.To, &c.ChangedBy, &c.Note, &c.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
