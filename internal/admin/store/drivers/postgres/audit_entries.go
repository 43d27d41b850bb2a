package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
)

type auditEntriesRepo struct {
	q querier
}

const auditEntryColumns = `id, actor_id, action, resource_type, resource_id, detail,
	origin_ip, user_agent, created_at`

func scanAuditEntry(s rowScanner) (domain.AuditEntry, error) {
	var (
		e      domain.AuditEntry
		detail sql.NullString
	)
	err := s.Scan(
		&e.ID, &e.ActorID, &e.Action, &e.ResourceType, &e.ResourceID, &detail,
		&e.OriginIP, &e.UserAgent, &e.CreatedAt,
	)
	if err != nil {
		return domain.AuditEntry{}, err
	}
	if detail.Valid && detail.String != "" {
		e.Detail = json.RawMessage(detail.String)
	}
	return e, nil
}

func auditFilterSQL(f store.AuditFilter) (string, []any) {
	var (
		conds []string
		args  []any
		idx   = 1
	)
	if f.ActorID != "" {
		conds = append(conds, fmt.Sprintf(`actor_id = $%d`, idx))
		args = append(args, f.ActorID)
		idx++
	}
	if f.Action != "" {
		conds = append(conds, fmt.Sprintf(`action = $%d`, idx))
		args = append(args, f.Action)
		idx++
	}
	if f.ResourceType != "" {
		conds = append(conds, fmt.Sprintf(`resource_type = $%d`, idx))
		args = append(args, f.ResourceType)
		idx++
	}
	if f.ResourceID != "" {
		conds = append(conds, fmt.Sprintf(`resource_id = $%d`, idx))
		args = append(args, f.ResourceID)
		idx++
	}
	if !f.From.IsZero() {
		conds = append(conds, fmt.Sprintf(`created_at >= $%d`, idx))
		args = append(args, f.From)
		idx++
	}
	if !f.To.IsZero() {
		conds = append(conds, fmt.Sprintf(`created_at <= $%d`, idx))
		args = append(args, f.To)
		idx++
	}
	if len(conds) == 0 {
		return ``, nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func (r *auditEntriesRepo) AppendAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	var detail any
	if len(e.Detail) > 0 {
		detail = string(e.Detail)
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_entries (id, actor_id, action, resource_type, resource_id, detail,
			origin_ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.ActorID, e.Action, e.ResourceType, e.ResourceID, detail,
		e.OriginIP, e.UserAgent, e.CreatedAt,
	)
	return err
}

func (r *auditEntriesRepo) ListAuditEntries(ctx context.Context, f store.AuditFilter) ([]domain.AuditEntry, error) {
	where, args := auditFilterSQL(f)
	limit, offset := pageArgs(f.Limit, f.Offset)
	page := pageSQL(len(args))
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+auditEntryColumns+` FROM audit_entries`+where+
			` ORDER BY created_at DESC, id DESC`+page, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *auditEntriesRepo) CountAuditEntries(ctx context.Context, f store.AuditFilter) (int64, error) {
	where, args := auditFilterSQL(f)
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_entries`+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
