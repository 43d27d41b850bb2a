package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
)

// defaultListLimit pages any list query whose filter left Limit unset.
const defaultListLimit = 50

func pageArgs(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type clientsRepo struct {
	q querier
}

const clientColumns = `id, full_name, email, phone, nationality, passport_number,
	company, address, notes, active, created_at, updated_at`

func scanClient(s rowScanner) (domain.Client, error) {
	var c domain.Client
	err := s.Scan(
		&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Nationality, &c.PassportNumber,
		&c.Company, &c.Address, &c.Notes, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, err
	}
	return c, nil
}

func clientFilterSQL(f store.ClientFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, `(full_name LIKE ? OR email LIKE ? OR phone LIKE ?)`)
		args = append(args, like, like, like)
	}
	if f.Nationality != "" {
		conds = append(conds, `nationality = ?`)
		args = append(args, f.Nationality)
	}
	if !f.CreatedAfter.IsZero() {
		conds = append(conds, `created_at > ?`)
		args = append(args, f.CreatedAfter)
	}
	if len(conds) == 0 {
		return ``, nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO clients (id, full_name, email, phone, nationality, passport_number,
			company, address, notes, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FullName, c.Email, c.Phone, c.Nationality, c.PassportNumber,
		c.Company, c.Address, c.Notes, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) GetClientByEmail(ctx context.Context, email string) (domain.Client, error) {
	c, err := scanClient(r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE email = ?`, email))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context, f store.ClientFilter) ([]domain.Client, error) {
	where, args := clientFilterSQL(f)
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientsRepo) CountClients(ctx context.Context, f store.ClientFilter) (int64, error) {
	where, args := clientFilterSQL(f)
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients`+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *clientsRepo) UpdateClient(ctx context.Context, c domain.Client) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE clients SET full_name = ?, email = ?, phone = ?, nationality = ?,
			passport_number = ?, company = ?, address = ?, notes = ?, active = ?,
			updated_at = ?
		WHERE id = ?`,
		c.FullName, c.Email, c.Phone, c.Nationality,
		c.PassportNumber, c.Company, c.Address, c.Notes, c.Active,
		time.Now().UTC(), c.ID,
	)
	if err != nil {
		return mapUnique(err)
	}
	return requireRowAffected(res)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
