package postgres

import (
	"context"
	"fmt"
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

// pageSQL numbers the LIMIT/OFFSET placeholders after the filter args.
func pageSQL(argCount int) string {
	return fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argCount+1, argCount+2)
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
		idx   = 1
	)
	if f.Search != "" {
		conds = append(conds, fmt.Sprintf(
			`(full_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)`, idx, idx+1, idx+2))
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
		idx += 3
	}
	if f.Nationality != "" {
		conds = append(conds, fmt.Sprintf(`nationality = $%d`, idx))
		args = append(args, f.Nationality)
		idx++
	}
	if !f.CreatedAfter.IsZero() {
		conds = append(conds, fmt.Sprintf(`created_at > $%d`, idx))
		args = append(args, f.CreatedAfter)
		idx++
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.FullName, c.Email, c.Phone, c.Nationality, c.PassportNumber,
		c.Company, c.Address, c.Notes, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) GetClientByEmail(ctx context.Context, email string) (domain.Client, error) {
	c, err := scanClient(r.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE email = $1`, email))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context, f store.ClientFilter) ([]domain.Client, error) {
	where, args := clientFilterSQL(f)
	limit, offset := pageArgs(f.Limit, f.Offset)
	page := pageSQL(len(args))
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients`+where+
			` ORDER BY created_at DESC, id DESC`+page, args...)
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
		UPDATE clients SET full_name = $1, email = $2, phone = $3, nationality = $4,
			passport_number = $5, company = $6, address = $7, notes = $8, active = $9,
			updated_at = $10
		WHERE id = $11`,
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
	res, err := r.q.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
