package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
)

type packagesRepo struct {
	q querier
}

const packageColumns = `id, name, slug, destination, description, duration_days,
	price_cents, currency, inclusions, exclusions, is_featured, active, created_at, updated_at`

func scanPackage(s rowScanner) (domain.TravelPackage, error) {
	var (
		p          domain.TravelPackage
		inclusions string
		exclusions string
	)
	err := s.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Destination, &p.Description, &p.DurationDays,
		&p.PriceCents, &p.Currency, &inclusions, &exclusions, &p.IsFeatured, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.TravelPackage{}, err
	}
	if p.Inclusions, err = decodeStrings(inclusions); err != nil {
		return domain.TravelPackage{}, err
	}
	if p.Exclusions, err = decodeStrings(exclusions); err != nil {
		return domain.TravelPackage{}, err
	}
	return p, nil
}

func packageFilterSQL(f store.PackageFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Destination != "" {
		conds = append(conds, `destination = ?`)
		args = append(args, f.Destination)
	}
	if f.ActiveOnly {
		conds = append(conds, `active = 1`)
	}
	if f.MinPriceCents > 0 {
		conds = append(conds, `price_cents >= ?`)
		args = append(args, f.MinPriceCents)
	}
	if f.MaxPriceCents > 0 {
		conds = append(conds, `price_cents <= ?`)
		args = append(args, f.MaxPriceCents)
	}
	if len(conds) == 0 {
		return ``, nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func packageOrderSQL(f store.PackageFilter) string {
	if f.FeaturedFirst {
		return ` ORDER BY is_featured DESC, created_at DESC, id DESC`
	}
	return ` ORDER BY created_at DESC, id DESC`
}

func (r *packagesRepo) CreatePackage(ctx context.Context, p domain.TravelPackage) error {
	inclusions, err := encodeStrings(p.Inclusions)
	if err != nil {
		return err
	}
	exclusions, err := encodeStrings(p.Exclusions)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO travel_packages (id, name, slug, destination, description, duration_days,
			price_cents, currency, inclusions, exclusions, is_featured, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.Destination, p.Description, p.DurationDays,
		p.PriceCents, p.Currency, inclusions, exclusions, p.IsFeatured, p.Active,
		p.CreatedAt, p.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *packagesRepo) GetPackageByID(ctx context.Context, id string) (domain.TravelPackage, error) {
	p, err := scanPackage(r.q.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM travel_packages WHERE id = ?`, id))
	if err != nil {
		return domain.TravelPackage{}, mapNotFound(err)
	}
	return p, nil
}

func (r *packagesRepo) GetPackageBySlug(ctx context.Context, slug string) (domain.TravelPackage, error) {
	p, err := scanPackage(r.q.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM travel_packages WHERE slug = ?`, slug))
	if err != nil {
		return domain.TravelPackage{}, mapNotFound(err)
	}
	return p, nil
}

func (r *packagesRepo) ListPackages(ctx context.Context, f store.PackageFilter) ([]domain.TravelPackage, error) {
	where, args := packageFilterSQL(f)
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+packageColumns+` FROM travel_packages`+where+
			packageOrderSQL(f)+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TravelPackage
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *packagesRepo) CountPackages(ctx context.Context, f store.PackageFilter) (int64, error) {
	where, args := packageFilterSQL(f)
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM travel_packages`+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *packagesRepo) PackageSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM travel_packages WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *packagesRepo) UpdatePackage(ctx context.Context, p domain.TravelPackage) error {
	inclusions, err := encodeStrings(p.Inclusions)
	if err != nil {
		return err
	}
	exclusions, err := encodeStrings(p.Exclusions)
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `
		UPDATE travel_packages SET name = ?, slug = ?, destination = ?, description = ?,
			duration_days = ?, price_cents = ?, currency = ?, inclusions = ?, exclusions = ?,
			is_featured = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Slug, p.Destination, p.Description,
		p.DurationDays, p.PriceCents, p.Currency, inclusions, exclusions,
		p.IsFeatured, p.Active, time.Now().UTC(), p.ID,
	)
	if err != nil {
		return mapUnique(err)
	}
	return requireRowAffected(res)
}

func (r *packagesRepo) DeletePackage(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM travel_packages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
