package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
)

type productsRepo struct {
	q querier
}

const productColumns = `id, name, sku, type, description, price_cents, currency,
	stock_quantity, active, created_at, updated_at`

func scanProduct(s rowScanner) (domain.Product, error) {
	var p domain.Product
	err := s.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Type, &p.Description, &p.PriceCents, &p.Currency,
		&p.StockQuantity, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func productFilterSQL(f store.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Type != "" {
		conds = append(conds, `type = ?`)
		args = append(args, string(f.Type))
	}
	if f.ActiveOnly {
		conds = append(conds, `active = 1`)
	}
	if len(conds) == 0 {
		return ``, nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func (r *productsRepo) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, type, description, price_cents, currency,
			stock_quantity, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SKU, string(p.Type), p.Description, p.PriceCents, p.Currency,
		p.StockQuantity, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *productsRepo) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		return domain.Product{}, mapNotFound(err)
	}
	return p, nil
}

func (r *productsRepo) GetProductBySKU(ctx context.Context, sku string) (domain.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE sku = ?`, sku))
	if err != nil {
		return domain.Product{}, mapNotFound(err)
	}
	return p, nil
}

func (r *productsRepo) ListProducts(ctx context.Context, f store.ProductFilter) ([]domain.Product, error) {
	where, args := productFilterSQL(f)
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productsRepo) CountProducts(ctx context.Context, f store.ProductFilter) (int64, error) {
	where, args := productFilterSQL(f)
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *productsRepo) UpdateProduct(ctx context.Context, p domain.Product) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE products SET name = ?, sku = ?, type = ?, description = ?, price_cents = ?,
			currency = ?, stock_quantity = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.SKU, string(p.Type), p.Description, p.PriceCents,
		p.Currency, p.StockQuantity, p.Active, time.Now().UTC(), p.ID,
	)
	if err != nil {
		return mapUnique(err)
	}
	return requireRowAffected(res)
}

func (r *productsRepo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
