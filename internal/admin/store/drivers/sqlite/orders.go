package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
)

type ordersRepo struct {
	q querier
}

const orderColumns = `id, number, client_id, subtotal_cents, discount_cents, tax_cents,
	total_cents, currency, status, payment_status, created_at, updated_at`

func scanOrder(s rowScanner) (domain.Order, error) {
	var o domain.Order
	err := s.Scan(
		&o.ID, &o.Number, &o.ClientID, &o.SubtotalCents, &o.DiscountCents, &o.TaxCents,
		&o.TotalCents, &o.Currency, &o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func orderFilterSQL(f store.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ClientID != "" {
		conds = append(conds, `client_id = ?`)
		args = append(args, f.ClientID)
	}
	if f.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(f.Status))
	}
	if f.PaymentStatus != "" {
		conds = append(conds, `payment_status = ?`)
		args = append(args, string(f.PaymentStatus))
	}
	if len(conds) == 0 {
		return ``, nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func (r *ordersRepo) CreateOrder(ctx context.Context, o domain.Order) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (id, number, client_id, subtotal_cents, discount_cents, tax_cents,
			total_cents, currency, status, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Number, o.ClientID, o.SubtotalCents, o.DiscountCents, o.TaxCents,
		o.TotalCents, o.Currency, string(o.Status), string(o.PaymentStatus),
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return mapUnique(err)
	}

	for _, item := range o.Items {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, product_sku,
				quantity, unit_price_cents, total_cents)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, o.ID, item.ProductID, item.ProductName, item.ProductSKU,
			item.Quantity, item.UnitPriceCents, item.TotalCents,
		)
		if err != nil {
			return mapUnique(err)
		}
	}
	return nil
}

func (r *ordersRepo) GetOrderByID(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}
	if o.Items, err = r.listItems(ctx, o.ID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *ordersRepo) GetOrderByNumber(ctx context.Context, number string) (domain.Order, error) {
	o, err := scanOrder(r.q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE number = ?`, number))
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}
	if o.Items, err = r.listItems(ctx, o.ID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *ordersRepo) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, product_sku, quantity,
			unit_price_cents, total_cents
		FROM order_items WHERE order_id = ? ORDER BY id ASC`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductSKU,
			&it.Quantity, &it.UnitPriceCents, &it.TotalCents)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *ordersRepo) ListOrders(ctx context.Context, f store.OrderFilter) ([]domain.Order, error) {
	where, args := orderFilterSQL(f)
	limit, offset := pageArgs(f.Limit, f.Offset)
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ordersRepo) CountOrders(ctx context.Context, f store.OrderFilter) (int64, error) {
	where, args := orderFilterSQL(f)
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders`+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ordersRepo) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, payment domain.PaymentStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE orders SET status = ?, payment_status = ?, updated_at = ? WHERE id = ?`,
		string(status), string(payment), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *ordersRepo) CountItemsForProduct(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE product_id = ?`, productID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
