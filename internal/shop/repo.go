package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo serves the catalog and admin operations around the checkout core.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, category, price_per_unit, stock_quantity, created_at, updated_at
		FROM products ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PricePerUnit, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) AddProduct(ctx context.Context, in ProductInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(name, category, price_per_unit, stock_quantity)
		VALUES ($1, $2, $3, $4) RETURNING product_id`,
		in.Name, in.Category, in.Price, in.Stock,
	).Scan(&id)
	return id, err
}

func (r *Repo) UpdateProduct(ctx context.Context, id int64, in ProductInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$2, category=$3, price_per_unit=$4, stock_quantity=$5, updated_at=now()
		WHERE product_id=$1`,
		id, in.Name, in.Category, in.Price, in.Stock,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct refuses to remove a product that order lines still
// reference, keeping price history intact.
func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM order_items WHERE product_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrProductInUse
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE product_id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID int64) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE order_id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// ListRecentOrders returns the newest orders first, each with its lines.
func (r *Repo) ListRecentOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, customer_name, customer_phone, customer_address, customer_email,
		       total_amount, status, order_date
		FROM orders ORDER BY order_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	byID := map[int64]int{}
	ids := make([]int64, 0, limit)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
			&o.CustomerEmail, &o.TotalAmount, &o.Status, &o.OrderDate); err != nil {
			return nil, err
		}
		byID[o.ID] = len(out)
		ids = append(ids, o.ID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lineRows, err := r.DB.Query(ctx, `
		SELECT order_item_id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_item_id`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var l OrderLine
		if err := lineRows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Price); err != nil {
			return nil, err
		}
		if i, ok := byID[l.OrderID]; ok {
			out[i].Lines = append(out[i].Lines, l)
		}
	}
	return out, lineRows.Err()
}

// UpdateOrderStatus applies one lifecycle transition under a row lock so
// concurrent updates cannot skip the transition check.
func (r *Repo) UpdateOrderStatus(ctx context.Context, orderID int64, to Status) error {
	if !ValidStatus(to) {
		return ErrBadTransition
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE order_id=$1 FOR UPDATE`, orderID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if !CanTransition(Status(cur), to) {
		return ErrBadTransition
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE order_id=$1`, orderID, to); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// StockLevels reports current stock for the given products.
func (r *Repo) StockLevels(ctx context.Context, ids []int64) (map[int64]int, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, stock_quantity FROM products WHERE product_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int, len(ids))
	for rows.Next() {
		var id int64
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			return nil, err
		}
		out[id] = stock
	}
	return out, rows.Err()
}
