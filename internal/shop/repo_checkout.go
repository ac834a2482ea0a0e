package shop

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckoutRepo is the postgres unit-of-work factory for the committer.
type CheckoutRepo struct{ DB *pgxpool.Pool }

var _ CheckoutStore = (*CheckoutRepo)(nil)

func (r *CheckoutRepo) Begin(ctx context.Context) (CheckoutTx, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &checkoutTx{tx: tx}, nil
}

type checkoutTx struct{ tx pgx.Tx }

func (t *checkoutTx) InsertOrder(ctx context.Context, d OrderDraft) (int64, error) {
	var orderID int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO orders(customer_name, customer_phone, customer_address, customer_email, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, 'Pending')
		RETURNING order_id`,
		d.CustomerName, d.CustomerPhone, d.CustomerAddress, d.CustomerEmail, d.TotalAmount,
	).Scan(&orderID)
	return orderID, err
}

func (t *checkoutTx) InsertLine(ctx context.Context, orderID int64, it CartItem) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_items(order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)`,
		orderID, it.ProductID, it.Quantity, it.Price,
	)
	return err
}

// Relative decrement executed by the store itself, guarded against
// oversell: concurrent checkouts on the same product cannot drive stock
// negative, and a short row simply does not match.
func (t *checkoutTx) DecrementStock(ctx context.Context, productID int64, qty int) (int64, error) {
	ct, err := t.tx.Exec(ctx, `
		UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE product_id = $1 AND stock_quantity >= $2`,
		productID, qty,
	)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (t *checkoutTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *checkoutTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
