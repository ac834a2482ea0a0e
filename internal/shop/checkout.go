package shop

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CheckoutStore opens units of work for the committer. The pgx
// implementation lives in repo_checkout.go; tests use an in-memory fake.
type CheckoutStore interface {
	Begin(ctx context.Context) (CheckoutTx, error)
}

// CheckoutTx is one atomic unit of work. Rollback after a successful
// Commit must be a no-op.
type CheckoutTx interface {
	InsertOrder(ctx context.Context, draft OrderDraft) (int64, error)
	InsertLine(ctx context.Context, orderID int64, item CartItem) error
	// DecrementStock subtracts qty from the product's stock inside the
	// store, guarded so stock never goes negative. Returns rows affected;
	// zero means the product is missing or short on stock.
	DecrementStock(ctx context.Context, productID int64, qty int) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

const defaultCheckoutTimeout = 5 * time.Second

// Checkout converts a validated cart into a durable order and the matching
// stock decrements as a single all-or-nothing transition.
type Checkout struct {
	Store   CheckoutStore
	Timeout time.Duration
}

// PlaceOrder validates the request and, if it passes, runs the atomic
// sequence: insert header, then per item insert line + decrement stock.
// Any failure rolls back every write; no partial order is ever visible.
func (c *Checkout) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (int64, error) {
	draft, err := ValidateOrder(req)
	if err != nil {
		return 0, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultCheckoutTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := c.Store.Begin(ctx)
	if err != nil {
		return 0, fail(ctx, ErrOrderInsertFailed, err)
	}
	// Guaranteed release on every exit path; no-op once committed.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	orderID, err := tx.InsertOrder(ctx, draft)
	if err != nil {
		return 0, fail(ctx, ErrOrderInsertFailed, err)
	}

	for _, it := range draft.Items {
		if err := tx.InsertLine(ctx, orderID, it); err != nil {
			return 0, fail(ctx, ErrItemInsertFailed, err)
		}
		rows, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return 0, fail(ctx, ErrStockUpdateFailed, err)
		}
		if rows == 0 {
			return 0, fmt.Errorf("%w: product %d", ErrInsufficientStock, it.ProductID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fail(ctx, ErrOrderInsertFailed, err)
	}
	return orderID, nil
}

// fail tags a storage error with its step's reason, except when the unit of
// work ran out of time, which always surfaces as Timeout.
func fail(ctx context.Context, kind error, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCheckoutTimeout, cause)
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
