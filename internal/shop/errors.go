package shop

import "errors"

// Checkout failure taxonomy. Validation errors are raised before any
// storage I/O; storage errors abort the whole transaction.
var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrIncompleteCustomerInfo = errors.New("missing required customer field")
	ErrMalformedItem          = errors.New("malformed cart item")
	ErrOrderInsertFailed      = errors.New("order could not be recorded")
	ErrItemInsertFailed       = errors.New("order item could not be recorded")
	ErrStockUpdateFailed      = errors.New("stock update failed")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrCheckoutTimeout        = errors.New("checkout timed out")
)

// Errors of the surrounding catalog/admin operations.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrProductInUse    = errors.New("product has existing orders")
	ErrInvalidProduct  = errors.New("invalid product fields")
	ErrBadTransition   = errors.New("status transition not allowed")
)

// Reason maps a checkout error to its wire tag. Unknown errors report as
// Internal rather than leaking storage details to the client.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "EmptyCart"
	case errors.Is(err, ErrIncompleteCustomerInfo):
		return "IncompleteCustomerInfo"
	case errors.Is(err, ErrMalformedItem):
		return "MalformedItem"
	case errors.Is(err, ErrInsufficientStock):
		return "InsufficientStock"
	case errors.Is(err, ErrCheckoutTimeout):
		return "Timeout"
	case errors.Is(err, ErrOrderInsertFailed):
		return "OrderInsertFailed"
	case errors.Is(err, ErrItemInsertFailed):
		return "ItemInsertFailed"
	case errors.Is(err, ErrStockUpdateFailed):
		return "StockUpdateFailed"
	default:
		return "Internal"
	}
}
