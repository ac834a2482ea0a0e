package shop

import (
	"fmt"
	"strings"
)

type PlaceOrderRequest struct {
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	CustomerAddress string     `json:"customer_address"`
	CustomerEmail   string     `json:"customer_email"`
	Items           []CartItem `json:"items"`
}

// OrderDraft is a normalized, validated order command ready for the
// committer. TotalAmount is computed from the items, never client-sent.
type OrderDraft struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	CustomerEmail   string
	TotalAmount     int64
	Items           []CartItem
}

// ValidateOrder checks shape and business validity of an incoming order
// request. Pure function: no I/O, deterministic, same rejection on resubmit.
func ValidateOrder(req PlaceOrderRequest) (OrderDraft, error) {
	if len(req.Items) == 0 {
		return OrderDraft{}, ErrEmptyCart
	}

	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.CustomerPhone)
	address := strings.TrimSpace(req.CustomerAddress)
	if name == "" || phone == "" || address == "" {
		return OrderDraft{}, ErrIncompleteCustomerInfo
	}

	draft := OrderDraft{
		CustomerName:    name,
		CustomerPhone:   phone,
		CustomerAddress: address,
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		Items:           make([]CartItem, 0, len(req.Items)),
	}
	for i, it := range req.Items {
		if it.ProductID <= 0 {
			return OrderDraft{}, fmt.Errorf("%w: item %d has no product id", ErrMalformedItem, i)
		}
		if it.Quantity <= 0 {
			return OrderDraft{}, fmt.Errorf("%w: item %d has non-positive quantity", ErrMalformedItem, i)
		}
		if it.Price < 0 {
			return OrderDraft{}, fmt.Errorf("%w: item %d has negative price", ErrMalformedItem, i)
		}
		draft.TotalAmount += int64(it.Quantity) * it.Price
		draft.Items = append(draft.Items, it)
	}
	return draft, nil
}
