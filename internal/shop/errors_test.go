package shop

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReason(t *testing.T) {
	cases := map[string]error{
		"EmptyCart":              ErrEmptyCart,
		"IncompleteCustomerInfo": ErrIncompleteCustomerInfo,
		"MalformedItem":          ErrMalformedItem,
		"OrderInsertFailed":      ErrOrderInsertFailed,
		"ItemInsertFailed":       ErrItemInsertFailed,
		"StockUpdateFailed":      ErrStockUpdateFailed,
		"InsufficientStock":      ErrInsufficientStock,
		"Timeout":                ErrCheckoutTimeout,
	}
	for tag, err := range cases {
		require.Equal(t, tag, Reason(err))
		// Wrapped errors keep their tag.
		require.Equal(t, tag, Reason(fmt.Errorf("checkout: %w", err)))
	}
	require.Equal(t, "Internal", Reason(errors.New("boom")))
}
