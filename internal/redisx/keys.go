package redisx

import "time"

const (
	// Cache of an order's status: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%d"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Low-stock flag set by stockwatch: stock_low:{product_id} -> remaining qty
	KeyStockLow = "stock_low:%d"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLStockLow    = 24 * time.Hour
)
