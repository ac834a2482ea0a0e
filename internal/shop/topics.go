package shop

import "strconv"

const (
	TopicOrderPlaced = "shop.order.placed"
	TopicStockLow    = "shop.stock.low"
)

// Partition key = order id, so one order's events keep their order.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
