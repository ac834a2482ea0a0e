package shop

import (
	"strings"
	"time"
)

// All money fields are whole currency units (no fractional component).

type Product struct {
	ID            int64     `json:"product_id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	PricePerUnit  int64     `json:"price_per_unit"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Order struct {
	ID              int64       `json:"order_id"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	CustomerEmail   string      `json:"customer_email"`
	TotalAmount     int64       `json:"total_amount"`
	Status          Status      `json:"status"`
	OrderDate       time.Time   `json:"order_date"`
	Lines           []OrderLine `json:"lines,omitempty"`
}

// OrderLine carries the price captured at order time; it is never
// recomputed from the live product price.
type OrderLine struct {
	ID        int64 `json:"order_item_id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

// CartItem is the transient client-side cart entry; it is never persisted
// directly, only as the seed for an order line.
type CartItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
}

func (p ProductInput) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Category) == "" {
		return ErrInvalidProduct
	}
	if p.Price < 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}
