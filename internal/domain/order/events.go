package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated     = "OrderCreated"
	EventOrderItemRemoved = "OrderItemRemoved"
	EventOrderDeleted     = "OrderDeleted"
	EventOrdersCompleted  = "OrdersCompleted"
)

type OrderCreated struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Items       []LineItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OrderItemRemoved struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	ProductID   string          `json:"product_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	RemovedAt   time.Time       `json:"removed_at"`
}

type OrderDeleted struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// CompletedOrder is a snapshot of an order at completion time.
type CompletedOrder struct {
	OrderID     string          `json:"order_id"`
	Items       []LineItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrdersCompleted struct {
	UserID      string           `json:"user_id"`
	Orders      []CompletedOrder `json:"orders"`
	CompletedAt time.Time        `json:"completed_at"`
}
