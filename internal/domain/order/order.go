package order

import (
	"context"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/shopspring/decimal"
)

const AggregateType = "Order"

type Status string

const (
	// StatusPending marks an order that acts as the user's cart.
	StatusPending   Status = "to_pay"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// UnknownProductName is recorded for items whose product is missing from the catalog.
const UnknownProductName = "Unknown"

var (
	ErrOrderNotFound   = fmt.Errorf("%w: order not found", apperror.ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("%w: product is not in this order", apperror.ErrNotFound)
	ErrEmptyOrder      = fmt.Errorf("%w: order must have at least one item", apperror.ErrValidation)
	ErrMissingProduct  = fmt.Errorf("%w: every item needs a product id", apperror.ErrValidation)
	ErrUnauthenticated = fmt.Errorf("%w: login required", apperror.ErrAuth)
)

// LineItem is one product within an order. Name and Price are copied from the
// catalog when the item is ordered and are not re-read afterwards.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Order struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Items       []LineItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Recalculate recomputes every subtotal and the order total.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]
		item.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.Subtotal)
	}
	o.TotalAmount = total
}

// HasProduct reports whether any line references productID.
func (o *Order) HasProduct(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// withoutProduct returns the items that do not reference productID.
func (o *Order) withoutProduct(productID string) []LineItem {
	remaining := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.ProductID != productID {
			remaining = append(remaining, item)
		}
	}
	return remaining
}

// Filter selects orders. Zero-valued fields do not constrain the match.
type Filter struct {
	OrderIDs    []string
	UserID      string
	Statuses    []Status
	ProductID   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Repository is the document-style order store. Find returns newest first.
type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Find(ctx context.Context, f Filter) ([]*Order, error)
	Exists(ctx context.Context, f Filter) (bool, error)
	// UpdateItems replaces items and total on orders matching f and reports how many matched.
	UpdateItems(ctx context.Context, f Filter, items []LineItem, total decimal.Decimal, updatedAt time.Time) (int64, error)
	UpdateStatus(ctx context.Context, f Filter, status Status, updatedAt time.Time) (int64, error)
	Delete(ctx context.Context, f Filter) (int64, error)
}
