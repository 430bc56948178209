package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// StatusAll disables the status filter.
const StatusAll = "all"

var ErrInvalidStatus = fmt.Errorf("%w: status must be all, to_pay or completed", apperror.ErrValidation)

// Filter narrows the orders a report covers. A nil Statuses covers every status.
type Filter struct {
	Start    *time.Time     `json:"start,omitempty"`
	End      *time.Time     `json:"end,omitempty"`
	Statuses []order.Status `json:"statuses,omitempty"`
}

// OrderFilter converts f into a filter on the order store.
func (f Filter) OrderFilter() order.Filter {
	return order.Filter{
		Statuses:    f.Statuses,
		CreatedFrom: f.Start,
		CreatedTo:   f.End,
	}
}

// ParseFilter reads the report query parameters. Dates use YYYY-MM-DD in UTC;
// unparseable dates are ignored and the end date covers its whole day. An
// empty status means completed orders only.
func ParseFilter(startRaw, endRaw, statusRaw string) (Filter, error) {
	var f Filter
	if t, err := time.Parse(dateLayout, strings.TrimSpace(startRaw)); err == nil {
		f.Start = &t
	}
	if t, err := time.Parse(dateLayout, strings.TrimSpace(endRaw)); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.End = &end
	}

	switch status := strings.TrimSpace(statusRaw); status {
	case "":
		f.Statuses = []order.Status{order.StatusCompleted}
	case StatusAll:
	default:
		s := order.Status(status)
		if !s.Valid() {
			return Filter{}, ErrInvalidStatus
		}
		f.Statuses = []order.Status{s}
	}
	return f, nil
}

// DailySales is one calendar-day bucket.
type DailySales struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"total_sales"`
	OrderCount int             `json:"order_count"`
}

type Summary struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type SalesReport struct {
	Filter Filter       `json:"filter"`
	Daily  []DailySales `json:"daily"`
	// Labels and SalesData feed the sales chart.
	Labels    []string          `json:"labels"`
	SalesData []decimal.Decimal `json:"sales_data"`
	Summary   Summary           `json:"summary"`
}

// OrderRow is one line of the order export.
type OrderRow struct {
	OrderID     string          `json:"order_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UserID      string          `json:"user_id"`
	Status      order.Status    `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// OrderWithOwner is an order listed in the back-office with its owner's email.
type OrderWithOwner struct {
	*order.Order
	UserEmail string `json:"user_email"`
}

// Summarize totals the daily buckets. The average is zero when there are no orders.
func Summarize(days []DailySales) Summary {
	s := Summary{TotalSales: decimal.Zero, AverageOrderValue: decimal.Zero}
	for _, d := range days {
		s.TotalSales = s.TotalSales.Add(d.TotalSales)
		s.TotalOrders += d.OrderCount
	}
	if s.TotalOrders > 0 {
		s.AverageOrderValue = s.TotalSales.Div(decimal.NewFromInt(int64(s.TotalOrders))).Round(2)
	}
	return s
}

// Repository aggregates orders by UTC calendar day, ascending.
type Repository interface {
	SalesByDay(ctx context.Context, f Filter) ([]DailySales, error)
}
