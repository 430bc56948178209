package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/report"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day string, hour int) time.Time {
	t, _ := time.Parse("2006-01-02", day)
	return t.Add(time.Duration(hour) * time.Hour)
}

func seedOrder(store *mocks.MockOrderStore, id, userID, total string, status order.Status, created time.Time) {
	store.SetOrder(&order.Order{
		OrderID:     id,
		UserID:      userID,
		TotalAmount: decimal.RequireFromString(total),
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   created,
	})
}

func newTestReportService() (*report.Service, *mocks.MockOrderStore, *mocks.MockUserStore) {
	orders := mocks.NewMockOrderStore()
	users := mocks.NewMockUserStore()
	return report.NewService(orders, orders, users), orders, users
}

func TestParseFilter(t *testing.T) {
	f, err := report.ParseFilter("2026-01-01", "2026-01-31", "")
	require.NoError(t, err)
	require.NotNil(t, f.Start)
	require.NotNil(t, f.End)
	assert.Equal(t, at("2026-01-01", 0), *f.Start)
	assert.Equal(t, "2026-01-31T23:59:59.999999999Z", f.End.Format(time.RFC3339Nano))
	assert.Equal(t, []order.Status{order.StatusCompleted}, f.Statuses)

	f, err = report.ParseFilter("", "not-a-date", "all")
	require.NoError(t, err)
	assert.Nil(t, f.Start)
	assert.Nil(t, f.End)
	assert.Nil(t, f.Statuses)

	f, err = report.ParseFilter("", "", "to_pay")
	require.NoError(t, err)
	assert.Equal(t, []order.Status{order.StatusPending}, f.Statuses)

	_, err = report.ParseFilter("", "", "shipped")
	assert.ErrorIs(t, err, report.ErrInvalidStatus)
}

func TestSummarize(t *testing.T) {
	s := report.Summarize(nil)
	assert.True(t, s.TotalSales.IsZero())
	assert.Zero(t, s.TotalOrders)
	assert.True(t, s.AverageOrderValue.IsZero())

	s = report.Summarize([]report.DailySales{
		{Date: "2026-01-01", TotalSales: decimal.NewFromInt(10), OrderCount: 2},
		{Date: "2026-01-02", TotalSales: decimal.NewFromInt(10), OrderCount: 1},
	})
	assert.Equal(t, "20", s.TotalSales.String())
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, "6.67", s.AverageOrderValue.String())
}

func TestService_Sales_CompletedOnlyByDefault(t *testing.T) {
	svc, orders, _ := newTestReportService()
	seedOrder(orders, "o1", "u1", "50", order.StatusCompleted, at("2026-01-01", 9))
	seedOrder(orders, "o2", "u1", "30", order.StatusCompleted, at("2026-01-02", 10))
	seedOrder(orders, "o3", "u2", "999", order.StatusPending, at("2026-01-02", 11))

	f, err := report.ParseFilter("", "", "")
	require.NoError(t, err)
	r, err := svc.Sales(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, "80", r.Summary.TotalSales.String())
	assert.Equal(t, 2, r.Summary.TotalOrders)
	assert.Equal(t, "40", r.Summary.AverageOrderValue.String())
	assert.Equal(t, []string{"2026-01-01", "2026-01-02"}, r.Labels)
	require.Len(t, r.SalesData, 2)
	assert.Equal(t, "50", r.SalesData[0].String())
	assert.Equal(t, "30", r.SalesData[1].String())
}

func TestService_Sales_DateRangeAndAllStatuses(t *testing.T) {
	svc, orders, _ := newTestReportService()
	seedOrder(orders, "early", "u1", "5", order.StatusCompleted, at("2025-12-31", 23))
	seedOrder(orders, "a", "u1", "10", order.StatusCompleted, at("2026-01-01", 0))
	seedOrder(orders, "b", "u1", "20", order.StatusPending, at("2026-01-01", 23))
	seedOrder(orders, "late", "u1", "7", order.StatusCompleted, at("2026-01-02", 0))

	f, err := report.ParseFilter("2026-01-01", "2026-01-01", "all")
	require.NoError(t, err)
	r, err := svc.Sales(context.Background(), f)

	require.NoError(t, err)
	require.Len(t, r.Daily, 1)
	assert.Equal(t, "2026-01-01", r.Daily[0].Date)
	assert.Equal(t, "30", r.Daily[0].TotalSales.String())
	assert.Equal(t, 2, r.Daily[0].OrderCount)
}

func TestService_Sales_Empty(t *testing.T) {
	svc, _, _ := newTestReportService()

	r, err := svc.Sales(context.Background(), report.Filter{})

	require.NoError(t, err)
	assert.NotNil(t, r.Daily)
	assert.Empty(t, r.Labels)
	assert.True(t, r.Summary.AverageOrderValue.IsZero())
}

func TestService_OrderRows(t *testing.T) {
	svc, orders, _ := newTestReportService()
	seedOrder(orders, "old", "u1", "10", order.StatusCompleted, at("2026-01-01", 1))
	seedOrder(orders, "new", "u2", "20", order.StatusCompleted, at("2026-01-03", 1))
	seedOrder(orders, "cart", "u2", "5", order.StatusPending, at("2026-01-04", 1))

	rows, err := svc.OrderRows(context.Background(), report.Filter{Statuses: []order.Status{order.StatusCompleted}})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new", rows[0].OrderID)
	assert.Equal(t, "u2", rows[0].UserID)
	assert.Equal(t, "old", rows[1].OrderID)
}

func TestService_OrdersWithOwners(t *testing.T) {
	svc, orders, users := newTestReportService()
	users.SetUser(&user.User{UserID: "u1", Email: "alice@example.com"})
	seedOrder(orders, "o1", "u1", "10", order.StatusCompleted, at("2026-01-01", 1))
	seedOrder(orders, "o2", "ghost", "20", order.StatusPending, at("2026-01-02", 1))

	list, err := svc.OrdersWithOwners(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o2", list[0].OrderID)
	assert.Equal(t, "Unknown", list[0].UserEmail)
	assert.Equal(t, "alice@example.com", list[1].UserEmail)
}
