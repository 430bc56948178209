package mocks

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/report"
	"github.com/shopspring/decimal"
)

// MockOrderStore is an in-memory order.Repository and report.Repository for testing
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.Order

	// For tracking calls in tests
	InsertCalls       []string
	FindCalls         []order.Filter
	UpdateItemsCalls  []order.Filter
	UpdateStatusCalls []order.Filter
	DeleteCalls       []order.Filter

	// Err, when set, is returned by every method
	Err error
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders:            make(map[string]*order.Order),
		InsertCalls:       make([]string, 0),
		FindCalls:         make([]order.Filter, 0),
		UpdateItemsCalls:  make([]order.Filter, 0),
		UpdateStatusCalls: make([]order.Filter, 0),
		DeleteCalls:       make([]order.Filter, 0),
	}
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = slices.Clone(o.Items)
	return &cp
}

// SetOrder stores o directly without recording a call.
func (m *MockOrderStore) SetOrder(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.OrderID] = copyOrder(o)
}

// GetData returns a stored order without recording a call.
func (m *MockOrderStore) GetData(orderID string) (*order.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, false
	}
	return copyOrder(o), true
}

// Count returns the number of stored orders.
func (m *MockOrderStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// Matches applies f the way the Postgres store does.
func Matches(o *order.Order, f order.Filter) bool {
	if len(f.OrderIDs) > 0 && !slices.Contains(f.OrderIDs, o.OrderID) {
		return false
	}
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
		return false
	}
	if f.ProductID != "" && !o.HasProduct(f.ProductID) {
		return false
	}
	if f.CreatedFrom != nil && o.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && o.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func (m *MockOrderStore) matchingLocked(f order.Filter) []*order.Order {
	var out []*order.Order
	for _, o := range m.orders {
		if Matches(o, f) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MockOrderStore) Insert(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, o.OrderID)
	if m.Err != nil {
		return m.Err
	}
	m.orders[o.OrderID] = copyOrder(o)
	return nil
}

func (m *MockOrderStore) Find(_ context.Context, f order.Filter) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FindCalls = append(m.FindCalls, f)
	if m.Err != nil {
		return nil, m.Err
	}
	matched := m.matchingLocked(f)
	out := make([]*order.Order, 0, len(matched))
	for _, o := range matched {
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (m *MockOrderStore) Exists(_ context.Context, f order.Filter) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return false, m.Err
	}
	return len(m.matchingLocked(f)) > 0, nil
}

func (m *MockOrderStore) UpdateItems(_ context.Context, f order.Filter, items []order.LineItem, total decimal.Decimal, updatedAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateItemsCalls = append(m.UpdateItemsCalls, f)
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for _, o := range m.matchingLocked(f) {
		o.Items = slices.Clone(items)
		o.TotalAmount = total
		o.UpdatedAt = updatedAt
		n++
	}
	return n, nil
}

func (m *MockOrderStore) UpdateStatus(_ context.Context, f order.Filter, status order.Status, updatedAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateStatusCalls = append(m.UpdateStatusCalls, f)
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for _, o := range m.matchingLocked(f) {
		o.Status = status
		o.UpdatedAt = updatedAt
		n++
	}
	return n, nil
}

func (m *MockOrderStore) Delete(_ context.Context, f order.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, f)
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for _, o := range m.matchingLocked(f) {
		delete(m.orders, o.OrderID)
		n++
	}
	return n, nil
}

// SalesByDay implements report.Repository.
func (m *MockOrderStore) SalesByDay(_ context.Context, f report.Filter) ([]report.DailySales, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	buckets := make(map[string]*report.DailySales)
	for _, o := range m.matchingLocked(f.OrderFilter()) {
		day := o.CreatedAt.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &report.DailySales{Date: day, TotalSales: decimal.Zero}
			buckets[day] = b
		}
		b.TotalSales = b.TotalSales.Add(o.TotalAmount)
		b.OrderCount++
	}

	out := make([]report.DailySales, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
