package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/ec-storefront/internal/domain/product"
)

// MockProductStore is an in-memory product.Repository for testing
type MockProductStore struct {
	mu       sync.RWMutex
	products map[string]*product.Product

	// For tracking calls in tests
	InsertCalls []string
	UpdateCalls []string
	DeleteCalls []string

	// Err, when set, is returned by every method
	Err error
}

func NewMockProductStore() *MockProductStore {
	return &MockProductStore{
		products:    make(map[string]*product.Product),
		InsertCalls: make([]string, 0),
		UpdateCalls: make([]string, 0),
		DeleteCalls: make([]string, 0),
	}
}

// SetProduct stores p directly without recording a call.
func (m *MockProductStore) SetProduct(p *product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ProductID] = &cp
}

// GetData returns a stored product without recording a call.
func (m *MockProductStore) GetData(productID string) (*product.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (m *MockProductStore) Insert(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, p.ProductID)
	if m.Err != nil {
		return m.Err
	}
	cp := *p
	m.products[p.ProductID] = &cp
	return nil
}

func (m *MockProductStore) Update(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, p.ProductID)
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.products[p.ProductID]; !ok {
		return nil
	}
	cp := *p
	m.products[p.ProductID] = &cp
	return nil
}

func (m *MockProductStore) FindByID(_ context.Context, productID string) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductStore) FindByIDs(_ context.Context, productIDs []string) ([]*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var out []*product.Product
	for _, id := range productIDs {
		if p, ok := m.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockProductStore) List(_ context.Context, opts product.ListOptions) ([]*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	query := strings.ToLower(opts.Query)
	out := make([]*product.Product, 0, len(m.products))
	for _, p := range m.products {
		if opts.ActiveOnly && !p.IsActive {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockProductStore) Delete(_ context.Context, productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, productID)
	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.products[productID]; !ok {
		return false, nil
	}
	delete(m.products, productID)
	return true, nil
}
