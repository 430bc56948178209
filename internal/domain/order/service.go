package order

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/event"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog resolves authoritative product data for new line items.
type Catalog interface {
	FindByIDs(ctx context.Context, productIDs []string) ([]*product.Product, error)
}

// RequestedItem is one line of a client-submitted cart.
type RequestedItem struct {
	ProductID string   `json:"productId"`
	Quantity  Quantity `json:"quantity"`
}

// RemoveResult reports the outcome of removing a line item.
type RemoveResult struct {
	Deleted     bool            `json:"deleted"`
	Items       []LineItem      `json:"items,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type Option func(*Service)

// WithAnonymousCheckout lets CreateForUser persist orders without a user.
// Debug use only.
func WithAnonymousCheckout(enabled bool) Option {
	return func(s *Service) { s.allowAnonymous = enabled }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	repo           Repository
	catalog        Catalog
	publisher      event.Publisher
	allowAnonymous bool
	now            func() time.Time
}

func NewService(repo Repository, catalog Catalog, publisher event.Publisher, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateForUser prices the requested items against the catalog and stores a
// new pending order. Products missing from the catalog are kept as zero-priced
// "Unknown" lines.
func (s *Service) CreateForUser(ctx context.Context, userID string, requested []RequestedItem) (*Order, error) {
	if userID == "" && !s.allowAnonymous {
		return nil, ErrUnauthenticated
	}
	if len(requested) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, item := range requested {
		id := strings.TrimSpace(item.ProductID)
		if id == "" {
			return nil, ErrMissingProduct
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*product.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	items := make([]LineItem, 0, len(requested))
	for _, req := range requested {
		id := strings.TrimSpace(req.ProductID)
		qty := int(req.Quantity)
		if qty <= 0 {
			qty = 1
		}
		item := LineItem{
			ProductID: id,
			Name:      UnknownProductName,
			Price:     decimal.Zero,
			Quantity:  qty,
		}
		if p, ok := byID[id]; ok {
			item.Name = p.Name
			item.Price = p.Price
		}
		items = append(items, item)
	}

	now := s.now().UTC()
	o := &Order{
		OrderID:   uuid.New().String(),
		UserID:    userID,
		Items:     items,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.Recalculate()

	if err := s.repo.Insert(ctx, o); err != nil {
		return nil, err
	}
	if userID == "" {
		log.Printf("[Order] Stored anonymous order %s", o.OrderID)
	}

	event.Emit(ctx, s.publisher, o.OrderID, AggregateType, EventOrderCreated, OrderCreated{
		OrderID:     o.OrderID,
		UserID:      o.UserID,
		Items:       o.Items,
		TotalAmount: o.TotalAmount,
		CreatedAt:   now,
	})
	return o, nil
}

// RemoveItem drops productID from the user's pending order. An order left
// without items is deleted.
func (s *Service) RemoveItem(ctx context.Context, orderID, productID, userID string) (*RemoveResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	f := Filter{OrderIDs: []string{orderID}, UserID: userID, Statuses: []Status{StatusPending}}
	orders, err := s.repo.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}

	o := orders[0]
	if !o.HasProduct(productID) {
		return nil, ErrItemNotFound
	}
	return s.removeFromOrder(ctx, o, productID)
}

// RemoveProductFromUserCart removes productID from every pending order of the
// user that contains it and returns how many orders were touched.
func (s *Service) RemoveProductFromUserCart(ctx context.Context, userID, productID string) (int, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	orders, err := s.repo.Find(ctx, Filter{
		UserID:    userID,
		Statuses:  []Status{StatusPending},
		ProductID: productID,
	})
	if err != nil {
		return 0, err
	}

	touched := 0
	for _, o := range orders {
		if _, err := s.removeFromOrder(ctx, o, productID); err != nil {
			return touched, err
		}
		touched++
	}
	return touched, nil
}

func (s *Service) removeFromOrder(ctx context.Context, o *Order, productID string) (*RemoveResult, error) {
	// Writes are scoped to the pending state so an order completed in the
	// meantime is left alone.
	f := Filter{OrderIDs: []string{o.OrderID}, UserID: o.UserID, Statuses: []Status{StatusPending}}
	now := s.now().UTC()

	o.Items = o.withoutProduct(productID)
	if len(o.Items) == 0 {
		n, err := s.repo.Delete(ctx, f)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrOrderNotFound
		}
		event.Emit(ctx, s.publisher, o.OrderID, AggregateType, EventOrderDeleted, OrderDeleted{
			OrderID:   o.OrderID,
			UserID:    o.UserID,
			DeletedAt: now,
		})
		return &RemoveResult{Deleted: true, TotalAmount: decimal.Zero}, nil
	}

	o.Recalculate()
	o.UpdatedAt = now
	n, err := s.repo.UpdateItems(ctx, f, o.Items, o.TotalAmount, now)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrOrderNotFound
	}

	event.Emit(ctx, s.publisher, o.OrderID, AggregateType, EventOrderItemRemoved, OrderItemRemoved{
		OrderID:     o.OrderID,
		UserID:      o.UserID,
		ProductID:   productID,
		TotalAmount: o.TotalAmount,
		RemovedAt:   now,
	})
	return &RemoveResult{Items: o.Items, TotalAmount: o.TotalAmount}, nil
}

func (s *Service) IsProductInUserCart(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, Filter{UserID: userID, Statuses: []Status{StatusPending}, ProductID: productID})
}

func (s *Service) HasUserPurchasedProduct(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, Filter{UserID: userID, Statuses: []Status{StatusCompleted}, ProductID: productID})
}

// IsProductInOrders checks every order of every user in any status.
// It implements product.ReferenceChecker.
func (s *Service) IsProductInOrders(ctx context.Context, productID string) (bool, error) {
	return s.repo.Exists(ctx, Filter{ProductID: productID})
}

// Complete marks the user's pending orders among orderIDs as completed.
// Orders of other users or in another status are skipped silently.
func (s *Service) Complete(ctx context.Context, orderIDs []string, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	if len(orderIDs) == 0 {
		return 0, nil
	}

	f := Filter{OrderIDs: orderIDs, UserID: userID, Statuses: []Status{StatusPending}}
	pending, err := s.repo.Find(ctx, f)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	now := s.now().UTC()
	n, err := s.repo.UpdateStatus(ctx, f, StatusCompleted, now)
	if err != nil {
		return 0, err
	}

	completed := make([]CompletedOrder, 0, len(pending))
	for _, o := range pending {
		completed = append(completed, CompletedOrder{
			OrderID:     o.OrderID,
			Items:       o.Items,
			TotalAmount: o.TotalAmount,
		})
	}
	event.Emit(ctx, s.publisher, userID, AggregateType, EventOrdersCompleted, OrdersCompleted{
		UserID:      userID,
		Orders:      completed,
		CompletedAt: now,
	})
	return n, nil
}

// Cart returns the user's pending orders.
func (s *Service) Cart(ctx context.Context, userID string) ([]*Order, error) {
	return s.ListByUser(ctx, userID, StatusPending)
}

// ListByUser returns the user's orders, optionally narrowed to one status.
func (s *Service) ListByUser(ctx context.Context, userID string, status Status) ([]*Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	f := Filter{UserID: userID}
	if status != "" {
		f.Statuses = []Status{status}
	}
	return s.repo.Find(ctx, f)
}

// Get returns one of the user's orders.
func (s *Service) Get(ctx context.Context, orderID, userID string) (*Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	orders, err := s.repo.Find(ctx, Filter{OrderIDs: []string{orderID}, UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders[0], nil
}

// ListAll returns every order, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.repo.Find(ctx, Filter{})
}
