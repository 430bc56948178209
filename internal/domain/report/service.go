package report

import (
	"context"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/shopspring/decimal"
)

// OrderFinder is the read side of the order store.
type OrderFinder interface {
	Find(ctx context.Context, f order.Filter) ([]*order.Order, error)
}

// UserDirectory lists accounts for resolving order owners.
type UserDirectory interface {
	List(ctx context.Context) ([]*user.User, error)
}

// Service builds read-only sales reports from stored orders.
type Service struct {
	repo   Repository
	orders OrderFinder
	users  UserDirectory
}

func NewService(repo Repository, orders OrderFinder, users UserDirectory) *Service {
	return &Service{repo: repo, orders: orders, users: users}
}

func (s *Service) Sales(ctx context.Context, f Filter) (*SalesReport, error) {
	daily, err := s.repo.SalesByDay(ctx, f)
	if err != nil {
		return nil, err
	}
	if daily == nil {
		daily = []DailySales{}
	}

	r := &SalesReport{
		Filter:  f,
		Daily:   daily,
		Summary: Summarize(daily),
	}
	r.Labels = make([]string, len(daily))
	r.SalesData = make([]decimal.Decimal, len(daily))
	for i, d := range daily {
		r.Labels[i] = d.Date
		r.SalesData[i] = d.TotalSales
	}
	return r, nil
}

// DailyRows returns the day buckets for export.
func (s *Service) DailyRows(ctx context.Context, f Filter) ([]DailySales, error) {
	return s.repo.SalesByDay(ctx, f)
}

// OrderRows returns the filtered orders for export, newest first.
func (s *Service) OrderRows(ctx context.Context, f Filter) ([]OrderRow, error) {
	orders, err := s.orders.Find(ctx, f.OrderFilter())
	if err != nil {
		return nil, err
	}
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, OrderRow{
			OrderID:     o.OrderID,
			CreatedAt:   o.CreatedAt,
			UserID:      o.UserID,
			Status:      o.Status,
			TotalAmount: o.TotalAmount,
		})
	}
	return rows, nil
}

// OrdersWithOwners lists every order with the owner's email, or "Unknown".
func (s *Service) OrdersWithOwners(ctx context.Context) ([]OrderWithOwner, error) {
	orders, err := s.orders.Find(ctx, order.Filter{})
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.UserID] = u.Email
	}

	out := make([]OrderWithOwner, 0, len(orders))
	for _, o := range orders {
		email, ok := emails[o.UserID]
		if !ok {
			email = "Unknown"
		}
		out = append(out, OrderWithOwner{Order: o, UserEmail: email})
	}
	return out, nil
}
