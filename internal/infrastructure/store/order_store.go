package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const orderColumns = `order_id, user_id, items, total_amount, order_status, created_at, updated_at`

// PostgresOrderStore implements order.Repository and report.Repository.
// Line items are stored as a JSONB document on the order row.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// whereClause renders f as SQL conditions. Placeholders start after the
// first offset arguments.
func whereClause(f order.Filter, offset int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", offset+len(args))
	}

	if len(f.OrderIDs) > 0 {
		conds = append(conds, "order_id = ANY("+next(pq.Array(f.OrderIDs))+")")
	}
	if f.UserID != "" {
		conds = append(conds, "user_id = "+next(f.UserID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "order_status = ANY("+next(pq.Array(statuses))+")")
	}
	if f.ProductID != "" {
		contains, _ := json.Marshal([]map[string]string{{"product_id": f.ProductID}})
		conds = append(conds, "items @> "+next(string(contains))+"::jsonb")
	}
	if f.CreatedFrom != nil {
		conds = append(conds, "created_at >= "+next(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		conds = append(conds, "created_at <= "+next(*f.CreatedTo))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *PostgresOrderStore) Insert(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return apperror.Storage("encode order items", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.OrderID, o.UserID, items, o.TotalAmount, string(o.Status), o.CreatedAt, o.UpdatedAt)
	return apperror.Storage("insert order", err)
}

func (s *PostgresOrderStore) Find(ctx context.Context, f order.Filter) ([]*order.Order, error) {
	where, args := whereClause(f, 0)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, apperror.Storage("find orders", err)
	}
	defer rows.Close()

	orders := make([]*order.Order, 0)
	for rows.Next() {
		var (
			o     order.Order
			items []byte
		)
		if err := rows.Scan(&o.OrderID, &o.UserID, &items, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, apperror.Storage("scan order", err)
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, apperror.Storage("decode order items", err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("scan order", err)
	}
	return orders, nil
}

func (s *PostgresOrderStore) Exists(ctx context.Context, f order.Filter) (bool, error) {
	where, args := whereClause(f, 0)
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders`+where+`)`, args...).Scan(&exists)
	if err != nil {
		return false, apperror.Storage("check orders", err)
	}
	return exists, nil
}

func (s *PostgresOrderStore) UpdateItems(ctx context.Context, f order.Filter, items []order.LineItem, total decimal.Decimal, updatedAt time.Time) (int64, error) {
	encoded, err := json.Marshal(items)
	if err != nil {
		return 0, apperror.Storage("encode order items", err)
	}
	where, args := whereClause(f, 3)
	return s.exec(ctx, "update order items",
		`UPDATE orders SET items = $1, total_amount = $2, updated_at = $3`+where,
		append([]any{encoded, total, updatedAt}, args...)...)
}

func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, f order.Filter, status order.Status, updatedAt time.Time) (int64, error) {
	where, args := whereClause(f, 2)
	return s.exec(ctx, "update order status",
		`UPDATE orders SET order_status = $1, updated_at = $2`+where,
		append([]any{string(status), updatedAt}, args...)...)
}

func (s *PostgresOrderStore) Delete(ctx context.Context, f order.Filter) (int64, error) {
	where, args := whereClause(f, 0)
	if where == "" {
		return 0, apperror.Validation("refusing to delete orders without a filter")
	}
	return s.exec(ctx, "delete orders", `DELETE FROM orders`+where, args...)
}

func (s *PostgresOrderStore) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperror.Storage(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.Storage(op, err)
	}
	return n, nil
}
