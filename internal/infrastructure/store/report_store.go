package store

import (
	"context"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/domain/report"
)

// SalesByDay implements report.Repository. Days are UTC calendar days.
func (s *PostgresOrderStore) SalesByDay(ctx context.Context, f report.Filter) ([]report.DailySales, error) {
	where, args := whereClause(f.OrderFilter(), 0)
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(total_amount), 0),
		       COUNT(*)
		FROM orders`+where+`
		GROUP BY day
		ORDER BY day ASC
	`, args...)
	if err != nil {
		return nil, apperror.Storage("sales by day", err)
	}
	defer rows.Close()

	days := make([]report.DailySales, 0)
	for rows.Next() {
		var d report.DailySales
		if err := rows.Scan(&d.Date, &d.TotalSales, &d.OrderCount); err != nil {
			return nil, apperror.Storage("scan sales", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("scan sales", err)
	}
	return days, nil
}
