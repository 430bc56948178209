package store

import (
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWhereClause_Empty(t *testing.T) {
	where, args := whereClause(order.Filter{}, 0)

	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestWhereClause_AllFields(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	where, args := whereClause(order.Filter{
		OrderIDs:    []string{"o1", "o2"},
		UserID:      "u1",
		Statuses:    []order.Status{order.StatusPending},
		ProductID:   "p1",
		CreatedFrom: &from,
		CreatedTo:   &to,
	}, 0)

	assert.Equal(t, " WHERE order_id = ANY($1) AND user_id = $2 AND order_status = ANY($3)"+
		" AND items @> $4::jsonb AND created_at >= $5 AND created_at <= $6", where)
	assert.Len(t, args, 6)
	assert.Equal(t, pq.Array([]string{"o1", "o2"}), args[0])
	assert.Equal(t, "u1", args[1])
	assert.Equal(t, pq.Array([]string{"to_pay"}), args[2])
	assert.Equal(t, `[{"product_id":"p1"}]`, args[3])
	assert.Equal(t, from, args[4])
	assert.Equal(t, to, args[5])
}

func TestWhereClause_Offset(t *testing.T) {
	where, args := whereClause(order.Filter{OrderIDs: []string{"o1"}, UserID: "u1"}, 3)

	assert.Equal(t, " WHERE order_id = ANY($4) AND user_id = $5", where)
	assert.Len(t, args, 2)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\o/`, escapeLike(`50% off_now \o/`))
	assert.Equal(t, "tea", escapeLike("tea"))
}
