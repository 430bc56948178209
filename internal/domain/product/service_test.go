package product_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubRefs struct {
	inUse bool
	err   error
	calls int
}

func (s *stubRefs) IsProductInOrders(_ context.Context, _ string) (bool, error) {
	s.calls++
	return s.inUse, s.err
}

func newTestProductService(refs product.ReferenceChecker, opts ...product.Option) (*product.Service, *mocks.MockProductStore, *mocks.MockPublisher) {
	store := mocks.NewMockProductStore()
	publisher := mocks.NewMockPublisher()
	opts = append([]product.Option{product.WithClock(func() time.Time { return fixedNow })}, opts...)
	return product.NewService(store, refs, publisher, opts...), store, publisher
}

func ptr[T any](v T) *T { return &v }

func TestService_Create(t *testing.T) {
	svc, store, publisher := newTestProductService(&stubRefs{})

	p, err := svc.Create(context.Background(), product.Input{
		Name:     "  Mug ",
		Price:    decimal.RequireFromString("12.50"),
		Category: "kitchen",
		Stock:    3,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ProductID)
	assert.Equal(t, "Mug", p.Name)
	assert.True(t, p.IsActive)
	assert.Equal(t, fixedNow, p.CreatedAt)
	_, ok := store.GetData(p.ProductID)
	assert.True(t, ok)
	assert.Equal(t, []string{product.EventProductCreated}, publisher.EventTypes())
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   product.Input
		wantErr error
	}{
		{"missing name", product.Input{Name: " ", Price: decimal.NewFromInt(1)}, product.ErrInvalidName},
		{"negative price", product.Input{Name: "Mug", Price: decimal.NewFromInt(-1)}, product.ErrInvalidPrice},
		{"negative stock", product.Input{Name: "Mug", Stock: -1}, product.ErrInvalidStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestProductService(&stubRefs{})

			_, err := svc.Create(context.Background(), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Empty(t, store.InsertCalls)
		})
	}
}

func TestService_Update_ReturnsReplacedImage(t *testing.T) {
	svc, _, _ := newTestProductService(&stubRefs{})
	ctx := context.Background()
	p, err := svc.Create(ctx, product.Input{Name: "Mug", Price: decimal.NewFromInt(5), ImageURL: "/uploads/old.png"})
	require.NoError(t, err)

	updated, replaced, err := svc.Update(ctx, p.ProductID, product.Patch{
		Price:    ptr(decimal.NewFromInt(7)),
		ImageURL: ptr("/uploads/new.png"),
	})

	require.NoError(t, err)
	assert.Equal(t, "/uploads/old.png", replaced)
	assert.Equal(t, "/uploads/new.png", updated.ImageURL)
	assert.Equal(t, "7", updated.Price.String())
	assert.Equal(t, "Mug", updated.Name)

	_, replaced, err = svc.Update(ctx, p.ProductID, product.Patch{Name: ptr("Big Mug")})
	require.NoError(t, err)
	assert.Empty(t, replaced)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, store, _ := newTestProductService(&stubRefs{})

	_, _, err := svc.Update(context.Background(), "missing", product.Patch{Name: ptr("x")})

	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Empty(t, store.UpdateCalls)
}

func TestService_GetActiveAndSearch(t *testing.T) {
	svc, _, _ := newTestProductService(&stubRefs{})
	ctx := context.Background()
	visible, err := svc.Create(ctx, product.Input{Name: "Green Tea", Description: "loose leaf"})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, product.Input{Name: "Black Tea", IsActive: ptr(false)})
	require.NoError(t, err)

	_, err = svc.GetActive(ctx, hidden.ProductID)
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	got, err := svc.GetActive(ctx, visible.ProductID)
	require.NoError(t, err)
	assert.Equal(t, visible.ProductID, got.ProductID)

	results, err := svc.Search(ctx, "TEA")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, visible.ProductID, results[0].ProductID)

	results, err = svc.Search(ctx, "LEAF")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_Delete_Unreferenced(t *testing.T) {
	refs := &stubRefs{}
	svc, store, publisher := newTestProductService(refs)
	ctx := context.Background()
	p, err := svc.Create(ctx, product.Input{Name: "Mug"})
	require.NoError(t, err)

	result, err := svc.Delete(ctx, p.ProductID)

	require.NoError(t, err)
	assert.False(t, result.SoftDeleted)
	assert.Equal(t, p.ProductID, result.Product.ProductID)
	assert.Equal(t, 1, refs.calls)
	assert.Equal(t, []string{p.ProductID}, store.DeleteCalls)
	_, ok := store.GetData(p.ProductID)
	assert.False(t, ok)
	assert.Equal(t, []string{product.EventProductCreated, product.EventProductDeleted}, publisher.EventTypes())
}

func TestService_Delete_ReferencedProductIsKept(t *testing.T) {
	refs := &stubRefs{inUse: true}
	svc, store, _ := newTestProductService(refs)
	ctx := context.Background()
	p, err := svc.Create(ctx, product.Input{Name: "Mug"})
	require.NoError(t, err)

	result, err := svc.Delete(ctx, p.ProductID)

	assert.ErrorIs(t, err, product.ErrProductInUse)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Nil(t, result)
	assert.Empty(t, store.DeleteCalls)
	_, ok := store.GetData(p.ProductID)
	assert.True(t, ok)
}

func TestService_Delete_ReferenceCheckFailureBlocksDelete(t *testing.T) {
	refs := &stubRefs{err: apperror.Storage("exists", errors.New("timeout"))}
	svc, store, _ := newTestProductService(refs)
	ctx := context.Background()
	p, err := svc.Create(ctx, product.Input{Name: "Mug"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, p.ProductID)

	assert.ErrorIs(t, err, apperror.ErrStorage)
	assert.Empty(t, store.DeleteCalls)
}

func TestService_Delete_NotFound(t *testing.T) {
	refs := &stubRefs{}
	svc, store, _ := newTestProductService(refs)

	_, err := svc.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Zero(t, refs.calls)
	assert.Empty(t, store.DeleteCalls)
}

func TestService_Delete_SoftDeleteDeactivates(t *testing.T) {
	refs := &stubRefs{inUse: true}
	svc, store, publisher := newTestProductService(refs, product.WithSoftDelete(true))
	ctx := context.Background()
	p, err := svc.Create(ctx, product.Input{Name: "Mug"})
	require.NoError(t, err)

	result, err := svc.Delete(ctx, p.ProductID)

	require.NoError(t, err)
	assert.True(t, result.SoftDeleted)
	assert.Zero(t, refs.calls)
	assert.Empty(t, store.DeleteCalls)
	stored, ok := store.GetData(p.ProductID)
	require.True(t, ok)
	assert.False(t, stored.IsActive)
	assert.Contains(t, publisher.EventTypes(), product.EventProductDeactivated)
}

func TestService_Delete_GuardedByRealOrders(t *testing.T) {
	products := mocks.NewMockProductStore()
	orders := mocks.NewMockOrderStore()
	publisher := mocks.NewMockPublisher()
	orderSvc := order.NewService(orders, products, publisher)
	productSvc := product.NewService(products, orderSvc, publisher)
	ctx := context.Background()

	p, err := productSvc.Create(ctx, product.Input{Name: "Mug", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	o, err := orderSvc.CreateForUser(ctx, "user-1", []order.RequestedItem{{ProductID: p.ProductID, Quantity: 1}})
	require.NoError(t, err)

	_, err = productSvc.Delete(ctx, p.ProductID)
	assert.ErrorIs(t, err, product.ErrProductInUse)
	assert.Empty(t, products.DeleteCalls)

	_, err = orderSvc.RemoveItem(ctx, o.OrderID, p.ProductID, "user-1")
	require.NoError(t, err)

	_, err = productSvc.Delete(ctx, p.ProductID)
	require.NoError(t, err)
	_, ok := products.GetData(p.ProductID)
	assert.False(t, ok)
}
