package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/shoes_shop/internal/cache"
	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/fjod/shoes_shop/internal/publisher"
	"github.com/fjod/shoes_shop/internal/repository"
	"github.com/fjod/shoes_shop/internal/selector"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditorWithForm() *OrderEditor {
	e := NewOrderEditor()
	e.Form = OrderForm{
		CustomerID:    1,
		StatusID:      1,
		PickupPointID: 1,
		OrderDate:     date(2025, 3, 1),
		DeliveryDate:  date(2025, 3, 4),
		PickupCode:    "901",
	}
	return e
}

func TestSave_NewOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := newEditorWithForm()
	require.NoError(t, f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 3}}))

	saved, err := f.svc.Save(ctx, e)
	require.NoError(t, err)

	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, int64(1), e.OrderID())
	assert.False(t, e.IsNew())
	assert.True(t, saved.Total().Equal(decimal.NewFromInt(350)))
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, publisher.EventOrderSaved, f.pub.events[0].Type)
	assert.Equal(t, []int64{1}, f.cache.deleted)
}

func TestSave_EditReplacesLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := newEditorWithForm()
	require.NoError(t, f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 3}}))
	saved, err := f.svc.Save(ctx, e)
	require.NoError(t, err)

	edit, err := f.svc.EditorFor(ctx, saved.ID)
	require.NoError(t, err)
	edit.RemoveItem(2)
	require.NoError(t, edit.SetQuantity(1, 3))

	updated, err := f.svc.Save(ctx, edit)
	require.NoError(t, err)

	assert.Equal(t, saved.ID, updated.ID)
	require.Len(t, updated.Items, 1)
	assert.True(t, updated.Total().Equal(decimal.NewFromInt(300)))
	assert.Len(t, f.store.orders, 1)
}

func TestSave_ValidationFailsBeforePersistence(t *testing.T) {
	f := newFixture()
	e := newEditorWithForm()

	_, err := f.svc.Save(context.Background(), e)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "add at least one product to the order", vErr.Message)
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.pub.events)
}

func TestSave_PersistenceFailureKeepsEditor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := newEditorWithForm()
	require.NoError(t, f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 1, Quantity: 1}}))
	before := e.Items()

	f.store.err = errors.New("connection refused")
	_, err := f.svc.Save(ctx, e)

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, e.IsNew())
	assert.Equal(t, before, e.Items())
	assert.Empty(t, f.pub.events)
}

func TestSave_EditMissingOrder(t *testing.T) {
	f := newFixture()
	e := EditOrder(&domain.Order{
		ID:            77,
		OrderDate:     *date(2025, 3, 1),
		DeliveryDate:  *date(2025, 3, 1),
		PickupCode:    1,
		CustomerID:    1,
		StatusID:      1,
		PickupPointID: 1,
		Items:         []domain.LineItem{{ProductID: 1, ProductName: "Ankle boots", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})

	_, err := f.svc.Save(context.Background(), e)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestSave_PublishFailureDoesNotFailSave(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.pub.err = errors.New("broker down")
	e := newEditorWithForm()
	require.NoError(t, f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 1, Quantity: 1}}))

	_, err := f.svc.Save(ctx, e)
	assert.NoError(t, err)
	assert.Len(t, f.store.orders, 1)
}

func TestApplyLines_SelectorErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := newEditorWithForm()

	err := f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 3, Quantity: 5}})
	var qErr *selector.InvalidQuantityError
	require.ErrorAs(t, err, &qErr)
	assert.Contains(t, err.Error(), "Chelsea: available 2")

	err = f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 4, Quantity: 1}})
	assert.ErrorIs(t, err, selector.ErrUnknownProduct)

	assert.Zero(t, len(e.Items()))
}

func TestConfirmSelection_NothingSelected(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.ConfirmSelection(context.Background(), nil, nil)
	assert.ErrorIs(t, err, selector.ErrNothingSelected)
}

func TestConfirmSelection_ExcludedIsNotOffered(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := newEditorWithForm()
	require.NoError(t, f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 1, Quantity: 1}}))

	_, _, err := f.svc.ConfirmSelection(ctx, e.ExcludedProductIDs(), []Pick{{ProductID: 1, Quantity: 2}})
	assert.ErrorIs(t, err, selector.ErrUnknownProduct)

	sel, err := f.svc.NewSelector(ctx, e.ExcludedProductIDs())
	require.NoError(t, err)
	for _, item := range sel.Items() {
		assert.NotEqual(t, int64(1), item.Product.ID)
	}
}

func TestApplyLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := &domain.Order{
		ID: 9,
		Items: []domain.LineItem{
			{ProductID: 1, ProductName: "Ankle boots", Quantity: 2, UnitPrice: decimal.NewFromInt(80)},
			{ProductID: 2, ProductName: "Derby", Quantity: 1, UnitPrice: decimal.NewFromInt(40)},
		},
	}
	e := EditOrder(stored)

	err := f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 1, Quantity: 3}, {ProductID: 3, Quantity: 2}})
	require.NoError(t, err)

	items := e.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, int64(3), items[1].ProductID)
	assert.True(t, items[1].UnitPrice.Equal(decimal.NewFromInt(30)))
	assert.True(t, e.Total().Equal(decimal.NewFromInt(300)))
}

func TestApplyLines_RejectsDuplicates(t *testing.T) {
	f := newFixture()
	e := newEditorWithForm()

	err := f.svc.ApplyLines(context.Background(), e, []Pick{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 2}})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestApplyLines_InvalidNewLineLeavesEditor(t *testing.T) {
	f := newFixture()
	e := EditOrder(&domain.Order{ID: 9, Items: []domain.LineItem{
		{ProductID: 1, ProductName: "Ankle boots", Quantity: 2, UnitPrice: decimal.NewFromInt(80)},
	}})

	err := f.svc.ApplyLines(context.Background(), e, []Pick{{ProductID: 3, Quantity: 10}})

	var qErr *selector.InvalidQuantityError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, []int64{1}, e.ExcludedProductIDs())
}

func TestDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := newEditorWithForm()
	require.NoError(t, f.svc.ApplyLines(ctx, e, []Pick{{ProductID: 1, Quantity: 1}}))
	saved, err := f.svc.Save(ctx, e)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, saved.ID))
	assert.Empty(t, f.store.orders)
	assert.Equal(t, publisher.EventOrderDeleted, f.pub.events[1].Type)

	assert.ErrorIs(t, f.svc.Delete(ctx, saved.ID), repository.ErrOrderNotFound)
}

func TestDelete_PersistenceError(t *testing.T) {
	f := newFixture()
	f.store.err = errors.New("disk full")

	err := f.svc.Delete(context.Background(), 1)

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "failed to delete order: disk full", err.Error())
}

func TestGetOrder_UsesCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.orders[5] = &domain.Order{ID: 5, StatusName: "New"}

	first, err := f.svc.GetOrder(ctx, 5)
	require.NoError(t, err)
	second, err := f.svc.GetOrder(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.getCalls)
}

func TestGetOrder_InvalidatedDuringLoadIsNotCached(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.orders[5] = &domain.Order{ID: 5, StatusName: "New"}
	f.store.onGet = func(id int64) {
		f.store.onGet = nil
		f.svc.invalidate(ctx, id)
	}

	_, err := f.svc.GetOrder(ctx, 5)
	require.NoError(t, err)

	_, err = f.cache.Get(ctx, 5)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	_, err = f.svc.GetOrder(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.getCalls)
	_, err = f.cache.Get(ctx, 5)
	assert.NoError(t, err)
}

func TestGetOrder_CacheErrorFallsBackToStore(t *testing.T) {
	f := newFixture()
	f.store.orders[5] = &domain.Order{ID: 5}
	f.cache.getErr = errors.New("redis down")

	order, err := f.svc.GetOrder(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), order.ID)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetOrder(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestGetOrder_Concurrent(t *testing.T) {
	f := newFixture()
	f.store.orders[5] = &domain.Order{ID: 5}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := f.svc.GetOrder(context.Background(), 5)
			assert.NoError(t, err)
			assert.Equal(t, int64(5), order.ID)
		}()
	}
	wg.Wait()
}

func TestSummary(t *testing.T) {
	f := newFixture()
	f.store.orders[5] = &domain.Order{ID: 5, StatusName: "New"}

	summary, err := f.svc.Summary(context.Background(), 5)
	require.NoError(t, err)
	assert.Contains(t, summary, "Order #5")
	assert.Contains(t, summary, "no items")
}

func TestFormOptions(t *testing.T) {
	f := newFixture()
	f.store.users = []domain.User{
		{ID: 1, FullName: "Anna", Role: domain.RoleCustomer},
		{ID: 2, FullName: "Boss", Role: domain.RoleAdmin},
	}

	opts, err := f.svc.FormOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts.Customers, 1)
	assert.Equal(t, "Anna", opts.Customers[0].FullName)
	assert.Len(t, opts.Statuses, 2)
	assert.Len(t, opts.PickupPoints, 1)
}
