package service

import (
	"context"
	"sort"
	"sync"

	"github.com/fjod/shoes_shop/internal/cache"
	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/fjod/shoes_shop/internal/publisher"
	"github.com/fjod/shoes_shop/internal/repository"
	"github.com/shopspring/decimal"
)

type mockStore struct {
	m        sync.Mutex
	orders   map[int64]*domain.Order
	products []domain.Product
	users    []domain.User
	nextID   int64
	err      error
	getCalls int
	onGet    func(id int64)
}

func newMockStore() *mockStore {
	return &mockStore{
		orders: make(map[int64]*domain.Order),
		products: []domain.Product{
			{ID: 1, SKU: "A112T4", Name: "Ankle boots", Price: decimal.NewFromInt(100), Stock: 6},
			{ID: 2, SKU: "F635R4", Name: "Derby", Price: decimal.NewFromInt(50), Stock: 13},
			{ID: 3, SKU: "H782T5", Name: "Chelsea", Price: decimal.NewFromInt(30), Stock: 2},
			{ID: 4, SKU: "G783F5", Name: "Boat shoes", Price: decimal.NewFromInt(70), Stock: 0},
		},
		nextID: 1,
	}
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.LineItem(nil), o.Items...)
	return &c
}

func (m *mockStore) CreateOrder(_ context.Context, order *domain.Order) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	stored := copyOrder(order)
	stored.ID = m.nextID
	m.nextID++
	m.orders[stored.ID] = stored
	return stored.ID, nil
}

func (m *mockStore) ReplaceOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.orders[order.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	m.orders[order.ID] = copyOrder(order)
	return nil
}

func (m *mockStore) DeleteOrder(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockStore) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	if m.onGet != nil {
		m.onGet(id)
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (m *mockStore) ListOrders(context.Context) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (m *mockStore) ListStatuses(context.Context) ([]domain.Status, error) {
	return []domain.Status{{ID: 1, Name: "New"}, {ID: 2, Name: "Completed"}}, m.err
}

func (m *mockStore) ListPickupPoints(context.Context) ([]domain.PickupPoint, error) {
	return []domain.PickupPoint{{ID: 1, Address: "Lesnaya st, 1"}}, m.err
}

func (m *mockStore) ListProductsInStock(context.Context) ([]domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Product
	for _, p := range m.products {
		if p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) CountProductLineItems(_ context.Context, productID int64) (int, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, o := range m.orders {
		for _, item := range o.Items {
			if item.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

func (m *mockStore) DeleteProduct(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockStore) GetUserByLogin(_ context.Context, login string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Login == login {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockStore) ListUsersByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []domain.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, m.err
}

func (m *mockStore) CreateUser(_ context.Context, user *domain.User) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for _, u := range m.users {
		if u.Login == user.Login {
			return 0, repository.ErrDuplicateLogin
		}
	}
	u := *user
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, u)
	return u.ID, nil
}

type mockCache struct {
	m       sync.Mutex
	orders  map[int64]*domain.Order
	deleted []int64
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{orders: make(map[int64]*domain.Order)}
}

func (c *mockCache) Get(_ context.Context, id int64) (*domain.Order, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	o, ok := c.orders[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return o, nil
}

func (c *mockCache) Set(_ context.Context, o *domain.Order) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.orders[o.ID] = o
	return nil
}

func (c *mockCache) Delete(_ context.Context, id int64) error {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.orders, id)
	c.deleted = append(c.deleted, id)
	return nil
}

type mockPublisher struct {
	m      sync.Mutex
	events []publisher.Event
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, e publisher.Event) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

type fixture struct {
	store *mockStore
	cache *mockCache
	pub   *mockPublisher
	svc   *OrderService
}

func newFixture() *fixture {
	store := newMockStore()
	c := newMockCache()
	pub := &mockPublisher{}
	return &fixture{
		store: store,
		cache: c,
		pub:   pub,
		svc:   NewOrderService(store, store, store, c, pub),
	}
}
