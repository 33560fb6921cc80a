package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/port"
	"github.com/agrohub/marketplace/internal/repository"
)

// fakeCartStore mirrors the Redis store semantics in memory: reads
// soft-fail, writes can be forced to fail.
type fakeCartStore struct {
	mu    sync.Mutex
	carts map[int64][]domain.CartLine

	setErr   error
	clearErr error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[int64][]domain.CartLine{}}
}

func (s *fakeCartStore) Get(_ context.Context, userID int64) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, len(s.carts[userID]))
	copy(lines, s.carts[userID])

	return domain.Cart{UserID: userID, Lines: lines}, nil
}

func (s *fakeCartStore) Set(_ context.Context, cart domain.Cart) error {
	if s.setErr != nil {
		return s.setErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.UserID] = cart.Lines
	return nil
}

func (s *fakeCartStore) Clear(_ context.Context, userID int64) error {
	if s.clearErr != nil {
		return s.clearErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *fakeCartStore) Add(ctx context.Context, userID int64, line domain.CartLine) error {
	cart, _ := s.Get(ctx, userID)
	cart.Upsert(line)
	return s.Set(ctx, cart)
}

func (s *fakeCartStore) Remove(ctx context.Context, userID int64, productID int64) error {
	cart, _ := s.Get(ctx, userID)
	cart.Remove(productID)
	return s.Set(ctx, cart)
}

type fakeProductRepo struct {
	products map[int64]domain.Product

	decrementErr error
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[int64]domain.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return domain.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) GetProducts(_ context.Context, productIDs []int64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) LockProducts(ctx context.Context, productIDs []int64) ([]domain.Product, error) {
	return r.GetProducts(ctx, productIDs)
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, productID int64, quantity int) error {
	if r.decrementErr != nil {
		return r.decrementErr
	}

	p, ok := r.products[productID]
	if !ok || p.StockQuantity < quantity {
		return repository.ErrStockConflict
	}

	p.StockQuantity -= quantity
	p.Status = domain.ProductStatusFor(p.StockQuantity)
	r.products[productID] = p
	return nil
}

type fakeOrderRepo struct {
	orders map[int64]domain.Order
	nextID int64
	itemID int64
	base   time.Time
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: map[int64]domain.Order{},
		base:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeOrderRepo) GetOrder(_ context.Context, orderID int64) (domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) InsertOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	if len(order.Items) == 0 {
		return domain.Order{}, fmt.Errorf("no items in order")
	}

	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = r.base.Add(time.Duration(r.nextID) * time.Minute)
	order.OrderNumber = domain.BuildOrderNumber(order.ID, order.CreatedAt)

	items := make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		r.itemID++
		item.ID = r.itemID
		item.OrderID = order.ID
		items[i] = item
	}
	order.Items = items

	r.orders[order.ID] = order
	return order, nil
}

func (r *fakeOrderRepo) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	matches := func(o domain.Order) bool {
		in := func(ids []int64, id int64) bool {
			if len(ids) == 0 {
				return true
			}
			for _, x := range ids {
				if x == id {
					return true
				}
			}
			return false
		}

		if !in(filter.IDs, o.ID) || !in(filter.UserIDs, o.UserID) || !in(filter.VendorIDs, o.VendorID) {
			return false
		}

		if len(filter.Statuses) > 0 {
			found := false
			for _, s := range filter.Statuses {
				if s == o.Status {
					found = true
				}
			}
			if !found {
				return false
			}
		}

		return true
	}

	var out []domain.Order
	for _, o := range r.orders {
		if matches(o) {
			out = append(out, o)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, repository.ErrNotFound
	}

	o.Status = status
	r.orders[orderID] = o
	return o, nil
}

// fakeTxManager snapshots both repos before fn and restores them when fn
// fails, emulating a rolled-back transaction.
type fakeTxManager struct {
	orders   *fakeOrderRepo
	products *fakeProductRepo

	// productsFn, when set, is handed to fn instead of products. The
	// snapshot still covers products so wrappers roll back too.
	productsFn port.ProductRepository

	beginErr error
}

func (m *fakeTxManager) WithinTx(_ context.Context, fn func(port.OrderRepository, port.ProductRepository) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}

	ordersSnapshot := make(map[int64]domain.Order, len(m.orders.orders))
	for k, v := range m.orders.orders {
		ordersSnapshot[k] = v
	}
	nextID, itemID := m.orders.nextID, m.orders.itemID

	productsSnapshot := make(map[int64]domain.Product, len(m.products.products))
	for k, v := range m.products.products {
		productsSnapshot[k] = v
	}

	productsRepo := port.ProductRepository(m.products)
	if m.productsFn != nil {
		productsRepo = m.productsFn
	}

	if err := fn(m.orders, productsRepo); err != nil {
		m.orders.orders = ordersSnapshot
		m.orders.nextID, m.orders.itemID = nextID, itemID
		m.products.products = productsSnapshot
		return err
	}

	return nil
}

type fakeUserRepo struct {
	users map[int64]domain.User
}

func (r *fakeUserRepo) GetUser(_ context.Context, userID int64) (domain.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListCompanyVendorIDs(_ context.Context, companyID int64) ([]int64, error) {
	var ids []int64
	for _, u := range r.users {
		if u.Role == domain.RoleVendor && u.CompanyID != nil && *u.CompanyID == companyID {
			ids = append(ids, u.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type sentSMS struct {
	Phone string
	Text  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, phone, text string) error {
	if n.err != nil {
		return n.err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentSMS{Phone: phone, Text: text})
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
}

func (a *fakeAudit) Record(_ context.Context, entry domain.AuditEntry) error {
	if a.err != nil {
		return a.err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}
