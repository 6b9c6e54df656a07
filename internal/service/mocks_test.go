package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the database shared by the mock
// repositories below
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
	carts    map[uuid.UUID]*memCart // by user id
	orders   map[uuid.UUID]domain.Order
	users    map[uuid.UUID]domain.User
	tokens   map[string]domain.RefreshToken

	// failOrderCreate makes the next order insert fail
	failOrderCreate error
}

type memCart struct {
	header domain.Cart
	items  []domain.CartItem
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]domain.Product),
		carts:    make(map[uuid.UUID]*memCart),
		orders:   make(map[uuid.UUID]domain.Order),
		users:    make(map[uuid.UUID]domain.User),
		tokens:   make(map[string]domain.RefreshToken),
	}
}

type memSnapshot struct {
	products map[uuid.UUID]domain.Product
	carts    map[uuid.UUID]*memCart
	orders   map[uuid.UUID]domain.Order
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		products: make(map[uuid.UUID]domain.Product, len(s.products)),
		carts:    make(map[uuid.UUID]*memCart, len(s.carts)),
		orders:   make(map[uuid.UUID]domain.Order, len(s.orders)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.carts {
		snap.carts[k] = &memCart{header: v.header, items: append([]domain.CartItem(nil), v.items...)}
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
}

func (s *memStore) repositories() repository.Repositories {
	return repository.Repositories{
		Products: &mockProductRepository{s},
		Carts:    &mockCartRepository{s},
		Orders:   &mockOrderRepository{s},
	}
}

// mockTransactor restores the store snapshot when the unit of work fails
type mockTransactor struct {
	store *memStore
}

func (t *mockTransactor) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	t.store.mu.Lock()
	snap := t.store.snapshot()
	t.store.mu.Unlock()

	if err := fn(t.store.repositories()); err != nil {
		t.store.mu.Lock()
		t.store.restore(snap)
		t.store.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) addProduct(name string, price float64, stock int) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.Product{ID: uuid.New(), Name: name, Image: "/images/" + name + ".jpg", Price: price, Stock: stock, CreatedAt: time.Now()}
	p.Normalize()
	s.products[p.ID] = p
	return p
}

func (s *memStore) stockOf(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

type mockProductRepository struct{ s *memStore }

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	product.Normalize()
	m.s.products[product.ID] = *product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	product.Normalize()
	product.UpdatedAt = time.Now()
	m.s.products[product.ID] = *product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.s.products, id)
	for _, cart := range m.s.carts {
		kept := cart.items[:0]
		for _, item := range cart.items {
			if item.ProductID != id {
				kept = append(kept, item)
			}
		}
		cart.items = kept
	}
	return nil
}

func (m *mockProductRepository) DeleteAll(ctx context.Context) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.products = make(map[uuid.UUID]domain.Product)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	matched := []*domain.Product{}
	for _, p := range m.s.products {
		p := p
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		q := strings.ToLower(filter.Query)
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		matched = append(matched, &p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	start := (filter.Page - 1) * filter.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.ProductSummary, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok || p.Stock < quantity {
		return nil, repository.ErrStockConflict
	}
	p.Stock -= quantity
	m.s.products[id] = p
	return p.Summary(), nil
}

type mockCartRepository struct{ s *memStore }

func (m *mockCartRepository) view(cart *memCart) *domain.Cart {
	out := cart.header
	out.Items = []domain.CartItem{}
	for _, item := range cart.items {
		p, ok := m.s.products[item.ProductID]
		if !ok {
			continue
		}
		item.Product = p.Summary()
		out.Items = append(out.Items, item)
	}
	return &out
}

func (m *mockCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cart, ok := m.s.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return m.view(cart), nil
}

func (m *mockCartRepository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	m.s.mu.Lock()
	if _, ok := m.s.carts[userID]; !ok {
		m.s.carts[userID] = &memCart{header: domain.Cart{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}}
	}
	m.s.mu.Unlock()
	return m.FindByUserID(ctx, userID)
}

func (m *mockCartRepository) LockByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return m.FindByUserID(ctx, userID)
}

func (m *mockCartRepository) byID(cartID uuid.UUID) *memCart {
	for _, cart := range m.s.carts {
		if cart.header.ID == cartID {
			return cart
		}
	}
	return nil
}

func (m *mockCartRepository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*domain.CartItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if cart := m.byID(cartID); cart != nil {
		for _, item := range cart.items {
			if item.ID == itemID {
				return &item, nil
			}
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (m *mockCartRepository) UpsertItem(ctx context.Context, cartID uuid.UUID, item *domain.CartItem) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cart := m.byID(cartID)
	if cart == nil {
		return repository.ErrCartNotFound
	}
	for i := range cart.items {
		if cart.items[i].Matches(item.ProductID, item.Size, item.Color) {
			cart.items[i].Quantity += item.Quantity
			item.ID = cart.items[i].ID
			item.Quantity = cart.items[i].Quantity
			return nil
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cart.items = append(cart.items, *item)
	return nil
}

func (m *mockCartRepository) SetItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if cart := m.byID(cartID); cart != nil {
		for i := range cart.items {
			if cart.items[i].ID == itemID {
				cart.items[i].Quantity = quantity
				return nil
			}
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockCartRepository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if cart := m.byID(cartID); cart != nil {
		for i := range cart.items {
			if cart.items[i].ID == itemID {
				cart.items = append(cart.items[:i], cart.items[i+1:]...)
				return nil
			}
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *mockCartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if cart := m.byID(cartID); cart != nil {
		cart.items = nil
	}
	return nil
}

type mockOrderRepository struct{ s *memStore }

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.failOrderCreate; err != nil {
		m.s.failOrderCreate = nil
		return err
	}
	m.s.orders[order.ID] = *order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return &o, nil
}

func (m *mockOrderRepository) sorted(keep func(domain.Order) bool) []*domain.Order {
	out := []*domain.Order{}
	for _, o := range m.s.orders {
		o := o
		if keep(o) {
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.sorted(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	orders := m.sorted(func(domain.Order) bool { return true })
	for _, o := range orders {
		u := m.s.users[o.UserID]
		o.User = &domain.OrderUser{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return orders, nil
}

func (m *mockOrderRepository) mutate(id uuid.UUID, fn func(*domain.Order)) (*domain.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	fn(&o)
	m.s.orders[id] = o
	return &o, nil
}

func (m *mockOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, result *domain.PaymentResult, paidAt time.Time) (*domain.Order, error) {
	return m.mutate(id, func(o *domain.Order) {
		o.IsPaid = true
		o.PaidAt = &paidAt
		o.PaymentResult = result
	})
}

func (m *mockOrderRepository) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (*domain.Order, error) {
	return m.mutate(id, func(o *domain.Order) {
		o.IsDelivered = true
		o.DeliveredAt = &deliveredAt
	})
}

func (m *mockOrderRepository) UpdateAdminTracking(ctx context.Context, id uuid.UUID, tracking domain.AdminTracking) (*domain.Order, error) {
	return m.mutate(id, func(o *domain.Order) { applyTracking(o, tracking) })
}

type mockUserRepository struct{ s *memStore }

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	m.s.users[user.ID] = *user
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for _, u := range m.s.users {
		if u.Email == user.Email && u.ID != user.ID {
			return repository.ErrUserAlreadyExists
		}
	}
	m.s.users[user.ID] = *user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

type mockRefreshTokenRepository struct{ s *memStore }

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.tokens[token.Token] = *token
	return nil
}

func (m *mockRefreshTokenRepository) FindValid(ctx context.Context, token string, now time.Time) (*domain.RefreshToken, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tokens[token]
	switch {
	case !ok:
		return nil, repository.ErrRefreshTokenNotFound
	case t.Revoked:
		return nil, repository.ErrRefreshTokenRevoked
	case !now.Before(t.ExpiresAt):
		return nil, repository.ErrRefreshTokenExpired
	}
	return &t, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tokens[token]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	t.Revoked = true
	m.s.tokens[token] = t
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for k, t := range m.s.tokens {
		if t.UserID == userID {
			t.Revoked = true
			m.s.tokens[k] = t
		}
	}
	return nil
}

// applyTracking copies the flags present in t onto o
func applyTracking(o *domain.Order, t domain.AdminTracking) {
	if t.PaymentConfirmedByAdmin != nil {
		o.PaymentConfirmedByAdmin = *t.PaymentConfirmedByAdmin
	}
	if t.OrderPlacedWithVendor != nil {
		o.OrderPlacedWithVendor = *t.OrderPlacedWithVendor
	}
	if t.FulfilmentDone != nil {
		o.FulfilmentDone = *t.FulfilmentDone
	}
}
