package transport

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/service"

	"github.com/google/uuid"
)

// The stubs record their last call and return whatever the test set. An
// unset func panics, which fails the test that reached it unexpectedly.

type stubUserService struct {
	service.UserService
	register      func(name, email, password string) (*service.AuthResult, error)
	login         func(email, password string) (*service.AuthResult, error)
	logout        func(token string) error
	refresh       func(token string) (string, error)
	getUser       func(id uuid.UUID) (*domain.User, error)
	updateProfile func(id uuid.UUID, update service.ProfileUpdate) (*domain.User, string, error)
}

func (s *stubUserService) Register(ctx context.Context, name, email, password string) (*service.AuthResult, error) {
	return s.register(name, email, password)
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return s.login(email, password)
}

func (s *stubUserService) Logout(ctx context.Context, refreshToken string) error {
	return s.logout(refreshToken)
}

func (s *stubUserService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return s.refresh(refreshToken)
}

func (s *stubUserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.getUser(userID)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (*domain.User, string, error) {
	return s.updateProfile(userID, update)
}

type stubProductService struct {
	list   func(q service.ListProductsQuery) (*service.ProductPage, error)
	get    func(id uuid.UUID) (*domain.Product, error)
	create func(createdBy uuid.UUID, in service.ProductInput) (*domain.Product, error)
	update func(id uuid.UUID, in service.ProductInput) (*domain.Product, error)
	delete func(id uuid.UUID) error
}

func (s *stubProductService) List(ctx context.Context, q service.ListProductsQuery) (*service.ProductPage, error) {
	return s.list(q)
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.get(id)
}

func (s *stubProductService) Create(ctx context.Context, createdBy uuid.UUID, in service.ProductInput) (*domain.Product, error) {
	return s.create(createdBy, in)
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, in service.ProductInput) (*domain.Product, error) {
	return s.update(id, in)
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.delete(id)
}

type stubCartService struct {
	get    func(userID uuid.UUID) (*domain.Cart, error)
	add    func(userID uuid.UUID, in service.AddItemInput) (*domain.Cart, error)
	setQty func(userID, itemID uuid.UUID, quantity int) (*domain.Cart, error)
	remove func(userID, itemID uuid.UUID) (*domain.Cart, error)
	clear  func(userID uuid.UUID) error
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return s.get(userID)
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, in service.AddItemInput) (*domain.Cart, error) {
	return s.add(userID, in)
}

func (s *stubCartService) SetItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.Cart, error) {
	return s.setQty(userID, itemID, quantity)
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error) {
	return s.remove(userID, itemID)
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.clear(userID)
}

type stubCheckoutService struct {
	place func(userID uuid.UUID, in service.PlaceOrderInput) (*domain.Order, error)
}

func (s *stubCheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, in service.PlaceOrderInput) (*domain.Order, error) {
	return s.place(userID, in)
}

type stubOrderService struct {
	get       func(viewerID, orderID uuid.UUID) (*domain.Order, error)
	listMine  func(userID uuid.UUID) ([]*domain.Order, error)
	listAll   func() ([]*domain.Order, error)
	markPaid  func(orderID uuid.UUID, result *domain.PaymentResult) (*domain.Order, error)
	delivered func(orderID uuid.UUID) (*domain.Order, error)
	tracking  func(orderID uuid.UUID, t domain.AdminTracking) (*domain.Order, error)
}

func (s *stubOrderService) Get(ctx context.Context, viewerID, orderID uuid.UUID) (*domain.Order, error) {
	return s.get(viewerID, orderID)
}

func (s *stubOrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.listMine(userID)
}

func (s *stubOrderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.listAll()
}

func (s *stubOrderService) MarkPaid(ctx context.Context, orderID uuid.UUID, result *domain.PaymentResult) (*domain.Order, error) {
	return s.markPaid(orderID, result)
}

func (s *stubOrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.delivered(orderID)
}

func (s *stubOrderService) UpdateAdminTracking(ctx context.Context, orderID uuid.UUID, t domain.AdminTracking) (*domain.Order, error) {
	return s.tracking(orderID, t)
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
