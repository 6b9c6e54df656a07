package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService defines reads and post-checkout updates of orders
type OrderService interface {
	Get(ctx context.Context, viewerID, orderID uuid.UUID) (*domain.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, result *domain.PaymentResult) (*domain.Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	UpdateAdminTracking(ctx context.Context, orderID uuid.UUID, tracking domain.AdminTracking) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, userRepo repository.UserRepository, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the order to its owner or to an administrator. Anyone else
// gets ErrNotOrderOwner.
func (s *orderService) Get(ctx context.Context, viewerID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.UserID == viewerID {
		return order, nil
	}

	viewer, err := s.userRepo.FindByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotOrderOwner
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !viewer.IsAdmin {
		s.logger.Warn("Order access denied",
			zap.String("order_id", orderID.String()),
			zap.String("viewer_id", viewerID.String()),
		)
		return nil, ErrNotOrderOwner
	}

	return order, nil
}

// ListMine returns the user's orders, newest first
func (s *orderService) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAll returns every order with its buyer, newest first
func (s *orderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// MarkPaid sets isPaid and paidAt and stores the payment payload as given.
// The admin tracking flags are not touched.
func (s *orderService) MarkPaid(ctx context.Context, orderID uuid.UUID, result *domain.PaymentResult) (*domain.Order, error) {
	order, err := s.orderRepo.MarkPaid(ctx, orderID, result, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	s.logger.Info("Order marked paid", zap.String("order_id", orderID.String()))
	return order, nil
}

// MarkDelivered sets isDelivered and deliveredAt
func (s *orderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.MarkDelivered(ctx, orderID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to mark order delivered: %w", err)
	}

	s.logger.Info("Order marked delivered", zap.String("order_id", orderID.String()))
	return order, nil
}

// UpdateAdminTracking writes only the flags present in tracking. An empty
// update returns the order unchanged.
func (s *orderService) UpdateAdminTracking(ctx context.Context, orderID uuid.UUID, tracking domain.AdminTracking) (*domain.Order, error) {
	if tracking.IsEmpty() {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
		return order, nil
	}

	order, err := s.orderRepo.UpdateAdminTracking(ctx, orderID, tracking)
	if err != nil {
		return nil, fmt.Errorf("failed to update order tracking: %w", err)
	}

	s.logger.Info("Order tracking updated", zap.String("order_id", orderID.String()))
	return order, nil
}
