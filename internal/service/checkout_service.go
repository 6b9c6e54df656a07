package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("storefront/internal/service")

// PlaceOrderInput is the checkout request. Any client-side items or prices
// sent alongside are ignored; the order is built from the stored cart.
type PlaceOrderInput struct {
	ShippingAddress    *domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod      string                  `json:"paymentMethod"`
	GiftWrapped        bool                    `json:"giftWrapped"`
	MessageForDelivery string                  `json:"messageForDelivery"`
}

func (in PlaceOrderInput) validate() error {
	addr := in.ShippingAddress
	if addr == nil || strings.TrimSpace(addr.RecipientName) == "" || strings.TrimSpace(addr.PhoneNumber) == "" {
		return ErrMissingShipping
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return ErrMissingPayment
	}
	for _, field := range []string{addr.Address, addr.City, addr.PostalCode, addr.Country} {
		if strings.TrimSpace(field) == "" {
			return ErrIncompleteAddress
		}
	}
	return nil
}

// CheckoutService turns a cart into an order
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*domain.Order, error)
}

type checkoutService struct {
	tx      repository.Transactor
	catalog cache.Catalog
	logger  *zap.Logger
	now     func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(tx repository.Transactor, catalog cache.Catalog, logger *zap.Logger) CheckoutService {
	if catalog == nil {
		catalog = cache.NewNoop()
	}
	return &checkoutService{
		tx:      tx,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// PlaceOrder runs the whole checkout in one transaction: lock the cart,
// conditionally decrement every line's stock, snapshot current product data,
// price the order, insert it and empty the cart. Any failure rolls all of
// it back.
func (s *checkoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout.PlaceOrder",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	if err := input.validate(); err != nil {
		metrics.RecordCheckout(metrics.OutcomeRejected, 0)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var order *domain.Order
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		cart, err := repos.Carts.LockByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				return ErrEmptyCart
			}
			return fmt.Errorf("failed to lock cart: %w", err)
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		items := make([]domain.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			current, err := repos.Products.DecrementStock(ctx, line.ProductID, line.Quantity)
			if errors.Is(err, repository.ErrStockConflict) {
				product, findErr := repos.Products.FindByID(ctx, line.ProductID)
				if findErr != nil {
					return fmt.Errorf("product %s: %w", line.ProductID, findErr)
				}
				return &StockError{Product: product.Name, Available: product.Stock}
			}
			if err != nil {
				return err
			}

			items = append(items, domain.OrderItem{
				ProductID: current.ID,
				Name:      current.Name,
				Image:     current.Image,
				Price:     current.Price,
				Quantity:  line.Quantity,
				Size:      line.Size,
				Color:     line.Color,
			})
		}

		now := s.now()
		order = &domain.Order{
			ID:                 uuid.New(),
			UserID:             userID,
			Items:              items,
			ShippingAddress:    *input.ShippingAddress,
			PaymentMethod:      strings.TrimSpace(input.PaymentMethod),
			MessageForDelivery: input.MessageForDelivery,
			GiftWrapped:        input.GiftWrapped,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		ComputeTotals(items).Apply(order)

		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}

		return repos.Carts.ClearItems(ctx, cart.ID)
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		switch {
		case errors.Is(err, ErrInsufficientStock):
			metrics.RecordCheckout(metrics.OutcomeInsufficientStock, 0)
			return nil, err
		case errors.Is(err, ErrEmptyCart), errors.Is(err, repository.ErrProductNotFound):
			metrics.RecordCheckout(metrics.OutcomeRejected, 0)
			return nil, err
		}

		metrics.RecordCheckout(metrics.OutcomeError, 0)
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Stock counts changed, so cached catalog pages are stale
	s.catalog.Invalidate(ctx)
	metrics.RecordCheckout(metrics.OutcomePlaced, order.TotalPrice)

	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.lines", len(order.Items)),
		attribute.Float64("order.total", order.TotalPrice),
	)
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.TotalPrice),
	)

	return order, nil
}
