package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddItemInput is a request to put a product variant in the cart
type AddItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
	Size      string    `json:"size" validate:"max=50"`
	Color     string    `json:"color" validate:"max=100"`
}

// CartService defines the interface for cart business logic
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*domain.Cart, error)
	SetItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Get returns the user's cart, or an empty one if none was ever created
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return domain.EmptyCart(userID), nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}

func checkStock(product *domain.Product, quantity int) error {
	if quantity > product.Stock {
		return &StockError{Product: product.Name, Available: product.Stock}
	}
	return nil
}

// AddItem merges the variant into the cart. Only the requested quantity is
// checked against stock here; checkout validates the merged line again.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*domain.Cart, error) {
	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := checkStock(product, input.Quantity); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	item := &domain.CartItem{
		ProductID: product.ID,
		Quantity:  input.Quantity,
		Size:      strings.TrimSpace(input.Size),
		Color:     strings.TrimSpace(input.Color),
	}
	if err := s.cartRepo.UpsertItem(ctx, cart.ID, item); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	s.logger.Debug("Cart item added",
		zap.String("user_id", userID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("line_quantity", item.Quantity),
	)

	return s.reload(ctx, userID)
}

// SetItemQuantity replaces the quantity of one line after checking stock
func (s *cartService) SetItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	item, err := s.cartRepo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := checkStock(product, quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.reload(ctx, userID)
}

// RemoveItem deletes one line from the cart
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.reload(ctx, userID)
}

// Clear empties the cart but keeps it
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) reload(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cart: %w", err)
	}
	return cart, nil
}
