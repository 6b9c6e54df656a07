package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the interface for cart data access. A cart row is
// unique per user; its lines are unique per (product, size, color).
type CartRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	FindOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	LockByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*domain.CartItem, error)
	UpsertItem(ctx context.Context, cartID uuid.UUID, item *domain.CartItem) error
	SetItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

type cartRepository struct {
	db DBTX
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db DBTX) CartRepository {
	return &cartRepository{db: db}
}

// FindByUserID loads the user's cart with a product summary on every line
func (r *cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return r.findCart(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID)
}

// LockByUserID loads the cart like FindByUserID but holds a row lock on it
// until the surrounding transaction ends
func (r *cartRepository) LockByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return r.findCart(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *cartRepository) findCart(ctx context.Context, query string, userID uuid.UUID) (*domain.Cart, error) {
	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	items, err := r.loadItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

// FindOrCreate returns the user's cart, creating an empty one on first use
func (r *cartRepository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO carts (id, user_id) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		uuid.New(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return r.FindByUserID(ctx, userID)
}

func (r *cartRepository) loadItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.product_id, ci.quantity, ci.size, ci.color, ci.created_at, ci.updated_at,
		       p.name, p.image, p.price, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		item := domain.CartItem{Product: &domain.ProductSummary{}}
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Quantity,
			&item.Size,
			&item.Color,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Product.Name,
			&item.Product.Image,
			&item.Product.Price,
			&item.Product.Stock,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.Product.ID = item.ProductID
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// FindItem retrieves a single line of a cart
func (r *cartRepository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT id, product_id, quantity, size, color, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1 AND id = $2
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, cartID, itemID).Scan(
		&item.ID,
		&item.ProductID,
		&item.Quantity,
		&item.Size,
		&item.Color,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// UpsertItem adds the line to the cart, or increments the quantity of the
// line that already holds the same product, size and color. item.ID and
// item.Quantity are set to the stored values.
func (r *cartRepository) UpsertItem(ctx context.Context, cartID uuid.UUID, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, size, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT uq_cart_items_variant
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity, created_at, updated_at
	`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		item.ID,
		cartID,
		item.ProductID,
		item.Quantity,
		item.Size,
		item.Color,
	).Scan(&item.ID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// SetItemQuantity replaces the quantity of one line
func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND id = $2`,
		cartID, itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return expectAffected(result, ErrCartItemNotFound)
}

// RemoveItem deletes one line
func (r *cartRepository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`,
		cartID, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return expectAffected(result, ErrCartItemNotFound)
}

// ClearItems empties the cart; the cart row itself is kept
func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
