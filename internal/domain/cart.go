package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the single mutable cart owned by a user
type Cart struct {
	ID        uuid.UUID  `json:"id,omitempty"`
	UserID    uuid.UUID  `json:"user"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
}

// CartItem is one (product, size, color) line of a cart. Size and Color are
// empty when the product has no such option.
type CartItem struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Product   *ProductSummary `json:"product,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// EmptyCart is the shape returned for users that never added anything
func EmptyCart(userID uuid.UUID) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// Matches reports whether the line holds the given product variant
func (i CartItem) Matches(productID uuid.UUID, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}
