package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidProduct    = errors.New("price and stock must not be negative")

	ErrMissingShipping   = errors.New("shipping address, recipient name, or phone number is missing")
	ErrIncompleteAddress = errors.New("shipping address must include address, city, postal code and country")
	ErrMissingPayment    = errors.New("payment method is missing")
	ErrEmptyCart         = errors.New("no items in cart to create an order")
	ErrNotOrderOwner     = errors.New("not authorized to view this order")
)

// StockError reports a request for more units than a product holds. It
// matches ErrInsufficientStock under errors.Is.
type StockError struct {
	Product   string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %s. Available: %d", e.Product, e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
