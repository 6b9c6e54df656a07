package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the snapshot of a cart taken at checkout. Items and prices never
// change after creation; only the payment, delivery and tracking fields do.
type Order struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"userId"`
	User               *OrderUser      `json:"user,omitempty"`
	Items              []OrderItem     `json:"orderItems"`
	ShippingAddress    ShippingAddress `json:"shippingAddress"`
	PaymentMethod      string          `json:"paymentMethod"`
	MessageForDelivery string          `json:"messageForDelivery"`
	GiftWrapped        bool            `json:"giftWrapped"`

	// Admin tracking flags are set by hand and are independent of
	// IsPaid and IsDelivered.
	PaymentConfirmedByAdmin bool `json:"paymentConfirmedByAdmin"`
	OrderPlacedWithVendor   bool `json:"orderPlacedWithVendor"`
	FulfilmentDone          bool `json:"fulfilmentDone"`

	IsPaid        bool           `json:"isPaid"`
	PaidAt        *time.Time     `json:"paidAt,omitempty"`
	PaymentResult *PaymentResult `json:"paymentResult,omitempty"`
	IsDelivered   bool           `json:"isDelivered"`
	DeliveredAt   *time.Time     `json:"deliveredAt,omitempty"`

	ItemsPrice    float64 `json:"itemsPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TotalPrice    float64 `json:"totalPrice"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem is a denormalized copy of a purchased product line
type OrderItem struct {
	ProductID uuid.UUID `json:"product"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

// ShippingAddress is where an order is delivered
type ShippingAddress struct {
	RecipientName            string `json:"recipientName"`
	PhoneNumber              string `json:"phoneNumber"`
	Address                  string `json:"address"`
	AddressLaneOrHouseNumber string `json:"addressLaneOrHouseNumber,omitempty"`
	City                     string `json:"city"`
	PostalCode               string `json:"postalCode"`
	Country                  string `json:"country"`
}

// PaymentResult is the operator- or client-supplied payment confirmation,
// stored as given.
type PaymentResult struct {
	ID           string `json:"id,omitempty"`
	Status       string `json:"status,omitempty"`
	UpdateTime   string `json:"update_time,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
}

// OrderUser is the buyer summary attached to admin order listings
type OrderUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AdminTracking is a partial update of the admin tracking flags. Nil fields
// are left untouched.
type AdminTracking struct {
	PaymentConfirmedByAdmin *bool `json:"paymentConfirmedByAdmin"`
	OrderPlacedWithVendor   *bool `json:"orderPlacedWithVendor"`
	FulfilmentDone          *bool `json:"fulfilmentDone"`
}

// IsEmpty reports whether no flag is set in the update
func (t AdminTracking) IsEmpty() bool {
	return t.PaymentConfirmedByAdmin == nil && t.OrderPlacedWithVendor == nil && t.FulfilmentDone == nil
}
