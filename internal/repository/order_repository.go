package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access. Items,
// address and prices are written once by Create; the remaining methods only
// touch payment, delivery and tracking columns.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, result *domain.PaymentResult, paidAt time.Time) (*domain.Order, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (*domain.Order, error)
	UpdateAdminTracking(ctx context.Context, id uuid.UUID, tracking domain.AdminTracking) (*domain.Order, error)
}

type orderRepository struct {
	db DBTX
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db DBTX) OrderRepository {
	return &orderRepository{db: db}
}

var orderColumnNames = []string{
	"id", "user_id", "items", "shipping_address", "payment_method",
	"message_for_delivery", "gift_wrapped", "payment_confirmed_by_admin",
	"order_placed_with_vendor", "fulfilment_done", "is_paid", "paid_at",
	"payment_result", "is_delivered", "delivered_at", "items_price",
	"tax_price", "shipping_price", "total_price", "created_at", "updated_at",
}

func orderColumns(alias string) string {
	if alias == "" {
		return strings.Join(orderColumnNames, ", ")
	}
	prefixed := make([]string, len(orderColumnNames))
	for i, name := range orderColumnNames {
		prefixed[i] = alias + "." + name
	}
	return strings.Join(prefixed, ", ")
}

func orderDest(order *domain.Order) []any {
	return []any{
		&order.ID,
		&order.UserID,
		asJSON(&order.Items),
		asJSON(&order.ShippingAddress),
		&order.PaymentMethod,
		&order.MessageForDelivery,
		&order.GiftWrapped,
		&order.PaymentConfirmedByAdmin,
		&order.OrderPlacedWithVendor,
		&order.FulfilmentDone,
		&order.IsPaid,
		&order.PaidAt,
		asJSON(&order.PaymentResult),
		&order.IsDelivered,
		&order.DeliveredAt,
		&order.ItemsPrice,
		&order.TaxPrice,
		&order.ShippingPrice,
		&order.TotalPrice,
		&order.CreatedAt,
		&order.UpdatedAt,
	}
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	if err := row.Scan(orderDest(order)...); err != nil {
		return nil, err
	}
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}
	return order, nil
}

// Create inserts a new order snapshot
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns("") + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	var paymentResult any
	if order.PaymentResult != nil {
		paymentResult = asJSON(order.PaymentResult)
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		asJSON(order.Items),
		asJSON(order.ShippingAddress),
		order.PaymentMethod,
		order.MessageForDelivery,
		order.GiftWrapped,
		order.PaymentConfirmedByAdmin,
		order.OrderPlacedWithVendor,
		order.FulfilmentDone,
		order.IsPaid,
		order.PaidAt,
		paymentResult,
		order.IsDelivered,
		order.DeliveredAt,
		order.ItemsPrice,
		order.TaxPrice,
		order.ShippingPrice,
		order.TotalPrice,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns("") + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// ListByUser retrieves a user's orders, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns("") + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListAll retrieves every order, newest first, with the buyer attached
func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns("o") + `, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		buyer := &domain.OrderUser{}
		dest := append(orderDest(order), &buyer.Name, &buyer.Email)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		buyer.ID = order.UserID
		order.User = buyer
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// MarkPaid records payment and stores the confirmation payload as given.
// Calling it again overwrites the previous payment.
func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID, result *domain.PaymentResult, paidAt time.Time) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $2, payment_result = $3
		WHERE id = $1
		RETURNING ` + orderColumns("")

	var payload any
	if result != nil {
		payload = asJSON(result)
	}

	return r.updateReturning(ctx, query, id, paidAt, payload)
}

// MarkDelivered records delivery time
func (r *orderRepository) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET is_delivered = TRUE, delivered_at = $2
		WHERE id = $1
		RETURNING ` + orderColumns("")

	return r.updateReturning(ctx, query, id, deliveredAt)
}

// UpdateAdminTracking sets only the flags present in tracking
func (r *orderRepository) UpdateAdminTracking(ctx context.Context, id uuid.UUID, tracking domain.AdminTracking) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET payment_confirmed_by_admin = COALESCE($2, payment_confirmed_by_admin),
		    order_placed_with_vendor = COALESCE($3, order_placed_with_vendor),
		    fulfilment_done = COALESCE($4, fulfilment_done)
		WHERE id = $1
		RETURNING ` + orderColumns("")

	return r.updateReturning(ctx, query, id,
		tracking.PaymentConfirmedByAdmin,
		tracking.OrderPlacedWithVendor,
		tracking.FulfilmentDone,
	)
}

func (r *orderRepository) updateReturning(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}
