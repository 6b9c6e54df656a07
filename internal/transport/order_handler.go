package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler serves checkout and order tracking
type OrderHandler struct {
	checkoutService service.CheckoutService
	orderService    service.OrderService
	logger          *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkoutService service.CheckoutService, orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
		logger:          logger,
	}
}

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.PlaceOrder)
		r.Get("/myorders", h.ListMine)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/pay", h.MarkPaid)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Get("/", h.ListAll)
			r.Put("/{id}/deliver", h.MarkDelivered)
			r.Put("/{id}/admin-status", h.UpdateAdminStatus)
		})
	})
}

// decodeOptional decodes a JSON body that may be empty
func decodeOptional(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// PlaceOrder converts the caller's cart into an order
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	var input service.PlaceOrderInput
	if err := decodeOptional(r, &input); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.checkoutService.PlaceOrder(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, h.logger, err, "Place order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// Get returns an order to its owner or an admin
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), userID, orderID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListMine returns the caller's orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMine(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "List my orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// ListAll returns every order with its buyer
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "List orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// MarkPaid records the payment confirmation payload
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	var result domain.PaymentResult
	if err := decodeOptional(r, &result); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.MarkPaid(r.Context(), orderID, &result)
	if err != nil {
		respondServiceError(w, h.logger, err, "Mark order paid")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// MarkDelivered flags the order as delivered
func (h *OrderHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.MarkDelivered(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Mark order delivered")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// UpdateAdminStatus sets the tracking flags present in the body
func (h *OrderHandler) UpdateAdminStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUUIDParam(w, r, "id", "order")
	if !ok {
		return
	}

	var tracking domain.AdminTracking
	if err := decodeOptional(r, &tracking); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateAdminTracking(r.Context(), orderID, tracking)
	if err != nil {
		respondServiceError(w, h.logger, err, "Update order tracking")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
