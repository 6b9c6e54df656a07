package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UpdateCartItemRequest sets a line's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// CartResponse wraps a cart mutation result
type CartResponse struct {
	Message string       `json:"message"`
	Cart    *domain.Cart `json:"cart"`
}

// CartHandler serves the caller's cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers the cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Post("/", h.AddItem)
		r.Delete("/clear", h.Clear)
		r.Put("/{itemId}", h.UpdateItem)
		r.Delete("/{itemId}", h.RemoveItem)
	})
}

// Get returns the cart, empty when the user never added anything
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem puts a product variant in the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	var input service.AddItemInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, h.logger, err, "Add cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Message: "Item added to cart", Cart: cart})
}

// UpdateItem sets the quantity of one line
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(w, r, "itemId", "cart item")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	cart, err := h.cartService.SetItemQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		respondServiceError(w, h.logger, err, "Update cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Message: "Cart item updated", Cart: cart})
}

// RemoveItem deletes one line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(w, r, "itemId", "cart item")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Remove cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Message: "Item removed from cart", Cart: cart})
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		respondServiceError(w, h.logger, err, "Clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Cart cleared"})
}
