package transport

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler serves the catalog
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog routes; writes are admin only
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// queryInt reads a numeric query parameter; absent or malformed values are 0
// and fall back to the listing defaults
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

// List returns one page of products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.productService.List(r.Context(), service.ListProductsQuery{
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "pageSize"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "List products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Get returns a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a product owned by the calling admin
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUserID(w, r, h.logger)
	if !ok {
		return
	}

	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.Create(r.Context(), adminID, input)
	if err != nil {
		respondServiceError(w, h.logger, err, "Create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update applies the provided product fields
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err, "Update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product removed"})
}
