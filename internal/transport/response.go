package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageResponse is the body of operations that only report success
type MessageResponse struct {
	Message string `json:"message"`
}

type errorMapping struct {
	target error
	status int
}

// Ordered: the first matching sentinel decides the status
var errorMappings = []errorMapping{
	{repository.ErrProductNotFound, http.StatusNotFound},
	{repository.ErrCartNotFound, http.StatusNotFound},
	{repository.ErrCartItemNotFound, http.StatusNotFound},
	{repository.ErrOrderNotFound, http.StatusNotFound},
	{repository.ErrUserNotFound, http.StatusNotFound},

	{service.ErrInsufficientStock, http.StatusBadRequest},
	{service.ErrInvalidQuantity, http.StatusBadRequest},
	{service.ErrInvalidProduct, http.StatusBadRequest},
	{service.ErrMissingShipping, http.StatusBadRequest},
	{service.ErrIncompleteAddress, http.StatusBadRequest},
	{service.ErrMissingPayment, http.StatusBadRequest},
	{service.ErrEmptyCart, http.StatusBadRequest},
	{repository.ErrUserAlreadyExists, http.StatusBadRequest},

	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrTokenExpired, http.StatusUnauthorized},
	{service.ErrNotOrderOwner, http.StatusUnauthorized},
}

// respondServiceError maps a service error onto the error envelope. Unknown
// errors are logged and answered with a generic 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, operation string) {
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		logger.Debug(operation+" rejected", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, stockErr.Error())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			logger.Debug(operation+" rejected", zap.Error(err))
			middleware.RespondWithError(w, m.status, m.target.Error())
			return
		}
	}

	logger.Error(operation+" failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

// parseUUIDParam reads a path parameter as a UUID, answering 400 when it is
// malformed
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+label+" id")
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID returns the authenticated user, answering 401 when the auth
// middleware did not run
func currentUserID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

func passthrough(next http.Handler) http.Handler { return next }
