package middleware

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserLookup resolves the authenticated user against the store
type UserLookup interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// RequireAdmin lets the request through only when the token's user still
// exists and is an administrator. It must run after AuthMiddleware.
func RequireAdmin(users UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				logger.Warn("User not found in context")
				RespondWithError(w, http.StatusUnauthorized, "not authorized")
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					logger.Warn("Token user no longer exists", zap.String("user_id", userID.String()))
					RespondWithError(w, http.StatusUnauthorized, "not authorized, user not found")
					return
				}
				logger.Error("Failed to resolve user for admin check", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if !user.IsAdmin {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "not authorized as an admin")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
