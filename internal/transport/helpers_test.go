package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type testUsers map[uuid.UUID]*domain.User

func (u testUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

// testAPI is a router with the real auth and admin middleware in front of
// whatever handlers a test registers
type testAPI struct {
	router    chi.Router
	auth      func(http.Handler) http.Handler
	admin     func(http.Handler) http.Handler
	users     testUsers
	adminID   uuid.UUID
	shopperID uuid.UUID
}

func newTestAPI() *testAPI {
	adminID, shopperID := uuid.New(), uuid.New()
	users := testUsers{
		adminID:   {ID: adminID, Name: "Admin", Email: "admin@example.com", IsAdmin: true},
		shopperID: {ID: shopperID, Name: "Shopper", Email: "shopper@example.com"},
	}
	return &testAPI{
		router:    chi.NewRouter(),
		auth:      middleware.AuthMiddleware(testSecret, zap.NewNop()),
		admin:     middleware.RequireAdmin(users, zap.NewNop()),
		users:     users,
		adminID:   adminID,
		shopperID: shopperID,
	}
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// do sends a JSON request, authenticated as userID unless it is uuid.Nil
func (a *testAPI) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Could not decode response %q: %v", w.Body.String(), err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response middleware.ErrorResponse
	decodeBody(t, w, &response)
	return response.Error.Message
}
