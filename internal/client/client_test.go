package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{"code": http.StatusText(status), "message": message},
	})
}

// fakeAPI answers a handful of routes the way the server does
func fakeAPI(t *testing.T) (*httptest.Server, uuid.UUID) {
	t.Helper()
	adminID := uuid.New()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret123" {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeJSON(w, http.StatusOK, AuthResponse{
			User:         User{ID: adminID, Name: "Admin", Email: body["email"], IsAdmin: true},
			Token:        "access-1",
			RefreshToken: "refresh-1",
		})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": "access-2"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "internal server error")
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}
		writeJSON(w, http.StatusOK, domain.EmptyCart(adminID))
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Hoodie", q.Get("category"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Empty(t, q.Get("pageSize"))
		writeJSON(w, http.StatusOK, ProductPage{Products: []*domain.Product{{Name: "Cozy Hoodie"}}, Page: 2, Total: 3})
	})
	mux.HandleFunc("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, "not enough stock for Hoodie. Available: 2")
	})
	mux.HandleFunc("POST /api/upload", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		writeJSON(w, http.StatusOK, map[string]string{"message": "Image uploaded", "path": "/uploads/" + header.Filename})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, adminID
}

func TestSessionLifecycle(t *testing.T) {
	srv, adminID := fakeAPI(t)
	c := New(srv.URL)
	sess := NewSession()
	ctx := context.Background()

	assert.False(t, sess.Authenticated())
	assert.False(t, sess.IsAdmin())

	_, err := c.Login(ctx, sess, "admin@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.True(t, sess.IsAdmin())
	assert.Equal(t, "refresh-1", sess.RefreshToken())

	user, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, adminID, user.ID)

	// The stale token is rejected and the session dropped
	_, err = c.Cart(ctx, sess)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.RefreshToken())
}

func TestRefreshKeepsUser(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := New(srv.URL)
	sess := NewSession()
	ctx := context.Background()

	_, err := c.Login(ctx, sess, "admin@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, c.Refresh(ctx, sess))
	assert.Equal(t, "access-2", sess.Token())

	cart, err := c.Cart(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, sess.IsAdmin())
}

func TestLogoutClearsEvenOnFailure(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := New(srv.URL)
	sess := NewSession()
	ctx := context.Background()

	_, err := c.Login(ctx, sess, "admin@example.com", "secret123")
	require.NoError(t, err)

	err = c.Logout(ctx, sess)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.False(t, sess.Authenticated())
}

func TestAPIErrorDecoding(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := New(srv.URL)
	sess := NewSession()
	ctx := context.Background()

	_, err := c.Login(ctx, sess, "admin@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Code)
	assert.Equal(t, "invalid email or password", apiErr.Message)
	assert.False(t, sess.Authenticated())

	sess.Set("access-2", "refresh-1", User{ID: uuid.New()})
	_, err = c.AddToCart(ctx, sess, CartItemInput{ProductID: uuid.New(), Quantity: 5})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not enough stock for Hoodie. Available: 2", apiErr.Message)
	assert.True(t, sess.Authenticated(), "non-401 errors keep the session")

	err = c.Health(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, http.StatusText(http.StatusNotFound), apiErr.Message)
}

func TestListProductsEncodesQuery(t *testing.T) {
	srv, _ := fakeAPI(t)
	page, err := New(srv.URL).ListProducts(context.Background(), ProductQuery{Category: "Hoodie", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Cozy Hoodie", page.Products[0].Name)
}

func TestUploadImage(t *testing.T) {
	srv, _ := fakeAPI(t)
	sess := NewSession()
	sess.Set("access-2", "refresh-1", User{ID: uuid.New(), IsAdmin: true})

	path, err := New(srv.URL).UploadImage(context.Background(), sess, "photo.png", strings.NewReader("\x89PNG"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photo.png", path)
}
