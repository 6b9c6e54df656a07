package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// AuthResponse is returned by register and login
type AuthResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// ProfileUpdate holds the profile fields to change; empty fields are kept
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// ProductQuery filters and pages a catalog listing. Zero values use the
// server defaults.
type ProductQuery struct {
	Category string
	Query    string
	Page     int
	PageSize int
	Sort     string
	Order    string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("category", q.Category)
	set("q", q.Query)
	set("sort", q.Sort)
	set("order", q.Order)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v
}

// ProductPage is one page of a listing
type ProductPage struct {
	Products []*domain.Product `json:"products"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Total    int               `json:"total"`
}

// ProductInput creates or updates a product; nil and empty fields are
// left to the server
type ProductInput struct {
	Name             string              `json:"name,omitempty"`
	Image            string              `json:"image,omitempty"`
	AdditionalImages []string            `json:"additionalImages,omitempty"`
	Brand            string              `json:"brand,omitempty"`
	Category         string              `json:"category,omitempty"`
	Description      string              `json:"description,omitempty"`
	Price            *float64            `json:"price,omitempty"`
	Stock            *int                `json:"countInStock,omitempty"`
	Sizes            []string            `json:"sizes,omitempty"`
	Colors           []string            `json:"colors,omitempty"`
	ColorImages      []domain.ColorImage `json:"colorImages,omitempty"`
	Variants         []domain.Variant    `json:"variants,omitempty"`
}

// CartItemInput adds a product variant to the cart
type CartItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

type cartResponse struct {
	Message string       `json:"message"`
	Cart    *domain.Cart `json:"cart"`
}

// OrderInput places an order from the stored cart
type OrderInput struct {
	ShippingAddress    domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod      string                 `json:"paymentMethod"`
	GiftWrapped        bool                   `json:"giftWrapped,omitempty"`
	MessageForDelivery string                 `json:"messageForDelivery,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account and signs the session in
func (c *Client) Register(ctx context.Context, sess *Session, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, nil, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	sess.Set(out.Token, out.RefreshToken, out.User)
	return &out, nil
}

// Login signs the session in
func (c *Client) Login(ctx context.Context, sess *Session, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, nil, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	sess.Set(out.Token, out.RefreshToken, out.User)
	return &out, nil
}

// Refresh swaps the session's refresh token for a new access token
func (c *Client) Refresh(ctx context.Context, sess *Session) error {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"refreshToken": sess.RefreshToken()}
	if err := c.do(ctx, sess, http.MethodPost, "/api/auth/refresh", body, &out); err != nil {
		return err
	}
	sess.setToken(out.Token)
	return nil
}

// Logout revokes the refresh token. The session is cleared even when the
// request fails.
func (c *Client) Logout(ctx context.Context, sess *Session) error {
	defer sess.Clear()
	body := map[string]string{"refreshToken": sess.RefreshToken()}
	return c.do(ctx, sess, http.MethodPost, "/api/auth/logout", body, nil)
}

// Profile fetches the signed-in user
func (c *Client) Profile(ctx context.Context, sess *Session) (*User, error) {
	var out User
	if err := c.do(ctx, sess, http.MethodGet, "/api/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	sess.setUser(out)
	return &out, nil
}

// UpdateProfile changes the profile and stores the reissued token
func (c *Client) UpdateProfile(ctx context.Context, sess *Session, update ProfileUpdate) (*User, error) {
	var out struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	if err := c.do(ctx, sess, http.MethodPut, "/api/auth/profile", update, &out); err != nil {
		return nil, err
	}
	sess.setUser(out.User)
	sess.setToken(out.Token)
	return &out.User, nil
}

// ListProducts returns one page of the catalog
func (c *Client) ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	path := "/api/products"
	if v := query.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out ProductPage
	if err := c.do(ctx, nil, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Product fetches one product
func (c *Client) Product(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, nil, http.MethodGet, "/api/products/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct adds a product (admin)
func (c *Client) CreateProduct(ctx context.Context, sess *Session, input ProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, sess, http.MethodPost, "/api/products", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct changes the provided product fields (admin)
func (c *Client) UpdateProduct(ctx context.Context, sess *Session, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, sess, http.MethodPut, "/api/products/"+id.String(), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a product (admin)
func (c *Client) DeleteProduct(ctx context.Context, sess *Session, id uuid.UUID) error {
	return c.do(ctx, sess, http.MethodDelete, "/api/products/"+id.String(), nil, &messageResponse{})
}

// Cart fetches the caller's cart
func (c *Client) Cart(ctx context.Context, sess *Session) (*domain.Cart, error) {
	var out domain.Cart
	if err := c.do(ctx, sess, http.MethodGet, "/api/cart", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddToCart adds a product variant, merging with an existing line
func (c *Client) AddToCart(ctx context.Context, sess *Session, item CartItemInput) (*domain.Cart, error) {
	var out cartResponse
	if err := c.do(ctx, sess, http.MethodPost, "/api/cart", item, &out); err != nil {
		return nil, err
	}
	return out.Cart, nil
}

// UpdateCartItem sets a line's quantity
func (c *Client) UpdateCartItem(ctx context.Context, sess *Session, itemID uuid.UUID, quantity int) (*domain.Cart, error) {
	var out cartResponse
	body := map[string]int{"quantity": quantity}
	if err := c.do(ctx, sess, http.MethodPut, "/api/cart/"+itemID.String(), body, &out); err != nil {
		return nil, err
	}
	return out.Cart, nil
}

// RemoveCartItem deletes a line
func (c *Client) RemoveCartItem(ctx context.Context, sess *Session, itemID uuid.UUID) (*domain.Cart, error) {
	var out cartResponse
	if err := c.do(ctx, sess, http.MethodDelete, "/api/cart/"+itemID.String(), nil, &out); err != nil {
		return nil, err
	}
	return out.Cart, nil
}

// ClearCart empties the cart
func (c *Client) ClearCart(ctx context.Context, sess *Session) error {
	return c.do(ctx, sess, http.MethodDelete, "/api/cart/clear", nil, &messageResponse{})
}

// PlaceOrder checks out the stored cart
func (c *Client) PlaceOrder(ctx context.Context, sess *Session, input OrderInput) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, sess, http.MethodPost, "/api/orders", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Order fetches one order the caller owns, or any order for an admin
func (c *Client) Order(ctx context.Context, sess *Session, id uuid.UUID) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, sess, http.MethodGet, "/api/orders/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyOrders lists the caller's orders, newest first
func (c *Client) MyOrders(ctx context.Context, sess *Session) ([]*domain.Order, error) {
	var out []*domain.Order
	if err := c.do(ctx, sess, http.MethodGet, "/api/orders/myorders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllOrders lists every order (admin)
func (c *Client) AllOrders(ctx context.Context, sess *Session) ([]*domain.Order, error) {
	var out []*domain.Order
	if err := c.do(ctx, sess, http.MethodGet, "/api/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PayOrder records a payment confirmation
func (c *Client) PayOrder(ctx context.Context, sess *Session, id uuid.UUID, result domain.PaymentResult) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, sess, http.MethodPut, "/api/orders/"+id.String()+"/pay", result, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeliverOrder marks an order delivered (admin)
func (c *Client) DeliverOrder(ctx context.Context, sess *Session, id uuid.UUID) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, sess, http.MethodPut, "/api/orders/"+id.String()+"/deliver", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderTracking sets the admin tracking flags present in tracking
func (c *Client) UpdateOrderTracking(ctx context.Context, sess *Session, id uuid.UUID, tracking domain.AdminTracking) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, sess, http.MethodPut, "/api/orders/"+id.String()+"/admin-status", tracking, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage stores an image (admin) and returns its public path
func (c *Client) UploadImage(ctx context.Context, sess *Session, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("client: build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("client: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("client: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return "", fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Path string `json:"path"`
	}
	if err := c.send(req, sess, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// Health returns nil when the API and its database are up
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, nil, http.MethodGet, "/health", nil, nil)
}
