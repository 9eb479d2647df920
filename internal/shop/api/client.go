// Package api is the storefront's REST client. One method per verb per
// resource; the Authorization header is read fresh from the token store on
// every call so a rotated access token is picked up immediately.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"atsea/internal/shop/tokens"
)

type Product struct {
	ProductID   int64   `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

type Customer struct {
	CustomerID int64  `json:"customerId"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Role       string `json:"role"`
}

type CartLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	CustomerID   int64  `json:"customerId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm,omitempty"`
	Email           string `json:"email"`
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
}

// Order is the submission shape. OrderID is a placeholder the backend
// replaces; productsOrdered keys are decimal productIds.
type Order struct {
	OrderID         int64          `json:"orderId"`
	OrderDate       time.Time      `json:"orderDate"`
	CustomerID      int64          `json:"customerId"`
	ProductsOrdered map[string]int `json:"productsOrdered"`
	Total           float64        `json:"total,omitempty"`
}

type ContainerID struct {
	Hostname string `json:"hostname"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  tokens.Store
}

func NewClient(baseURL string, store tokens.Store) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Tokens:  store,
	}
}

// do runs one request. in != nil is sent as JSON; out != nil receives the
// decoded 2xx body. Connection failures come back as *NetworkError,
// non-2xx responses as *HTTPError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Read at call time, never cached: a token rotated by a concurrent
	// refresh must be used by the very next request.
	if tok, ok := c.Tokens.Get(tokens.KeyAccessToken); ok && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: raw}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// Products

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/product/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, p Product) (Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "/api/product/", p, &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

// Customers

func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := c.do(ctx, http.MethodGet, "/api/customer/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCustomerByUsername(ctx context.Context, username string) (Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodGet, "/api/customer/username="+username, nil, &out); err != nil {
		return Customer{}, err
	}
	return out, nil
}

// Auth

func (c *Client) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{
		"refreshToken": refreshToken,
	}, nil)
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh-token", map[string]string{
		"refreshToken": refreshToken,
	}, &out)
	if err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Cart. Mutations return no body; callers re-fetch with GetCart to resync.

func (c *Client) GetCart(ctx context.Context) ([]CartLine, error) {
	var out []CartLine
	if err := c.do(ctx, http.MethodGet, "/api/cart/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) error {
	return c.do(ctx, http.MethodPost, "/api/cart/", CartLine{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/%d", productID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/", nil, nil)
}

// Orders

func (c *Client) CreateOrder(ctx context.Context, o Order) (Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/api/order/", o, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/order/%d", orderID), nil, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

// Utility

func (c *Client) ContainerID(ctx context.Context) (ContainerID, error) {
	var out ContainerID
	if err := c.do(ctx, http.MethodGet, "/utility/containerid/", nil, &out); err != nil {
		return ContainerID{}, err
	}
	return out, nil
}
