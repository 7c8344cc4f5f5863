// Package rest is a typed client for the storefront backend API. It speaks
// plain JSON over HTTP and reports failures through the error taxonomy in
// errors.go. It holds no session state of its own; callers pass the access
// token for authenticated endpoints.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client is the storefront backend contract consumed by the session manager
// and the view layer.
type Client interface {
	// Me fetches the profile of the user owning accessToken.
	Me(ctx context.Context, accessToken string) (*User, error)
	// Login exchanges credentials for a token pair.
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	// SendOTP dispatches a one-time password to the given email/phone.
	SendOTP(ctx context.Context, req OTPRequest) (*MessageResponse, error)
	// LoginWithOTP exchanges an identifier + OTP for a token pair.
	LoginWithOTP(ctx context.Context, req OTPLoginRequest) (*TokenResponse, error)
	// Register starts the two-phase signup; the backend sends an OTP.
	Register(ctx context.Context, req Registration) (*MessageResponse, error)
	// VerifyOTP completes signup and returns the first token pair.
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*TokenResponse, error)
	// RefreshToken mints a new access token from a refresh token.
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
	// Logout invalidates the session server-side.
	Logout(ctx context.Context, accessToken string) error
	// SendForgotPasswordOTP starts password recovery.
	SendForgotPasswordOTP(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error)
	// ResetPassword completes password recovery.
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error)

	// Products lists the catalogue.
	Products(ctx context.Context) ([]Product, error)
	// Product fetches a single catalogue entry.
	Product(ctx context.Context, productID string) (*Product, error)
	// SearchProducts searches the catalogue by free-text query.
	SearchProducts(ctx context.Context, query string) ([]Product, error)

	// AddToCart puts a product into the user's cart.
	AddToCart(ctx context.Context, accessToken string, req AddToCartRequest) (*MessageResponse, error)
	// CartItems fetches the user's cart.
	CartItems(ctx context.Context, accessToken string) (*Cart, error)
	// CreateOrder places an order from the current cart.
	CreateOrder(ctx context.Context, accessToken string, req OrderRequest) (*Order, error)
	// VerifyPayment confirms a payment-gateway result for an order.
	VerifyPayment(ctx context.Context, accessToken string, req PaymentVerification) (*MessageResponse, error)
	// Orders lists the user's past orders.
	Orders(ctx context.Context, accessToken string) ([]Order, error)
	// Addresses lists the user's saved addresses.
	Addresses(ctx context.Context, accessToken string) ([]Address, error)
	// AddAddress saves a new address.
	AddAddress(ctx context.Context, accessToken string, addr Address) (*Address, error)
	// DeleteAddress removes a saved address.
	DeleteAddress(ctx context.Context, accessToken string, addressID string) error
}

const defaultTimeout = 30 * time.Second

type client struct {
	apiRoot    string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

var _ Client = (*client)(nil)

// Option modifies the client during construction.
type Option func(*client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *client) {
		c.logger = l
	}
}

// WithTimeout sets the per-request timeout. It applies whatever the option
// order, including to a client supplied via WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// New creates a Client rooted at apiRoot (e.g. "https://shop.example.com").
func New(apiRoot string, options ...Option) (Client, error) {
	u, err := url.Parse(apiRoot)
	if err != nil || !u.IsAbs() {
		return nil, errors.Errorf("[rest.New] apiRoot is not an absolute URL: %q", apiRoot)
	}

	c := &client{
		apiRoot: strings.TrimRight(apiRoot, "/"),
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c, nil
}

func (c *client) Me(ctx context.Context, accessToken string) (*User, error) {
	out := struct {
		User User `json:"user"`
	}{}
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", accessToken, nil, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.Me]")
	}
	return &out.User, nil
}

func (c *client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	out := TokenResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "", req, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}
	return &out, nil
}

func (c *client) SendOTP(ctx context.Context, req OTPRequest) (*MessageResponse, error) {
	out := MessageResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/auth/send-otp", "", req, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.SendOTP]")
	}
	return &out, nil
}

func (c *client) LoginWithOTP(ctx context.Context, req OTPLoginRequest) (*TokenResponse, error) {
	out := TokenResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/auth/login-otp", "", req, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.LoginWithOTP]")
	}
	return &out, nil
}

func (c *client) Register(ctx context.Context, req Registration) (*MessageResponse, error) {
	out := MessageResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/auth/register-otp", "", req, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.Register]")
	}
	return &out, nil
}

func (c *client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*TokenResponse, error) {
	out := TokenResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/auth/verify-otp", "", req, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyOTP]")
	}
	return &out, nil
}

func (c *client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body := struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: refreshToken}

	out := TokenResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/auth/refresh-token", "", body, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.RefreshToken]")
	}
	return &out, nil
}

func (c *client) Logout(ctx context.Context, accessToken string) error {
	if err := c.call(ctx, http.MethodPost, "/api/auth/logout", accessToken, nil, nil, false); err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

func (c *client) SendForgotPasswordOTP(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	out := MessageResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/auth/forgot-password-otp", "", req, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.SendForgotPasswordOTP]")
	}
	return &out, nil
}

func (c *client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	out := MessageResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/auth/reset-password", "", req, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.ResetPassword]")
	}
	return &out, nil
}

func (c *client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.call(ctx, http.MethodGet, "/api/products", "", nil, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.Products]")
	}
	return out, nil
}

func (c *client) Product(ctx context.Context, productID string) (*Product, error) {
	out := Product{}
	if err := c.call(ctx, http.MethodGet, "/api/products/"+url.PathEscape(productID), "", nil, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.Product]")
	}
	return &out, nil
}

func (c *client) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	var out []Product
	path := "/api/products/search?q=" + url.QueryEscape(query)
	if err := c.call(ctx, http.MethodGet, path, "", nil, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.SearchProducts]")
	}
	return out, nil
}

func (c *client) AddToCart(ctx context.Context, accessToken string, req AddToCartRequest) (*MessageResponse, error) {
	out := MessageResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/cart/add", accessToken, req, &out, true); err != nil {
		return nil, errors.Wrap(err, "[Client.AddToCart]")
	}
	return &out, nil
}

func (c *client) CartItems(ctx context.Context, accessToken string) (*Cart, error) {
	out := Cart{}
	if err := c.call(ctx, http.MethodGet, "/api/cart", accessToken, nil, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.CartItems]")
	}
	return &out, nil
}

func (c *client) CreateOrder(ctx context.Context, accessToken string, req OrderRequest) (*Order, error) {
	out := Order{}
	if err := c.call(ctx, http.MethodPost, "/api/orders", accessToken, req, &out, true); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateOrder]")
	}
	return &out, nil
}

func (c *client) VerifyPayment(ctx context.Context, accessToken string, req PaymentVerification) (*MessageResponse, error) {
	out := MessageResponse{}
	if err := c.call(ctx, http.MethodPost, "/api/orders/verify-payment", accessToken, req, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyPayment]")
	}
	return &out, nil
}

func (c *client) Orders(ctx context.Context, accessToken string) ([]Order, error) {
	var out []Order
	if err := c.call(ctx, http.MethodGet, "/api/orders", accessToken, nil, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.Orders]")
	}
	return out, nil
}

func (c *client) Addresses(ctx context.Context, accessToken string) ([]Address, error) {
	var out []Address
	if err := c.call(ctx, http.MethodGet, "/api/addresses", accessToken, nil, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.Addresses]")
	}
	return out, nil
}

func (c *client) AddAddress(ctx context.Context, accessToken string, addr Address) (*Address, error) {
	out := Address{}
	if err := c.call(ctx, http.MethodPost, "/api/addresses", accessToken, addr, &out, false); err != nil {
		return nil, errors.Wrap(err, "[Client.AddAddress]")
	}
	return &out, nil
}

func (c *client) DeleteAddress(ctx context.Context, accessToken string, addressID string) error {
	path := "/api/addresses/" + url.PathEscape(addressID)
	if err := c.call(ctx, http.MethodDelete, path, accessToken, nil, nil, false); err != nil {
		return errors.Wrap(err, "[Client.DeleteAddress]")
	}
	return nil
}

// call performs one round-trip. body and out may be nil. idempotencyKey adds
// an Idempotency-Key header so the backend can deduplicate retried mutations.
func (c *client) call(ctx context.Context, method, path, accessToken string, body, out any, idempotencyKey bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiRoot+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-Id", requestID)
	if idempotencyKey {
		req.Header.Set("Idempotency-Key", uuid.New().String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Str("method", method).Str("path", path).Err(err).Msg("transport failure")
		return errors.Wrapf(ErrUnavailable, "%s %s: %s", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Msg("request complete")

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: decodeMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

// decodeMessage pulls { message } out of an error body, tolerating bodies
// that are not JSON at all.
func decodeMessage(r io.Reader) string {
	buf, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil {
		return ""
	}
	parsed := MessageResponse{}
	if err := json.Unmarshal(buf, &parsed); err != nil || parsed.Message == "" {
		return strings.TrimSpace(string(buf))
	}
	return parsed.Message
}
