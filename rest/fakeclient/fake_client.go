// Package fakeclient is an in-memory rest.Client for tests: valid access
// tokens, refresh grants and credentials are plain maps the test seeds, and
// every method records how often it was called so tests can assert on
// retry/no-call behaviour.
package fakeclient

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-shopfront-client/rest"
)

var _ rest.Client = (*FakeClient)(nil)

type FakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	// Users maps valid access tokens to the profile they authorize.
	Users map[string]*rest.User
	// Refreshes maps refresh tokens to the replacement access token.
	Refreshes map[string]string
	// Passwords maps identifiers to the accepted password.
	Passwords map[string]string
	// OTPs maps identifiers to the accepted one-time password.
	OTPs map[string]string
	// Issue is the token response returned by successful login flows.
	Issue rest.TokenResponse
	// Errs forces a method (by name, e.g. "Logout") to fail.
	Errs map[string]error

	// Recorded mutations.
	CartAdds      []rest.AddToCartRequest
	OrderRequests []rest.OrderRequest
	AddressBook   []rest.Address
	LoggedOut     []string

	Catalogue []rest.Product
	CartState rest.Cart
	OrderList []rest.Order
}

func New() *FakeClient {
	return &FakeClient{
		calls:     map[string]int{},
		Users:     map[string]*rest.User{},
		Refreshes: map[string]string{},
		Passwords: map[string]string{},
		OTPs:      map[string]string{},
		Errs:      map[string]error{},
	}
}

// Calls returns how many times the named method was invoked.
func (f *FakeClient) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeClient) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FakeClient) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.Errs[method]
}

func (f *FakeClient) Me(ctx context.Context, accessToken string) (*rest.User, error) {
	if err := f.record("Me"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.Users[accessToken]
	if !ok {
		return nil, rest.ErrUnauthorized
	}
	cp := *user
	return &cp, nil
}

func (f *FakeClient) Login(ctx context.Context, req rest.LoginRequest) (*rest.TokenResponse, error) {
	if err := f.record("Login"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.Passwords[req.EmailOrPhone]; !ok || pw != req.Password {
		return nil, rest.ErrUnauthorized
	}
	cp := f.Issue
	return &cp, nil
}

func (f *FakeClient) SendOTP(ctx context.Context, req rest.OTPRequest) (*rest.MessageResponse, error) {
	if err := f.record("SendOTP"); err != nil {
		return nil, err
	}
	return &rest.MessageResponse{Message: "OTP sent"}, nil
}

func (f *FakeClient) LoginWithOTP(ctx context.Context, req rest.OTPLoginRequest) (*rest.TokenResponse, error) {
	if err := f.record("LoginWithOTP"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if otp, ok := f.OTPs[req.EmailOrPhone]; !ok || otp != req.OTP {
		return nil, rest.ErrUnauthorized
	}
	cp := f.Issue
	return &cp, nil
}

func (f *FakeClient) Register(ctx context.Context, req rest.Registration) (*rest.MessageResponse, error) {
	if err := f.record("Register"); err != nil {
		return nil, err
	}
	return &rest.MessageResponse{Message: "OTP sent to " + req.Email}, nil
}

func (f *FakeClient) VerifyOTP(ctx context.Context, req rest.VerifyOTPRequest) (*rest.TokenResponse, error) {
	if err := f.record("VerifyOTP"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if otp, ok := f.OTPs[req.Email]; !ok || otp != req.OTP {
		return nil, rest.ErrUnauthorized
	}
	cp := f.Issue
	return &cp, nil
}

func (f *FakeClient) RefreshToken(ctx context.Context, refreshToken string) (*rest.TokenResponse, error) {
	if err := f.record("RefreshToken"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	next, ok := f.Refreshes[refreshToken]
	if !ok {
		return nil, &rest.StatusError{StatusCode: 400, Message: "invalid refresh token"}
	}
	return &rest.TokenResponse{Token: next}, nil
}

func (f *FakeClient) Logout(ctx context.Context, accessToken string) error {
	if err := f.record("Logout"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoggedOut = append(f.LoggedOut, accessToken)
	return nil
}

func (f *FakeClient) SendForgotPasswordOTP(ctx context.Context, req rest.ForgotPasswordRequest) (*rest.MessageResponse, error) {
	if err := f.record("SendForgotPasswordOTP"); err != nil {
		return nil, err
	}
	return &rest.MessageResponse{Message: "Recovery OTP sent"}, nil
}

func (f *FakeClient) ResetPassword(ctx context.Context, req rest.ResetPasswordRequest) (*rest.MessageResponse, error) {
	if err := f.record("ResetPassword"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if otp, ok := f.OTPs[req.EmailOrPhone]; !ok || otp != req.OTP {
		return nil, &rest.StatusError{StatusCode: 400, Message: "invalid OTP"}
	}
	f.Passwords[req.EmailOrPhone] = req.NewPassword
	return &rest.MessageResponse{Message: "Password updated"}, nil
}

func (f *FakeClient) Products(ctx context.Context) ([]rest.Product, error) {
	if err := f.record("Products"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rest.Product(nil), f.Catalogue...), nil
}

func (f *FakeClient) Product(ctx context.Context, productID string) (*rest.Product, error) {
	if err := f.record("Product"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.Catalogue {
		if p.ID == productID {
			cp := p
			return &cp, nil
		}
	}
	return nil, &rest.StatusError{StatusCode: 404, Message: "product not found"}
}

func (f *FakeClient) SearchProducts(ctx context.Context, query string) ([]rest.Product, error) {
	if err := f.record("SearchProducts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rest.Product(nil), f.Catalogue...), nil
}

func (f *FakeClient) authorize(accessToken string) error {
	if _, ok := f.Users[accessToken]; !ok {
		return rest.ErrUnauthorized
	}
	return nil
}

func (f *FakeClient) AddToCart(ctx context.Context, accessToken string, req rest.AddToCartRequest) (*rest.MessageResponse, error) {
	if err := f.record("AddToCart"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(accessToken); err != nil {
		return nil, err
	}
	f.CartAdds = append(f.CartAdds, req)
	return &rest.MessageResponse{Message: "Added to cart"}, nil
}

func (f *FakeClient) CartItems(ctx context.Context, accessToken string) (*rest.Cart, error) {
	if err := f.record("CartItems"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(accessToken); err != nil {
		return nil, err
	}
	cp := f.CartState
	return &cp, nil
}

func (f *FakeClient) CreateOrder(ctx context.Context, accessToken string, req rest.OrderRequest) (*rest.Order, error) {
	if err := f.record("CreateOrder"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(accessToken); err != nil {
		return nil, err
	}
	f.OrderRequests = append(f.OrderRequests, req)
	return &rest.Order{ID: "order-1", Status: "created"}, nil
}

func (f *FakeClient) VerifyPayment(ctx context.Context, accessToken string, req rest.PaymentVerification) (*rest.MessageResponse, error) {
	if err := f.record("VerifyPayment"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(accessToken); err != nil {
		return nil, err
	}
	return &rest.MessageResponse{Message: "Payment verified"}, nil
}

func (f *FakeClient) Orders(ctx context.Context, accessToken string) ([]rest.Order, error) {
	if err := f.record("Orders"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(accessToken); err != nil {
		return nil, err
	}
	return append([]rest.Order(nil), f.OrderList...), nil
}

func (f *FakeClient) Addresses(ctx context.Context, accessToken string) ([]rest.Address, error) {
	if err := f.record("Addresses"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(accessToken); err != nil {
		return nil, err
	}
	return append([]rest.Address(nil), f.AddressBook...), nil
}

func (f *FakeClient) AddAddress(ctx context.Context, accessToken string, addr rest.Address) (*rest.Address, error) {
	if err := f.record("AddAddress"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(accessToken); err != nil {
		return nil, err
	}
	addr.ID = "addr-1"
	f.AddressBook = append(f.AddressBook, addr)
	return &addr, nil
}

func (f *FakeClient) DeleteAddress(ctx context.Context, accessToken string, addressID string) error {
	if err := f.record("DeleteAddress"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authorize(accessToken); err != nil {
		return err
	}
	kept := f.AddressBook[:0]
	for _, a := range f.AddressBook {
		if a.ID != addressID {
			kept = append(kept, a)
		}
	}
	f.AddressBook = kept
	return nil
}
