package rest

import "time"

// User is the profile returned by GET /api/auth/me. It is fetched with a
// valid access token and held in memory only; the client never persists it.
type User struct {
	ID        string `json:"id,omitempty"`         // Unique identifier for the user
	FirstName string `json:"first_name,omitempty"` // First name of the user
	LastName  string `json:"last_name,omitempty"`  // Last name of the user
	Email     string `json:"email,omitempty"`      // User's email address
	Phone     string `json:"phone,omitempty"`      // User's phone number

	// Default shipping address fields
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

// TokenResponse is returned by login, OTP login, verify-otp and refresh.
// Refresh responses carry only Token.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Message      string `json:"message,omitempty"`
}

// MessageResponse is the generic { message } acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

type LoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

type OTPRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
}

type OTPLoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	OTP          string `json:"otp"`
}

// Registration starts the two-phase signup. The backend dispatches an OTP;
// no tokens are issued until the OTP is verified.
type Registration struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ForgotPasswordRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
}

type ResetPasswordRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	OTP          string `json:"otp"`
	NewPassword  string `json:"newPassword"`
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Stock       int     `json:"stock"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

type OrderRequest struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

type Order struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Items     []CartItem `json:"items,omitempty"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}

// PaymentVerification confirms a payment-gateway callback against an order.
type PaymentVerification struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature,omitempty"`
}

type Address struct {
	ID         string `json:"id,omitempty"`
	Label      string `json:"label,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}
