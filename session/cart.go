package session

import (
	"context"

	"github.com/jrsteele09/go-shopfront-client/rest"
)

// AddToCart puts a product into the logged-in user's cart. With no user
// present it refuses without contacting the backend and asks the view layer
// to redirect to login. Otherwise the standard refresh-and-retry-once
// policy applies on a 401.
func (m *Manager) AddToCart(ctx context.Context, productID string, quantity int) Result {
	if !m.hasUser() {
		return Result{RedirectToLogin: true, Message: msgNotLoggedIn}
	}

	var resp *rest.MessageResponse
	err := m.authorized(ctx, func(accessToken string) error {
		r, err := m.deps.API.AddToCart(ctx, accessToken, rest.AddToCartRequest{
			ProductID: productID,
			Quantity:  quantity,
		})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return failureResult(err)
	}
	return okResult(resp.Message)
}

// CartItems fetches the user's cart under the standard authenticated-call
// policy.
func (m *Manager) CartItems(ctx context.Context) (*rest.Cart, Result) {
	if !m.hasUser() {
		return nil, Result{RedirectToLogin: true, Message: msgNotLoggedIn}
	}

	var cart *rest.Cart
	err := m.authorized(ctx, func(accessToken string) error {
		c, err := m.deps.API.CartItems(ctx, accessToken)
		if err != nil {
			return err
		}
		cart = c
		return nil
	})
	if err != nil {
		return nil, failureResult(err)
	}
	return cart, okResult("")
}

// CreateOrder places an order from the current cart.
func (m *Manager) CreateOrder(ctx context.Context, req rest.OrderRequest) (*rest.Order, Result) {
	if !m.hasUser() {
		return nil, Result{RedirectToLogin: true, Message: msgNotLoggedIn}
	}

	var order *rest.Order
	err := m.authorized(ctx, func(accessToken string) error {
		o, err := m.deps.API.CreateOrder(ctx, accessToken, req)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, failureResult(err)
	}
	return order, okResult("")
}

// VerifyPayment confirms a payment-gateway result for an order.
func (m *Manager) VerifyPayment(ctx context.Context, req rest.PaymentVerification) Result {
	if !m.hasUser() {
		return Result{RedirectToLogin: true, Message: msgNotLoggedIn}
	}

	var resp *rest.MessageResponse
	err := m.authorized(ctx, func(accessToken string) error {
		r, err := m.deps.API.VerifyPayment(ctx, accessToken, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return failureResult(err)
	}
	return okResult(resp.Message)
}

// Orders lists the user's past orders.
func (m *Manager) Orders(ctx context.Context) ([]rest.Order, Result) {
	if !m.hasUser() {
		return nil, Result{RedirectToLogin: true, Message: msgNotLoggedIn}
	}

	var orders []rest.Order
	err := m.authorized(ctx, func(accessToken string) error {
		o, err := m.deps.API.Orders(ctx, accessToken)
		if err != nil {
			return err
		}
		orders = o
		return nil
	})
	if err != nil {
		return nil, failureResult(err)
	}
	return orders, okResult("")
}

// Addresses lists the user's saved addresses.
func (m *Manager) Addresses(ctx context.Context) ([]rest.Address, Result) {
	if !m.hasUser() {
		return nil, Result{RedirectToLogin: true, Message: msgNotLoggedIn}
	}

	var addrs []rest.Address
	err := m.authorized(ctx, func(accessToken string) error {
		a, err := m.deps.API.Addresses(ctx, accessToken)
		if err != nil {
			return err
		}
		addrs = a
		return nil
	})
	if err != nil {
		return nil, failureResult(err)
	}
	return addrs, okResult("")
}

// AddAddress saves a new address for the user.
func (m *Manager) AddAddress(ctx context.Context, addr rest.Address) (*rest.Address, Result) {
	if !m.hasUser() {
		return nil, Result{RedirectToLogin: true, Message: msgNotLoggedIn}
	}

	var saved *rest.Address
	err := m.authorized(ctx, func(accessToken string) error {
		a, err := m.deps.API.AddAddress(ctx, accessToken, addr)
		if err != nil {
			return err
		}
		saved = a
		return nil
	})
	if err != nil {
		return nil, failureResult(err)
	}
	return saved, okResult("")
}

// DeleteAddress removes a saved address.
func (m *Manager) DeleteAddress(ctx context.Context, addressID string) Result {
	if !m.hasUser() {
		return Result{RedirectToLogin: true, Message: msgNotLoggedIn}
	}

	err := m.authorized(ctx, func(accessToken string) error {
		return m.deps.API.DeleteAddress(ctx, accessToken, addressID)
	})
	if err != nil {
		return failureResult(err)
	}
	return okResult("")
}
