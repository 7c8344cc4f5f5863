package session

import (
	"context"

	"github.com/jrsteele09/go-shopfront-client/rest"
)

// Register starts the two-phase signup. The backend registers the account
// and dispatches an OTP; no session is created until VerifyOTP succeeds.
func (m *Manager) Register(ctx context.Context, reg rest.Registration) Result {
	resp, err := m.deps.API.Register(ctx, reg)
	if err != nil {
		return failureResult(err)
	}
	return okResult(resp.Message)
}

// VerifyOTP completes signup. On success the session is established exactly
// as it is for Login.
func (m *Manager) VerifyOTP(ctx context.Context, email, otp string) Result {
	tr, err := m.deps.API.VerifyOTP(ctx, rest.VerifyOTPRequest{Email: email, OTP: otp})
	if err != nil {
		return m.loginFailure(err)
	}
	return m.establishSession(ctx, tr)
}

// SendForgotPasswordOTP starts password recovery. It does not require, nor
// touch, an existing session.
func (m *Manager) SendForgotPasswordOTP(ctx context.Context, identifier string) Result {
	resp, err := m.deps.API.SendForgotPasswordOTP(ctx, rest.ForgotPasswordRequest{EmailOrPhone: identifier})
	if err != nil {
		return failureResult(err)
	}
	return okResult(resp.Message)
}

// ResetPassword completes password recovery with the OTP received out of
// band. Stateless with respect to the session.
func (m *Manager) ResetPassword(ctx context.Context, identifier, otp, newPassword string) Result {
	resp, err := m.deps.API.ResetPassword(ctx, rest.ResetPasswordRequest{
		EmailOrPhone: identifier,
		OTP:          otp,
		NewPassword:  newPassword,
	})
	if err != nil {
		return failureResult(err)
	}
	return okResult(resp.Message)
}
