package session

import (
	"context"

	"github.com/jrsteele09/go-shopfront-client/credentials"
	"github.com/jrsteele09/go-shopfront-client/rest"
)

// Login exchanges credentials for a session. On success the token pair and
// the current user are stored together and the backend's message is
// returned. A 401 clears any stale session; other backend rejections pass
// the backend's message through verbatim.
func (m *Manager) Login(ctx context.Context, identifier, password string) Result {
	tr, err := m.deps.API.Login(ctx, rest.LoginRequest{
		EmailOrPhone: identifier,
		Password:     password,
	})
	if err != nil {
		return m.loginFailure(err)
	}
	return m.establishSession(ctx, tr)
}

// SendOTP dispatches a one-time password for the OTP login path.
func (m *Manager) SendOTP(ctx context.Context, identifier string) Result {
	resp, err := m.deps.API.SendOTP(ctx, rest.OTPRequest{EmailOrPhone: identifier})
	if err != nil {
		return failureResult(err)
	}
	return okResult(resp.Message)
}

// LoginWithOTP completes the OTP login path. Success is identical to Login.
func (m *Manager) LoginWithOTP(ctx context.Context, identifier, otp string) Result {
	tr, err := m.deps.API.LoginWithOTP(ctx, rest.OTPLoginRequest{
		EmailOrPhone: identifier,
		OTP:          otp,
	})
	if err != nil {
		return m.loginFailure(err)
	}
	return m.establishSession(ctx, tr)
}

func (m *Manager) loginFailure(err error) Result {
	if rest.IsUnauthorized(err) {
		// Whatever was stored is stale; drop it with the rejection.
		m.clearSession()
		return Result{Message: msgSessionExpired, RedirectToLogin: true}
	}
	return failureResult(err)
}

// establishSession turns a token response into a live session: it fetches
// the user with the new access token and installs tokens + user together,
// so the session is never populated halfway.
func (m *Manager) establishSession(ctx context.Context, tr *rest.TokenResponse) Result {
	user, err := m.deps.API.Me(ctx, tr.Token)
	if err != nil {
		m.logger.Warn().Err(err).Msg("could not fetch user for fresh session")
		m.clearSession()
		return failureResult(err)
	}

	m.adoptSession(&credentials.TokenPair{
		AccessToken:  tr.Token,
		RefreshToken: tr.RefreshToken,
	}, user)

	m.logger.Info().Str("user_id", user.ID).Msg("session established")
	return okResult(tr.Message)
}
