package session

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-shopfront-client/rest"
)

// authorized runs call with the current access token, applying the only
// retry policy this client has: on a 401, refresh once and retry once. A
// second 401 is fatal for the call and clears the session. Every other
// error is returned as-is, with no retry.
func (m *Manager) authorized(ctx context.Context, call func(accessToken string) error) error {
	pair, ok := m.snapshot()
	if !ok {
		return ErrNotLoggedIn
	}

	accessToken := pair.AccessToken
	if m.expiringSoon(accessToken) {
		accessToken = m.refreshEarly(ctx, accessToken)
	}

	err := call(accessToken)
	if err == nil || !rest.IsUnauthorized(err) {
		return err
	}

	fresh, err := m.refresh(ctx)
	if err != nil {
		return err
	}

	if err := call(fresh); err != nil {
		if rest.IsUnauthorized(err) {
			m.clearSession()
			return errors.Wrap(ErrSessionExpired, "retry with refreshed token still unauthorized")
		}
		return err
	}
	return nil
}

// refreshEarly opportunistically swaps an expiring access token for a fresh
// one. It never gives up the session: on any failure the old token is kept
// and the 401 path decides what happens next.
func (m *Manager) refreshEarly(ctx context.Context, accessToken string) string {
	fresh, err := m.exchangeRefreshToken(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Msg("early refresh failed, keeping current token")
		return accessToken
	}
	return fresh
}

// refresh exchanges the stored refresh token for a new access token and
// persists the swap. A rejected refresh token clears the session and
// returns ErrSessionExpired; a transport failure says nothing about the
// tokens, so the session is left alone and the error is returned as-is.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	fresh, err := m.exchangeRefreshToken(ctx)
	if err != nil {
		if rest.IsUnavailable(err) {
			m.logger.Warn().Err(err).Msg("token refresh unreachable")
			return "", err
		}
		m.logger.Info().Err(err).Msg("token refresh rejected")
		m.clearSession()
		return "", errors.Wrap(ErrSessionExpired, "refresh rejected")
	}
	return fresh, nil
}

func (m *Manager) exchangeRefreshToken(ctx context.Context) (string, error) {
	pair, ok := m.snapshot()
	if !ok || pair.RefreshToken == "" {
		return "", errors.New("no refresh token stored")
	}

	tr, err := m.deps.API.RefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		// Logged out while the refresh was in flight.
		return "", errors.New("session cleared during refresh")
	}
	m.pair.AccessToken = tr.Token
	if tr.RefreshToken != "" {
		m.pair.RefreshToken = tr.RefreshToken
	}
	if err := m.deps.Store.Save(m.pair); err != nil {
		m.logger.Error().Err(err).Msg("could not persist refreshed credentials")
	}
	return tr.Token, nil
}

// expiringSoon reports whether accessToken is a JWT whose exp claim falls
// within the configured skew. The claim is read unverified; the client
// has no signing key and does not need one; a wrong guess just costs a 401.
func (m *Manager) expiringSoon(accessToken string) bool {
	if m.refreshSkew <= 0 {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !m.nowTime().Add(m.refreshSkew).Before(claims.ExpiresAt.Time)
}
