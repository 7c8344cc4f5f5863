package session

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the live session to an oauth2.TokenSource, so generic
// HTTP stacks (oauth2.NewClient, oauth2.Transport) can authorize requests
// against the storefront backend. The source refreshes through the manager,
// keeping it the only writer of stored credentials.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{m: m, ctx: ctx}
}

type managerTokenSource struct {
	m   *Manager
	ctx context.Context
}

var _ oauth2.TokenSource = (*managerTokenSource)(nil)

func (ts *managerTokenSource) Token() (*oauth2.Token, error) {
	pair, ok := ts.m.snapshot()
	if !ok {
		return nil, ErrNotLoggedIn
	}

	accessToken := pair.AccessToken
	if ts.m.expiringSoon(accessToken) {
		accessToken = ts.m.refreshEarly(ts.ctx, accessToken)
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
