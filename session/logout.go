package session

import "context"

// Logout ends the session. Server-side invalidation is best effort (a
// failure is logged and swallowed) and local state is cleared
// unconditionally, so from the caller's point of view Logout cannot fail.
func (m *Manager) Logout(ctx context.Context) Result {
	if pair, ok := m.snapshot(); ok {
		if err := m.deps.API.Logout(ctx, pair.AccessToken); err != nil {
			m.logger.Warn().Err(err).Msg("server-side logout failed, clearing locally anyway")
		}
	}
	m.clearSession()
	return okResult(msgLoggedOut)
}

// Refresh exchanges the stored refresh token for a new access token. A
// rejected refresh token clears the session and the caller is told to
// redirect to login; a transport failure keeps the session and reports the
// server as unreachable. Authenticated operations invoke this automatically
// on a 401; it is exposed for callers that manage their own requests.
func (m *Manager) Refresh(ctx context.Context) Result {
	if _, err := m.refresh(ctx); err != nil {
		return failureResult(err)
	}
	return okResult("")
}
