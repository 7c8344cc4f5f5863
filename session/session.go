// Package session implements the client-side session manager: the single
// source of truth for "who is logged in", the only writer of the stored
// token pair, and the only component that talks to the backend's auth
// endpoints. Construct one Manager per process and hand it to the view
// layer; there is no package-level singleton.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-shopfront-client/credentials"
	"github.com/jrsteele09/go-shopfront-client/rest"
)

// State is the session lifecycle state.
type State string

const (
	StateLoggedOut State = "logged_out"
	StateLoading   State = "loading" // transient, while Bootstrap is running
	StateLoggedIn  State = "logged_in"
)

const defaultRefreshSkew = 30 * time.Second

// Deps holds the collaborators a Manager requires.
type Deps struct {
	API   rest.Client       // the storefront backend
	Store credentials.Store // durable token-pair storage
}

// Manager mediates token storage, refresh and request authorization.
//
// Concurrency: operations may be called from any goroutine. The mutex only
// protects the in-memory fields; overlapping calls to the same operation
// are not deduplicated, and the last HTTP response to land wins.
type Manager struct {
	deps        Deps
	logger      zerolog.Logger
	nowTime     func() time.Time // injectable for testing
	refreshSkew time.Duration

	mu    sync.Mutex
	state State
	pair  *credentials.TokenPair
	user  *rest.User
}

// Option modifies the Manager during construction.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithRefreshSkew sets how close to its exp claim an access token may get
// before an authorized call refreshes it proactively. Zero disables the
// proactive path.
func WithRefreshSkew(d time.Duration) Option {
	return func(m *Manager) {
		m.refreshSkew = d
	}
}

// New creates a Manager. It performs no I/O; call Bootstrap to restore a
// persisted session.
func New(deps Deps, options ...Option) (*Manager, error) {
	if deps.API == nil {
		return nil, errors.New("[session.New] API client is required")
	}
	if deps.Store == nil {
		return nil, errors.New("[session.New] credentials store is required")
	}

	m := &Manager{
		deps:        deps,
		logger:      zerolog.Nop(),
		nowTime:     time.Now,
		refreshSkew: defaultRefreshSkew,
		state:       StateLoggedOut,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the logged-in user's profile, or nil. The returned
// value is a copy; mutating it does not affect the session.
func (m *Manager) CurrentUser() *rest.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	cp := *m.user
	return &cp
}

// Bootstrap restores a persisted session, once, at application start. If a
// token pair is stored it fetches the current user, refreshing the access
// token at most once on a 401. A failed refresh clears the session and is
// terminal for this load; Bootstrap is safe to call again.
func (m *Manager) Bootstrap(ctx context.Context) Result {
	m.mu.Lock()
	if m.pair == nil {
		pair, err := m.deps.Store.Load()
		switch {
		case errors.Is(err, credentials.ErrNotFound):
			m.state = StateLoggedOut
			m.mu.Unlock()
			return okResult("")
		case err != nil:
			// Unreadable credentials are as good as none.
			m.logger.Warn().Err(err).Msg("stored credentials unreadable, starting logged out")
			m.state = StateLoggedOut
			m.mu.Unlock()
			return okResult("")
		}
		m.pair = pair
	}
	m.state = StateLoading
	m.mu.Unlock()

	user, err := m.fetchUser(ctx)
	if err != nil {
		// The stored pair survives for a later Bootstrap, but memory holds
		// session state only while logged in.
		m.mu.Lock()
		m.pair = nil
		if m.state == StateLoading {
			m.state = StateLoggedOut
		}
		m.mu.Unlock()
		if !errors.Is(err, ErrSessionExpired) {
			m.logger.Warn().Err(err).Msg("bootstrap could not fetch current user")
		}
		return failureResult(err)
	}

	m.mu.Lock()
	m.user = user
	m.state = StateLoggedIn
	m.mu.Unlock()
	return okResult("")
}

// UpdateUser re-fetches the current user's profile under the one-shot
// refresh-and-retry policy.
func (m *Manager) UpdateUser(ctx context.Context) Result {
	user, err := m.fetchUser(ctx)
	if err != nil {
		return failureResult(err)
	}

	m.mu.Lock()
	m.user = user
	m.state = StateLoggedIn
	m.mu.Unlock()
	return okResult("")
}

// fetchUser gets the profile for the current access token, with the
// standard retry-once policy.
func (m *Manager) fetchUser(ctx context.Context) (*rest.User, error) {
	var user *rest.User
	err := m.authorized(ctx, func(accessToken string) error {
		u, err := m.deps.API.Me(ctx, accessToken)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// adoptSession installs a fresh token pair and user atomically: storage and
// memory are written together, under the lock, so no observer can see one
// without the other.
func (m *Manager) adoptSession(pair *credentials.TokenPair, user *rest.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.deps.Store.Save(pair); err != nil {
		// The session still works for this process; it just won't survive
		// a restart.
		m.logger.Error().Err(err).Msg("could not persist credentials")
	}
	m.pair = pair
	m.user = user
	m.state = StateLoggedIn
}

// clearSession removes storage and memory state together. It never fails.
func (m *Manager) clearSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearSessionLocked()
}

func (m *Manager) clearSessionLocked() {
	if err := m.deps.Store.Clear(); err != nil {
		m.logger.Error().Err(err).Msg("could not clear stored credentials")
	}
	m.pair = nil
	m.user = nil
	m.state = StateLoggedOut
}

// snapshot returns the current token pair, if any.
func (m *Manager) snapshot() (credentials.TokenPair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		return credentials.TokenPair{}, false
	}
	return *m.pair, true
}

func (m *Manager) hasUser() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}
