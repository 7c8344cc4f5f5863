// Package credentials persists the access/refresh token pair that represents
// an authenticated storefront session. The session manager is the only
// intended writer.
package credentials

import "github.com/pkg/errors"

// ErrNotFound is returned by Load when no credentials have been saved.
var ErrNotFound = errors.New("no stored credentials")

// ErrUnreadable is returned when stored credentials exist but cannot be
// decoded: corrupt file, or sealed with a different passphrase.
var ErrUnreadable = errors.New("stored credentials are unreadable")

// TokenPair is the persisted session: a short-lived access token and the
// refresh token used solely to mint its replacement.
type TokenPair struct {
	AccessToken  string `yaml:"accessToken"`
	RefreshToken string `yaml:"refreshToken"`
}

// Store is durable client-local storage for a single TokenPair.
type Store interface {
	// Load returns the stored pair, or ErrNotFound.
	Load() (*TokenPair, error)
	// Save replaces the stored pair.
	Save(pair *TokenPair) error
	// Clear removes any stored pair. Clearing an empty store is not an error.
	Clear() error
}

// MemoryStore is an in-memory Store, primarily for tests.
type MemoryStore struct {
	pair *TokenPair
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*TokenPair, error) {
	if m.pair == nil {
		return nil, ErrNotFound
	}
	cp := *m.pair
	return &cp, nil
}

func (m *MemoryStore) Save(pair *TokenPair) error {
	cp := *pair
	m.pair = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.pair = nil
	return nil
}
