package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNoTokens is returned by [TokenStore.Load] when nothing is persisted.
var ErrNoTokens = errors.New("no tokens stored")

// ErrCorruptTokens is returned when a persisted blob cannot be decoded.
var ErrCorruptTokens = errors.New("stored tokens corrupt")

// ErrStoreUnavailable wraps backend I/O failures (filesystem, Redis).
var ErrStoreUnavailable = errors.New("token store unavailable")

// TokenStore persists the token pair across process restarts.
//
// Implementations must be safe for concurrent use. Clear must be idempotent:
// clearing an empty store returns nil.
type TokenStore interface {
	Load(ctx context.Context) (TokenPair, error)
	Save(ctx context.Context, pair TokenPair) error
	Clear(ctx context.Context) error
}

// AccessToken returns the durable access token, or "" when none is stored or
// the store cannot be read.
func AccessToken(ctx context.Context, s TokenStore) string {
	if s == nil {
		return ""
	}
	pair, err := s.Load(ctx)
	if err != nil {
		return ""
	}
	return pair.AccessToken
}

// RefreshToken returns the durable refresh token, or "".
func RefreshToken(ctx context.Context, s TokenStore) string {
	if s == nil {
		return ""
	}
	pair, err := s.Load(ctx)
	if err != nil {
		return ""
	}
	return pair.RefreshToken
}

// SetTokens persists a freshly issued pair.
func SetTokens(ctx context.Context, s TokenStore, access, refresh string) error {
	if s == nil {
		return ErrStoreUnavailable
	}
	return s.Save(ctx, NewTokenPair(access, refresh))
}

// ClearTokens removes any persisted pair.
func ClearTokens(ctx context.Context, s TokenStore) error {
	if s == nil {
		return nil
	}
	return s.Clear(ctx)
}

// IsLoggedIn reports whether a durable access token is present. It says nothing
// about whether the server still accepts that token.
func IsLoggedIn(ctx context.Context, s TokenStore) bool {
	return AccessToken(ctx, s) != ""
}

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	pair TokenPair
	set  bool
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements [TokenStore].
func (m *MemoryStore) Load(ctx context.Context) (TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return TokenPair{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return TokenPair{}, ErrNoTokens
	}
	return m.pair, nil
}

// Save implements [TokenStore].
func (m *MemoryStore) Save(ctx context.Context, pair TokenPair) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pair.Empty() {
		return errors.New("empty access token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	m.set = true
	return nil
}

// Clear implements [TokenStore].
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = TokenPair{}
	m.set = false
	return nil
}
