package goBlog

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/apitest"
	"github.com/MrEthical07/goBlog/session"
)

const (
	aliceEmail    = "alice@example.com"
	alicePassword = "secret123"
)

type fixture struct {
	srv   *apitest.Server
	hs    *httptest.Server
	alice api.User
}

func newFixture(t testing.TB, opts ...apitest.Option) *fixture {
	t.Helper()

	srv := apitest.New(opts...)
	hs := srv.Start()
	t.Cleanup(hs.Close)

	return &fixture{
		srv:   srv,
		hs:    hs,
		alice: srv.SeedUser("alice", aliceEmail, alicePassword, api.RoleAuthor),
	}
}

func (f *fixture) config() Config {
	cfg := DefaultConfig()
	cfg.API.BaseURL = f.hs.URL
	cfg.API.Timeout = 5 * time.Second
	cfg.Transport.RequestsPerMinute = 0
	cfg.Transport.LogRequests = false
	cfg.Metrics.Enabled = true
	return cfg
}

func (f *fixture) build(t *testing.T, cfg Config, store session.TokenStore) *Client {
	t.Helper()

	c, err := New().WithConfig(cfg).WithTokenStore(store).Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func (f *fixture) client(t *testing.T, store session.TokenStore) *Client {
	t.Helper()
	return f.build(t, f.config(), store)
}

// signedInStore returns a store holding a valid pair for alice, as left behind
// by a previous process.
func (f *fixture) signedInStore(t *testing.T) *session.MemoryStore {
	t.Helper()

	tokens := f.srv.IssueTokens(f.alice.ID)
	store := session.NewMemoryStore()
	if err := session.SetTokens(context.Background(), store, tokens.AccessToken, tokens.RefreshToken); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func storedAccess(t *testing.T, store session.TokenStore) string {
	t.Helper()

	pair, err := store.Load(context.Background())
	if errors.Is(err, session.ErrNoTokens) {
		return ""
	}
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return pair.AccessToken
}

// faultyStore wraps a MemoryStore and fails selected operations.
type faultyStore struct {
	*session.MemoryStore
	saveErr  error
	clearErr error
}

func (s *faultyStore) Save(ctx context.Context, pair session.TokenPair) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.Save(ctx, pair)
}

func (s *faultyStore) Clear(ctx context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.MemoryStore.Clear(ctx)
}
