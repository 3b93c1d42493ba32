//go:build integration

package test

import (
	"context"
	"sync"
	"testing"
	"time"

	goBlog "github.com/MrEthical07/goBlog"
	"github.com/MrEthical07/goBlog/internal/apitest"
	"github.com/MrEthical07/goBlog/session"
)

func TestConcurrentFetchSharesOneRequestPerClient(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb := mode.setup(t)
			b := newBackend(t, apitest.WithLatency(30*time.Millisecond))

			tokens := b.srv.IssueTokens(b.alice.ID)
			seed := session.NewRedisStore(rdb, "race", "default", 0)
			if err := seed.Save(ctx, session.NewTokenPair(tokens.AccessToken, tokens.RefreshToken)); err != nil {
				t.Fatalf("seed: %v", err)
			}

			clients := []*goBlog.Client{
				b.client(t, session.NewRedisStore(rdb, "race", "default", 0)),
				b.client(t, session.NewRedisStore(rdb, "race", "default", 0)),
			}

			const callers = 64
			start := make(chan struct{})
			var wg sync.WaitGroup
			errs := make(chan error, callers*len(clients))
			for _, c := range clients {
				for i := 0; i < callers; i++ {
					wg.Add(1)
					go func(c *goBlog.Client) {
						defer wg.Done()
						<-start
						errs <- c.FetchUser(ctx)
					}(c)
				}
			}
			close(start)
			wg.Wait()
			close(errs)

			for err := range errs {
				if err != nil {
					t.Fatalf("fetch: %v", err)
				}
			}
			for i, c := range clients {
				if !c.IsAuthenticated() {
					t.Fatalf("client %d not authenticated: %+v", i, c.State())
				}
			}
			if n := b.srv.Calls(apitest.RouteMe); n != int64(len(clients)) {
				t.Fatalf("expected one /me per client, got %d", n)
			}
		})
	}
}

func TestLogoutDuringFetchStaysLoggedOut(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	store := session.NewMemoryStore()
	tokens := b.srv.IssueTokens(b.alice.ID)
	if err := store.Save(ctx, session.NewTokenPair(tokens.AccessToken, tokens.RefreshToken)); err != nil {
		t.Fatal(err)
	}
	c := b.client(t, store)

	release := b.srv.HoldMe()
	done := make(chan error, 1)
	go func() { done <- c.FetchUser(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for b.srv.Calls(apitest.RouteMe) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("fetch never reached the server")
		}
		time.Sleep(time.Millisecond)
	}
	c.Logout(ctx)
	release()

	if err := <-done; err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if st := c.State(); st.User != nil || st.AccessToken != "" || st.HasFetchedOnce {
		t.Fatalf("late /me answer resurrected the session: %+v", st)
	}
	if session.IsLoggedIn(ctx, store) {
		t.Fatal("store must stay empty")
	}
}
