//go:build integration

package test

import (
	"context"
	"fmt"
	"testing"

	"github.com/MrEthical07/goBlog/internal/apitest"
	"github.com/MrEthical07/goBlog/session"
)

func TestRedisSessionSurvivesRestart(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb := mode.setup(t)
			b := newBackend(t)
			prefix := fmt.Sprintf("it-%s", t.Name())

			first := b.client(t, session.NewRedisStore(rdb, prefix, "default", 0))
			if err := first.Login(ctx, email, password); err != nil {
				t.Fatalf("login: %v", err)
			}
			first.Close()

			second := b.client(t, session.NewRedisStore(rdb, prefix, "default", 0))
			if err := second.FetchUser(ctx); err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if u := second.User(); u == nil || u.ID != b.alice.ID {
				t.Fatalf("expected alice restored, got %+v", u)
			}
			if n := b.srv.Calls(apitest.RouteMe); n != 1 {
				t.Fatalf("expected one /me, got %d", n)
			}

			second.Logout(ctx)
			if n, err := rdb.Exists(ctx, prefix+":tok:default").Result(); err != nil || n != 0 {
				t.Fatalf("expected key removed, exists=%d err=%v", n, err)
			}
		})
	}
}

func TestRedisProfilesDoNotShareSessions(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb := mode.setup(t)
			b := newBackend(t)

			work := b.client(t, session.NewRedisStore(rdb, "it", "work", 0))
			home := b.client(t, session.NewRedisStore(rdb, "it", "home", 0))
			if err := work.Login(ctx, email, password); err != nil {
				t.Fatalf("login: %v", err)
			}
			if err := home.FetchUser(ctx); err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if home.IsAuthenticated() {
				t.Fatal("home profile must stay a guest")
			}
			if n := b.srv.Calls(apitest.RouteMe); n != 0 {
				t.Fatalf("guest resolution must not call /me, saw %d", n)
			}
		})
	}
}
