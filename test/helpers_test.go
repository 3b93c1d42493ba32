//go:build integration

package test

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goBlog "github.com/MrEthical07/goBlog"
	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/apitest"
	"github.com/MrEthical07/goBlog/session"
)

const (
	email    = "alice@example.com"
	password = "secret123"
)

type backend struct {
	srv   *apitest.Server
	hs    *httptest.Server
	alice api.User
}

func newBackend(t *testing.T, opts ...apitest.Option) *backend {
	t.Helper()
	srv := apitest.New(opts...)
	hs := srv.Start()
	t.Cleanup(hs.Close)
	return &backend{srv: srv, hs: hs, alice: srv.SeedUser("alice", email, password, api.RoleAuthor)}
}

func (b *backend) client(t *testing.T, store session.TokenStore) *goBlog.Client {
	t.Helper()

	cfg := goBlog.DefaultConfig()
	cfg.API.BaseURL = b.hs.URL
	cfg.API.Timeout = 5 * time.Second
	cfg.Transport.RequestsPerMinute = 0
	cfg.Transport.LogRequests = false
	cfg.Metrics.Enabled = true

	c, err := goBlog.New().WithConfig(cfg).WithTokenStore(store).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// redisMode describes which Redis backend a test is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) redis.UniversalClient
}

// redisModes always includes miniredis. A real server joins when REDIS_ADDR is
// set, a cluster when REDIS_CLUSTER_ADDRS is.
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{{
		name: "miniredis",
		setup: func(t *testing.T) redis.UniversalClient {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return rdb
		},
	}}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) redis.UniversalClient {
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ping(t, rdb)
				rdb.FlushDB(context.Background())
				t.Cleanup(func() { rdb.FlushDB(context.Background()); _ = rdb.Close() })
				return rdb
			},
		})
	}

	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) redis.UniversalClient {
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
				ping(t, rdb)
				t.Cleanup(func() { _ = rdb.Close() })
				return rdb
			},
		})
	}
	return modes
}

func ping(t *testing.T, rdb redis.UniversalClient) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("cannot connect to Redis: %v", err)
	}
}

func splitAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
