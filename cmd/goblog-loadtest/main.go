// Command goblog-loadtest hammers the session store with concurrent identity
// resolutions and refreshes against the in-memory fake API, then reports how
// many network calls were made per wave of callers. A healthy run shows one
// /me and one refresh call per wave no matter how many callers share it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	goBlog "github.com/MrEthical07/goBlog"
	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/apitest"
	"github.com/MrEthical07/goBlog/session"
)

func main() {
	var (
		callers   = flag.Int("callers", 256, "concurrent callers per wave")
		waves     = flag.Int("waves", 50, "number of waves per phase")
		latency   = flag.Duration("latency", 20*time.Millisecond, "artificial server latency")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix    = flag.String("prefix", "goblog-load", "token key prefix")
		verbose   = flag.Bool("v", false, "log client activity")
	)
	flag.Parse()

	if *callers <= 0 || *waves <= 0 {
		fmt.Fprintln(os.Stderr, "callers and waves must be > 0")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		rdb     redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	log := zerolog.Nop()
	if *verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	srv := apitest.New(apitest.WithLatency(*latency))
	hs := srv.Start()
	defer hs.Close()
	user := srv.SeedUser("load", "load@example.com", "secret123", api.RoleAuthor)

	h := &harness{srv: srv, baseURL: hs.URL, rdb: rdb, prefix: *prefix, user: user, log: log}

	ctx := context.Background()
	fetch, err := h.runFetchPhase(ctx, *callers, *waves)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch phase: %v\n", err)
		os.Exit(1)
	}
	refresh, err := h.runRefreshPhase(ctx, *callers, *waves)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refresh phase: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("---- results ----")
	printStats("fetch", fetch)
	printStats("refresh", refresh)
}

type harness struct {
	srv     *apitest.Server
	baseURL string
	rdb     redis.UniversalClient
	prefix  string
	user    api.User
	log     zerolog.Logger
}

// client builds a fresh session client whose durable store holds a valid pair
// for the seeded user under profile.
func (h *harness) client(ctx context.Context, profile string) (*goBlog.Client, error) {
	store := session.NewRedisStore(h.rdb, h.prefix, profile, time.Hour)
	tokens := h.srv.IssueTokens(h.user.ID)
	if err := store.Save(ctx, session.NewTokenPair(tokens.AccessToken, tokens.RefreshToken)); err != nil {
		return nil, err
	}

	cfg := goBlog.DefaultConfig()
	cfg.API.BaseURL = h.baseURL
	cfg.Transport.RequestsPerMinute = 0
	cfg.Transport.LogRequests = false
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return goBlog.New().WithConfig(cfg).WithTokenStore(store).WithLogger(h.log).Build()
}

// wave releases callers goroutines at once and records each one's latency.
func wave(callers int, call func() error) (latencies []time.Duration, failures int64) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
		fails atomic.Int64
	)
	latencies = make([]time.Duration, 0, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			t0 := time.Now()
			err := call()
			d := time.Since(t0)
			if err != nil {
				fails.Add(1)
			}
			mu.Lock()
			latencies = append(latencies, d)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()
	return latencies, fails.Load()
}

func (h *harness) runFetchPhase(ctx context.Context, callers, waves int) (phaseStats, error) {
	h.srv.ResetCalls()
	var (
		samples  []time.Duration
		failures int64
	)

	start := time.Now()
	for w := 0; w < waves; w++ {
		c, err := h.client(ctx, fmt.Sprintf("fetch-%d", w))
		if err != nil {
			return phaseStats{}, err
		}
		lat, fails := wave(callers, func() error {
			if err := c.FetchUser(ctx); err != nil {
				return err
			}
			if !c.IsAuthenticated() {
				return goBlog.ErrNoSession
			}
			return nil
		})
		c.Close()
		samples = append(samples, lat...)
		failures += fails
	}
	s := computeStats(time.Since(start), samples, failures)
	s.waves = waves
	s.calls = h.srv.Calls(apitest.RouteMe)
	return s, nil
}

func (h *harness) runRefreshPhase(ctx context.Context, callers, waves int) (phaseStats, error) {
	c, err := h.client(ctx, "refresh")
	if err != nil {
		return phaseStats{}, err
	}
	defer c.Close()

	h.srv.ResetCalls()
	var (
		samples  []time.Duration
		failures int64
	)
	start := time.Now()
	for w := 0; w < waves; w++ {
		lat, fails := wave(callers, func() error { return c.Refresh(ctx) })
		samples = append(samples, lat...)
		failures += fails
	}
	s := computeStats(time.Since(start), samples, failures)
	s.waves = waves
	s.calls = h.srv.Calls(apitest.RouteRefresh)
	return s, nil
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	waves    int
	calls    int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

// callsPerWave is 1.0 when every wave collapsed into a single network call.
func (s phaseStats) callsPerWave() float64 {
	if s.waves == 0 {
		return 0
	}
	return float64(s.calls) / float64(s.waves)
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: callers=%d failures=%d waves=%d calls=%d calls/wave=%.2f total=%s p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.waves,
		s.calls,
		s.callsPerWave(),
		s.total.Round(time.Millisecond),
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
