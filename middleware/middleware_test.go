package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

type recordedRequest struct {
	auth      string
	requestID string
}

func newEchoServer(t *testing.T, status int) (*httptest.Server, chan recordedRequest) {
	t.Helper()
	seen := make(chan recordedRequest, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- recordedRequest{
			auth:      r.Header.Get("Authorization"),
			requestID: r.Header.Get(RequestIDHeader),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func doGet(t *testing.T, rt http.RoundTripper, ctx context.Context, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	_ = resp.Body.Close()
	return resp
}

func staticToken(tok string) TokenSource {
	return TokenSourceFunc(func(context.Context) string { return tok })
}

func TestBearerAttachesToken(t *testing.T) {
	srv, seen := newEchoServer(t, http.StatusOK)
	rt := Chain(srv.Client().Transport, Bearer(staticToken("tok-1")))

	doGet(t, rt, context.Background(), srv.URL)

	if got := (<-seen).auth; got != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestBearerSkipsAnonymousAndEmpty(t *testing.T) {
	srv, seen := newEchoServer(t, http.StatusOK)

	rt := Chain(srv.Client().Transport, Bearer(staticToken("tok-1")))
	doGet(t, rt, WithoutBearer(context.Background()), srv.URL)
	if got := (<-seen).auth; got != "" {
		t.Fatalf("expected anonymous request, got %q", got)
	}

	rt = Chain(srv.Client().Transport, Bearer(staticToken("")))
	doGet(t, rt, context.Background(), srv.URL)
	if got := (<-seen).auth; got != "" {
		t.Fatalf("expected no header for empty token, got %q", got)
	}
}

func TestBearerDoesNotMutateCallerRequest(t *testing.T) {
	srv, _ := newEchoServer(t, http.StatusOK)
	rt := Chain(srv.Client().Transport, Bearer(staticToken("tok-1")))

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	_ = resp.Body.Close()

	if req.Header.Get("Authorization") != "" {
		t.Fatal("caller request must not be modified")
	}
}

func TestUnauthorizedFiresOnlyForBearerRequests(t *testing.T) {
	srv, _ := newEchoServer(t, http.StatusUnauthorized)

	var fired atomic.Int32
	var lastToken atomic.Value
	hook := func(_ context.Context, ev UnauthorizedEvent) {
		fired.Add(1)
		lastToken.Store(ev.Token)
	}
	rt := Chain(srv.Client().Transport, Bearer(staticToken("stale")), Unauthorized(hook))

	doGet(t, rt, WithoutBearer(context.Background()), srv.URL)
	if fired.Load() != 0 {
		t.Fatal("anonymous 401 must not fire the hook")
	}

	resp := doGet(t, rt, context.Background(), srv.URL)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected response passed through, got %d", resp.StatusCode)
	}
	if fired.Load() != 1 {
		t.Fatalf("expected one hook call, got %d", fired.Load())
	}
	if got := lastToken.Load(); got != "stale" {
		t.Fatalf("expected rejected token reported, got %v", got)
	}
}

func TestUnauthorizedIgnoresOtherStatuses(t *testing.T) {
	srv, _ := newEchoServer(t, http.StatusForbidden)
	var fired atomic.Int32
	rt := Chain(srv.Client().Transport, Bearer(staticToken("t")), Unauthorized(func(context.Context, UnauthorizedEvent) {
		fired.Add(1)
	}))

	doGet(t, rt, context.Background(), srv.URL)
	if fired.Load() != 0 {
		t.Fatal("403 must not fire the unauthorized hook")
	}
}

func TestRequestIDGeneratedAndPinned(t *testing.T) {
	srv, seen := newEchoServer(t, http.StatusOK)
	rt := Chain(srv.Client().Transport, RequestID())

	doGet(t, rt, context.Background(), srv.URL)
	if got := (<-seen).requestID; len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}

	doGet(t, rt, WithRequestID(context.Background(), "fixed-id"), srv.URL)
	if got := (<-seen).requestID; got != "fixed-id" {
		t.Fatalf("expected pinned id, got %q", got)
	}
}

type denyWaiter struct{ err error }

func (d denyWaiter) Wait(context.Context) error { return d.err }

func TestRateLimitShortCircuitsOnWaitError(t *testing.T) {
	srv, seen := newEchoServer(t, http.StatusOK)
	wantErr := errors.New("budget exhausted")
	rt := Chain(srv.Client().Transport, RateLimit(denyWaiter{err: wantErr}))

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := rt.RoundTrip(req); !errors.Is(err, wantErr) {
		t.Fatalf("expected wait error, got %v", err)
	}
	select {
	case <-seen:
		t.Fatal("request must not reach the server")
	default:
	}
}

func TestLoggingOmitsCredentials(t *testing.T) {
	srv, _ := newEchoServer(t, http.StatusOK)
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	rt := Chain(srv.Client().Transport, RequestID(), Logging(logger), Bearer(staticToken("secret-token")))

	doGet(t, rt, context.Background(), srv.URL+"/api/users/me")

	out := buf.String()
	if !strings.Contains(out, `"path":"/api/users/me"`) || !strings.Contains(out, `"status":200`) {
		t.Fatalf("expected path and status in log, got %s", out)
	}
	if strings.Contains(out, "secret-token") {
		t.Fatalf("token leaked into logs: %s", out)
	}
}

func TestChainOrderOutermostFirst(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	if _, err := Chain(base, mark("a"), nil, mark("b")).RoundTrip(req); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if got := strings.Join(order, ","); got != "a,b,base" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestBearerTokenParsing(t *testing.T) {
	cases := map[string]struct {
		token string
		ok    bool
	}{
		"Bearer abc":  {token: "abc", ok: true},
		"bearer abc":  {token: "abc", ok: true},
		"Bearer ":     {ok: false},
		"Basic abc":   {ok: false},
		"":            {ok: false},
		"Bearer  abc": {token: "abc", ok: true},
	}
	for in, want := range cases {
		got, ok := bearerToken(in)
		if ok != want.ok || got != want.token {
			t.Fatalf("bearerToken(%q) = %q,%v want %q,%v", in, got, ok, want.token, want.ok)
		}
	}
}
