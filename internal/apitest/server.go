// Package apitest runs an in-memory fake of the blog API for tests, the load
// tool and the local stub server.
//
// The fake issues real HS256 JWTs (sub, type, exp) so client-side token
// inspection behaves as it does against the real service, and it counts calls
// per route so tests can assert on request volume.
package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrEthical07/goBlog/api"
)

// Route keys accepted by [Server.Calls] and [Server.FailNext].
const (
	RouteLogin          = "POST /api/auth/login"
	RouteRegister       = "POST /api/auth/register"
	RouteRefresh        = "POST /api/auth/refresh"
	RouteMe             = "GET /api/users/me"
	RouteUpdateMe       = "PUT /api/users/me"
	RouteChangePassword = "PUT /api/users/me/password"
	RouteGetUser        = "GET /api/users/{id}"
	RouteListPosts      = "GET /api/posts"
	RouteGetPost        = "GET /api/posts/{slug}"
	RouteCreatePost     = "POST /api/posts"
	RouteUpdatePost     = "PUT /api/posts/{slug}"
	RouteDeletePost     = "DELETE /api/posts/{slug}"
	RouteSearch         = "GET /api/posts/search"
	RouteSuggest        = "GET /api/posts/search/suggest"
	RouteListCategories = "GET /api/categories"
	RouteCreateCategory = "POST /api/categories"
	RouteUpdateCategory = "PUT /api/categories/{slug}"
	RouteDeleteCategory = "DELETE /api/categories/{slug}"
	RouteListTags       = "GET /api/tags"
	RouteCreateTag      = "POST /api/tags"
	RouteDeleteTag      = "DELETE /api/tags/{slug}"
)

type userRecord struct {
	user     api.User
	password string
	active   bool
}

type postRecord struct {
	post       api.Post
	categoryID string
	tagIDs     []string
	deleted    bool
}

// Option configures a [Server].
type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens (default 30m).
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithLatency delays every response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// Server is the fake API. All methods are safe for concurrent use.
type Server struct {
	secret    []byte
	accessTTL time.Duration
	latency   time.Duration
	router    chi.Router

	mu         sync.Mutex
	users      map[string]*userRecord // by id
	access     map[string]string      // access token -> user id
	refresh    map[string]string      // refresh token -> user id
	posts      []*postRecord
	categories []*api.Category
	tags       []*api.Tag
	failures   map[string][]int
	meGate     chan struct{}

	callsMu sync.Mutex
	calls   map[string]*atomic.Int64
}

// New returns a fake with no data.
func New(opts ...Option) *Server {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	s := &Server{
		secret:    secret,
		accessTTL: 30 * time.Minute,
		users:     make(map[string]*userRecord),
		access:    make(map[string]string),
		refresh:   make(map[string]string),
		failures:  make(map[string][]int),
		calls:     make(map[string]*atomic.Int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving the fake API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the fake on a loopback listener. Callers close the returned
// server.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.router)
}

// Calls returns how many requests reached route (one of the Route constants).
func (s *Server) Calls(route string) int64 {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()
	c, ok := s.calls[route]
	if !ok {
		return 0
	}
	return c.Load()
}

// ResetCalls zeroes every route counter.
func (s *Server) ResetCalls() {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()
	s.calls = make(map[string]*atomic.Int64)
}

// FailNext makes the next requests to route answer with the given statuses, one
// per request, before normal handling resumes.
func (s *Server) FailNext(route string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], statuses...)
}

// HoldMe blocks GET /api/users/me until the returned release func is called.
// Calls after release are not held.
func (s *Server) HoldMe() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.meGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.meGate == gate {
				s.meGate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// SeedUser creates an active account and returns its identity.
func (s *Server) SeedUser(username, email, password string, role api.Role) api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(username, email, password, role)
}

// IssueTokens mints a fresh pair for an existing user, as a login would.
func (s *Server) IssueTokens(userID string) api.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

// IssueExpiredToken mints an access token whose exp is already in the past. The
// server still honours it, which lets tests tell local expiry checks apart from
// server rejection.
func (s *Server) IssueExpiredToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := s.signLocked(userID, "access", time.Now().Add(-time.Hour))
	s.access[tok] = userID
	return tok
}

// RevokeAll invalidates every issued token, simulating server-side expiry.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
	s.refresh = make(map[string]string)
}

// RevokeAccess invalidates one access token.
func (s *Server) RevokeAccess(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.access, token)
}

// DisableUser marks an account inactive; its tokens stop working.
func (s *Server) DisableUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.users[userID]; ok {
		rec.active = false
	}
}

// SeedCategory creates a category.
func (s *Server) SeedCategory(name string) api.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.createCategoryLocked(name, nil)
}

// SeedTag creates a tag.
func (s *Server) SeedTag(name string) api.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.createTagLocked(name)
}

// SeedPost creates a post authored by authorID.
func (s *Server) SeedPost(authorID string, in api.CreatePostInput) api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createPostLocked(s.users[authorID], in).post
}

func (s *Server) createUserLocked(username, email, password string, role api.Role) api.User {
	u := api.User{
		ID:        newID(),
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: api.Time{Time: time.Now().UTC().Truncate(time.Second)},
	}
	s.users[u.ID] = &userRecord{user: u, password: password, active: true}
	return u
}

func (s *Server) issueLocked(userID string) api.Tokens {
	access := s.signLocked(userID, "access", time.Now().Add(s.accessTTL))
	refresh := s.signLocked(userID, "refresh", time.Now().Add(7*24*time.Hour))
	s.access[access] = userID
	s.refresh[refresh] = userID
	return api.Tokens{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}

func (s *Server) signLocked(userID, typ string, exp time.Time) string {
	claims := jwt.MapClaims{
		"sub":  userID,
		"type": typ,
		"exp":  exp.Unix(),
		"jti":  uuid.NewString(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return tok
}

func newID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Code: 200, Message: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, envelope{Code: 200, Message: msg})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(dst) == nil
}
