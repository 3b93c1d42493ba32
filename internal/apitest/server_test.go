package apitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/goBlog/api"
)

func call(t *testing.T, s *Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestMeRequiresBearer(t *testing.T) {
	s := New()
	u := s.SeedUser("alice", "alice@example.com", "secret1", api.RoleVisitor)

	code, body := call(t, s, http.MethodGet, "/api/users/me", "", nil)
	if code != http.StatusForbidden || body["detail"] != "Not authenticated" {
		t.Fatalf("expected 403 Not authenticated, got %d %v", code, body)
	}

	code, _ = call(t, s, http.MethodGet, "/api/users/me", "garbage", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", code)
	}

	tok := s.IssueTokens(u.ID)
	code, body = call(t, s, http.MethodGet, "/api/users/me", tok.AccessToken, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	data := body["data"].(map[string]any)
	if data["username"] != "alice" {
		t.Fatalf("unexpected user %v", data)
	}
	if s.Calls(RouteMe) != 3 {
		t.Fatalf("expected 3 counted calls, got %d", s.Calls(RouteMe))
	}
}

func TestLoginOutcomes(t *testing.T) {
	s := New()
	u := s.SeedUser("bob", "bob@example.com", "secret1", api.RoleAuthor)

	code, body := call(t, s, http.MethodPost, "/api/auth/login", "", api.LoginInput{Email: "bob@example.com", Password: "nope"})
	if code != http.StatusUnauthorized || body["detail"] != "Invalid email or password" {
		t.Fatalf("expected 401, got %d %v", code, body)
	}

	code, _ = call(t, s, http.MethodPost, "/api/auth/login", "", api.LoginInput{Email: "bob@example.com", Password: "secret1"})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	s.DisableUser(u.ID)
	code, body = call(t, s, http.MethodPost, "/api/auth/login", "", api.LoginInput{Email: "bob@example.com", Password: "secret1"})
	if code != http.StatusForbidden || body["detail"] != "Account is disabled" {
		t.Fatalf("expected 403 disabled, got %d %v", code, body)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := New()
	s.SeedUser("carol", "carol@example.com", "secret1", api.RoleVisitor)

	code, _ := call(t, s, http.MethodPost, "/api/auth/register", "", api.RegisterInput{Username: "carol", Email: "other@example.com", Password: "secret1"})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestRefreshRotatesAndRejectsAccessTokens(t *testing.T) {
	s := New()
	u := s.SeedUser("dan", "dan@example.com", "secret1", api.RoleVisitor)
	tok := s.IssueTokens(u.ID)

	code, _ := call(t, s, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": tok.AccessToken})
	if code != http.StatusUnauthorized {
		t.Fatalf("access token must not refresh, got %d", code)
	}
	code, _ = call(t, s, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": tok.RefreshToken})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	code, _ = call(t, s, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": tok.RefreshToken})
	if code != http.StatusUnauthorized {
		t.Fatalf("refresh token must be single use, got %d", code)
	}
}

func TestFailNextQueuesStatuses(t *testing.T) {
	s := New()
	s.FailNext(RouteListPosts, http.StatusServiceUnavailable, http.StatusInternalServerError)

	for _, want := range []int{http.StatusServiceUnavailable, http.StatusInternalServerError, http.StatusOK} {
		if code, _ := call(t, s, http.MethodGet, "/api/posts", "", nil); code != want {
			t.Fatalf("expected %d, got %d", want, code)
		}
	}
}

func TestHoldMeBlocksUntilRelease(t *testing.T) {
	s := New()
	u := s.SeedUser("erin", "erin@example.com", "secret1", api.RoleVisitor)
	tok := s.IssueTokens(u.ID)
	release := s.HoldMe()

	done := make(chan int, 1)
	go func() {
		code, _ := call(t, s, http.MethodGet, "/api/users/me", tok.AccessToken, nil)
		done <- code
	}()

	select {
	case <-done:
		t.Fatal("request completed while held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	release()
	select {
	case code := <-done:
		if code != http.StatusOK {
			t.Fatalf("expected 200 after release, got %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request never completed")
	}
}

func TestPostPermissionsAndListing(t *testing.T) {
	s := New()
	author := s.SeedUser("frank", "frank@example.com", "secret1", api.RoleAuthor)
	visitor := s.SeedUser("gina", "gina@example.com", "secret1", api.RoleVisitor)
	cat := s.SeedCategory("Go Tips")
	tag := s.SeedTag("concurrency")

	visitorTok := s.IssueTokens(visitor.ID).AccessToken
	authorTok := s.IssueTokens(author.ID).AccessToken

	in := api.CreatePostInput{Title: "Hello World", Content: "body", CategoryID: &cat.ID, TagIDs: []string{tag.ID}, Status: api.PostPublished}
	if code, _ := call(t, s, http.MethodPost, "/api/posts", visitorTok, in); code != http.StatusForbidden {
		t.Fatalf("visitor must not create posts, got %d", code)
	}
	code, body := call(t, s, http.MethodPost, "/api/posts", authorTok, in)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if slug := body["data"].(map[string]any)["slug"]; slug != "hello-world" {
		t.Fatalf("unexpected slug %v", slug)
	}

	code, body = call(t, s, http.MethodGet, "/api/posts?category=go-tips&tag=concurrency", "", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pg := body["data"].(map[string]any)["pagination"].(map[string]any)
	if pg["total"].(float64) != 1 {
		t.Fatalf("expected one filtered post, got %v", pg)
	}

	if code, _ := call(t, s, http.MethodDelete, "/api/tags/concurrency", authorTok, nil); code != http.StatusForbidden {
		t.Fatalf("author must not delete tags, got %d", code)
	}
	if code, _ := call(t, s, http.MethodGet, "/api/posts/missing", "", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":     "hello-world",
		"  Go -- Tips!  ": "go-tips",
		"Ünïcode and 42":  "n-code-and-42",
		"":                "",
		"already-slugged": "already-slugged",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
