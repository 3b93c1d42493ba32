package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/internal/apitest"
	"github.com/MrEthical07/goBlog/middleware"
)

type fixture struct {
	srv    *apitest.Server
	client *api.Client
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{srv: apitest.New()}
	hs := f.srv.Start()
	t.Cleanup(hs.Close)

	src := middleware.TokenSourceFunc(func(context.Context) string { return f.token })
	client, err := api.New(api.Options{
		BaseURL:    hs.URL,
		HTTPClient: &http.Client{Transport: middleware.Chain(hs.Client().Transport, middleware.Bearer(src))},
		UserAgent:  "goblog-test",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	f.client = client
	return f
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "http://", "::bad"} {
		if _, err := api.New(api.Options{BaseURL: raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
	c, err := api.New(api.Options{BaseURL: "https://blog.example.com/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.BaseURL() != "https://blog.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", c.BaseURL())
	}
}

func TestLoginAndMe(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedUser("alice", "alice@example.com", "secret1", api.RoleAuthor)
	ctx := context.Background()

	res, err := f.client.Auth.Login(ctx, api.LoginInput{Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.Username != "alice" || res.Tokens.AccessToken == "" || res.Tokens.TokenType != "bearer" {
		t.Fatalf("unexpected auth result %+v", res)
	}
	if res.User.CreatedAt.IsZero() {
		t.Fatal("expected created_at decoded")
	}

	f.token = res.Tokens.AccessToken
	me, err := f.client.Users.Me(ctx)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.ID != res.User.ID {
		t.Fatalf("expected same user, got %s", me.ID)
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedUser("alice", "alice@example.com", "secret1", api.RoleAuthor)

	_, err := f.client.Auth.Login(context.Background(), api.LoginInput{Email: "alice@example.com", Password: "wrong"})
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid email or password" {
		t.Fatalf("expected server detail preserved, got %v", err)
	}
}

func TestLoginValidatesLocally(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Auth.Login(context.Background(), api.LoginInput{Email: "not-an-email", Password: "x"})
	if !errors.Is(err, api.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.srv.Calls(apitest.RouteLogin) != 0 {
		t.Fatal("invalid input must not reach the server")
	}
}

func TestAuthCallsNeverCarryBearer(t *testing.T) {
	f := newFixture(t)
	f.token = "stale-token"

	res, err := f.client.Auth.Register(context.Background(), api.RegisterInput{Username: "bo", Email: "bo@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register with stale bearer configured: %v", err)
	}
	if res.User.Role != api.RoleVisitor {
		t.Fatalf("expected visitor role, got %s", res.User.Role)
	}
}

func TestRegisterDuplicateIsBadRequest(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedUser("alice", "alice@example.com", "secret1", api.RoleVisitor)

	_, err := f.client.Auth.Register(context.Background(), api.RegisterInput{Username: "alice", Email: "a2@example.com", Password: "secret1"})
	if !errors.Is(err, api.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestMeWithoutTokenIsForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Users.Me(context.Background())
	if !errors.Is(err, api.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	u := f.srv.SeedUser("alice", "alice@example.com", "secret1", api.RoleVisitor)
	pair := f.srv.IssueTokens(u.ID)

	next, err := f.client.Auth.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.AccessToken == pair.AccessToken {
		t.Fatal("expected rotated access token")
	}
	if _, err := f.client.Auth.Refresh(context.Background(), ""); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("expected validation error for empty token, got %v", err)
	}
}

func TestProfileUpdateAndPasswordChange(t *testing.T) {
	f := newFixture(t)
	u := f.srv.SeedUser("alice", "alice@example.com", "secret1", api.RoleVisitor)
	f.srv.SeedUser("taken", "taken@example.com", "secret1", api.RoleVisitor)
	f.token = f.srv.IssueTokens(u.ID).AccessToken
	ctx := context.Background()

	bio := "writes about Go"
	updated, err := f.client.Users.UpdateMe(ctx, api.UpdateProfileInput{Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Bio == nil || *updated.Bio != bio {
		t.Fatalf("expected bio set, got %+v", updated)
	}

	taken := "taken"
	if _, err := f.client.Users.UpdateMe(ctx, api.UpdateProfileInput{Username: &taken}); !errors.Is(err, api.ErrBadRequest) {
		t.Fatalf("expected username conflict, got %v", err)
	}

	err = f.client.Users.ChangePassword(ctx, api.ChangePasswordInput{OldPassword: "wrong1", NewPassword: "secret2"})
	if !errors.Is(err, api.ErrBadRequest) {
		t.Fatalf("expected wrong old password rejected, got %v", err)
	}
	if err := f.client.Users.ChangePassword(ctx, api.ChangePasswordInput{OldPassword: "secret1", NewPassword: "secret2"}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := f.client.Auth.Login(ctx, api.LoginInput{Email: "alice@example.com", Password: "secret2"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestPostsLifecycle(t *testing.T) {
	f := newFixture(t)
	u := f.srv.SeedUser("alice", "alice@example.com", "secret1", api.RoleAuthor)
	cat := f.srv.SeedCategory("Go")
	f.token = f.srv.IssueTokens(u.ID).AccessToken
	ctx := context.Background()

	post, err := f.client.Posts.Create(ctx, api.CreatePostInput{
		Title:      "Channels in depth",
		Content:    "Unbuffered channels synchronise.",
		CategoryID: &cat.ID,
		Status:     api.PostPublished,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Slug != "channels-in-depth" || post.PublishedAt == nil {
		t.Fatalf("unexpected post %+v", post)
	}

	page, err := f.client.Posts.List(ctx, api.ListPostsParams{Category: "go", PageSize: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Pagination.Total != 1 || page.Pagination.HasNext() {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}

	got, err := f.client.Posts.Get(ctx, post.Slug)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("expected view counted, got %d", got.ViewCount)
	}

	title := "Channels, revisited"
	if _, err := f.client.Posts.Update(ctx, post.Slug, api.UpdatePostInput{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}

	hits, err := f.client.Posts.Search(ctx, api.SearchParams{Query: "unbuffered"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits.Items) != 1 {
		t.Fatalf("expected one hit, got %d", len(hits.Items))
	}
	sugg, err := f.client.Posts.Suggest(ctx, "revisit")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(sugg) != 1 || sugg[0].Slug != post.Slug {
		t.Fatalf("unexpected suggestions %+v", sugg)
	}

	if err := f.client.Posts.Delete(ctx, post.Slug); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.client.Posts.Get(ctx, post.Slug); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := f.client.Posts.Get(ctx, ""); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("expected empty slug rejected, got %v", err)
	}
}

func TestTaxonomyPermissions(t *testing.T) {
	f := newFixture(t)
	author := f.srv.SeedUser("alice", "alice@example.com", "secret1", api.RoleAuthor)
	admin := f.srv.SeedUser("root", "root@example.com", "secret1", api.RoleAdmin)
	ctx := context.Background()

	f.token = f.srv.IssueTokens(author.ID).AccessToken
	if _, err := f.client.Categories.Create(ctx, api.CategoryInput{Name: "Go"}); !errors.Is(err, api.ErrForbidden) {
		t.Fatalf("author must not create categories, got %v", err)
	}
	tag, err := f.client.Tags.Create(ctx, api.TagInput{Name: "generics"})
	if err != nil {
		t.Fatalf("author creates tag: %v", err)
	}
	if err := f.client.Tags.Delete(ctx, tag.Slug); !errors.Is(err, api.ErrForbidden) {
		t.Fatalf("author must not delete tags, got %v", err)
	}

	f.token = f.srv.IssueTokens(admin.ID).AccessToken
	cat, err := f.client.Categories.Create(ctx, api.CategoryInput{Name: "Go"})
	if err != nil {
		t.Fatalf("admin creates category: %v", err)
	}
	cats, err := f.client.Categories.List(ctx)
	if err != nil || len(cats) != 1 {
		t.Fatalf("list categories: %v %+v", err, cats)
	}
	if err := f.client.Categories.Delete(ctx, cat.Slug); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if err := f.client.Tags.Delete(ctx, tag.Slug); err != nil {
		t.Fatalf("admin deletes tag: %v", err)
	}
	tags, err := f.client.Tags.List(ctx)
	if err != nil || len(tags) != 0 {
		t.Fatalf("expected no tags, got %v %+v", err, tags)
	}
}

func TestServerErrorsMapToSentinels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.srv.FailNext(apitest.RouteListTags, http.StatusServiceUnavailable)
	if _, err := f.client.Tags.List(ctx); !errors.Is(err, api.ErrServer) {
		t.Fatalf("expected ErrServer, got %v", err)
	}
	f.srv.FailNext(apitest.RouteListTags, http.StatusTooManyRequests)
	if _, err := f.client.Tags.List(ctx); !errors.Is(err, api.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}
