package api

import (
	"context"
	"net/http"
	"net/url"
)

// PostsService covers /api/posts.
type PostsService struct {
	c *Client
}

// List returns one page of posts. The server defaults Status to published.
func (s *PostsService) List(ctx context.Context, p ListPostsParams) (*Page[PostListItem], error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	q := pageQuery(p.Page, p.PageSize)
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Tag != "" {
		q.Set("tag", p.Tag)
	}
	if p.Author != "" {
		q.Set("author", p.Author)
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}

	var out Page[PostListItem]
	if err := s.c.do(ctx, http.MethodGet, "/api/posts", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a full post by slug.
func (s *PostsService) Get(ctx context.Context, slug string) (*Post, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}
	var out Post
	if err := s.c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(slug), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create publishes or drafts a new post. Requires the author or admin role.
func (s *PostsService) Create(ctx context.Context, in CreatePostInput) (*Post, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out Post
	if err := s.c.do(ctx, http.MethodPost, "/api/posts", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches the post at slug.
func (s *PostsService) Update(ctx context.Context, slug string, in UpdatePostInput) (*Post, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out Post
	if err := s.c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(slug), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the post at slug.
func (s *PostsService) Delete(ctx context.Context, slug string) error {
	if err := requireSlug(slug); err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(slug), nil, nil, nil)
}

// Search runs a full-text query over published posts.
func (s *PostsService) Search(ctx context.Context, p SearchParams) (*Page[PostListItem], error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	q := pageQuery(p.Page, p.PageSize)
	q.Set("q", p.Query)

	var out Page[PostListItem]
	if err := s.c.do(ctx, http.MethodGet, "/api/posts/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suggest returns title completions for a partial query.
func (s *PostsService) Suggest(ctx context.Context, query string) ([]SearchSuggestion, error) {
	if query == "" {
		return nil, &ValidationError{Fields: map[string]string{"q": "is required"}}
	}
	var out []SearchSuggestion
	if err := s.c.do(ctx, http.MethodGet, "/api/posts/search/suggest", url.Values{"q": {query}}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func requireSlug(slug string) error {
	if slug == "" {
		return &ValidationError{Fields: map[string]string{"slug": "is required"}}
	}
	return nil
}
