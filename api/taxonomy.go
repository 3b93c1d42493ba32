package api

import (
	"context"
	"net/http"
	"net/url"
)

// CategoriesService covers /api/categories. Writes require the admin role.
type CategoriesService struct {
	c *Client
}

// List returns every category with its post count.
func (s *CategoriesService) List(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a category. The server derives the slug from the name.
func (s *CategoriesService) Create(ctx context.Context, in CategoryInput) (*Category, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out Category
	if err := s.c.do(ctx, http.MethodPost, "/api/categories", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches the category at slug.
func (s *CategoriesService) Update(ctx context.Context, slug string, in CategoryUpdateInput) (*Category, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out Category
	if err := s.c.do(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(slug), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the category at slug.
func (s *CategoriesService) Delete(ctx context.Context, slug string) error {
	if err := requireSlug(slug); err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(slug), nil, nil, nil)
}

// TagsService covers /api/tags. Create requires author or admin, delete requires
// admin.
type TagsService struct {
	c *Client
}

// List returns every tag.
func (s *TagsService) List(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if err := s.c.do(ctx, http.MethodGet, "/api/tags", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a tag.
func (s *TagsService) Create(ctx context.Context, in TagInput) (*Tag, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	var out Tag
	if err := s.c.do(ctx, http.MethodPost, "/api/tags", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the tag at slug.
func (s *TagsService) Delete(ctx context.Context, slug string) error {
	if err := requireSlug(slug); err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodDelete, "/api/tags/"+url.PathEscape(slug), nil, nil, nil)
}
