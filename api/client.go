package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goBlog/middleware"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 4 << 20
)

// Options configures a [Client].
type Options struct {
	// BaseURL is the API origin, e.g. "https://blog.example.com". Paths such as
	// /api/auth/login are appended to it.
	BaseURL string
	// HTTPClient performs requests. Nil uses a client with a 15s timeout and the
	// default transport.
	HTTPClient *http.Client
	// UserAgent is sent on every request when set.
	UserAgent string
}

// Client talks to one blog API origin.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string

	Auth       *AuthService
	Users      *UsersService
	Posts      *PostsService
	Categories *CategoriesService
	Tags       *TagsService
}

// New validates opts and returns a [Client].
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("api: base URL required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported base URL scheme %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, errors.New("api: base URL has no host")
	}
	base.Path = strings.TrimRight(base.Path, "/")

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}

	c := &Client{
		base:      base,
		http:      hc,
		userAgent: opts.UserAgent,
	}
	c.Auth = &AuthService{c: c}
	c.Users = &UsersService{c: c}
	c.Posts = &PostsService{c: c}
	c.Categories = &CategoriesService{c: c}
	c.Tags = &TagsService{c: c}
	return c, nil
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one JSON request and decodes the envelope's data into out (which
// may be nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	requestID := resp.Header.Get(middleware.RequestIDHeader)
	if requestID == "" && resp.Request != nil {
		requestID = resp.Request.Header.Get(middleware.RequestIDHeader)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, raw, requestID)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		if out != nil {
			return fmt.Errorf("%w: empty body", ErrMalformedResponse)
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Code >= 400 {
		return &Error{StatusCode: env.Code, Code: env.Code, Message: env.Message, RequestID: requestID}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if pageSize > 0 {
		q.Set("page_size", fmt.Sprint(pageSize))
	}
	return q
}
