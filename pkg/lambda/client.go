package lambda

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// DefaultMaxRedirects bounds a redirect chain followed by a Client
const DefaultMaxRedirects = 10

// RequestOptions configures one simulated request
type RequestOptions struct {
	FollowRedirects bool
	Query           url.Values
	Body            []byte
	ContentType     string
	Header          http.Header
}

// Client dispatches synthetic requests through an http.Handler without a network socket.
// A Client serves one caller at a time and must be closed after use.
type Client struct {
	handler      http.Handler
	ctx          context.Context
	maxRedirects int
	closed       bool
}

// NewClient opens a client over handler
func NewClient(ctx context.Context, handler http.Handler) *Client {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Client{
		handler:      handler,
		ctx:          ctx,
		maxRedirects: DefaultMaxRedirects,
	}
}

// WithClient opens a client, passes it to fn and always closes it afterwards
func WithClient(ctx context.Context, handler http.Handler, fn func(*Client) error) error {
	client := NewClient(ctx, handler)
	defer client.Close()
	return fn(client)
}

// SetMaxRedirects overrides the redirect limit
func (c *Client) SetMaxRedirects(n int) {
	if n > 0 {
		c.maxRedirects = n
	}
}

// Close releases the client
func (c *Client) Close() error {
	c.closed = true
	return nil
}

func (c *Client) Get(path string, opts RequestOptions) (*Response, error) {
	return c.open(http.MethodGet, path, opts)
}

func (c *Client) Post(path string, opts RequestOptions) (*Response, error) {
	return c.open(http.MethodPost, path, opts)
}

func (c *Client) Put(path string, opts RequestOptions) (*Response, error) {
	return c.open(http.MethodPut, path, opts)
}

func (c *Client) Patch(path string, opts RequestOptions) (*Response, error) {
	return c.open(http.MethodPatch, path, opts)
}

func (c *Client) Delete(path string, opts RequestOptions) (*Response, error) {
	return c.open(http.MethodDelete, path, opts)
}

func (c *Client) Head(path string, opts RequestOptions) (*Response, error) {
	return c.open(http.MethodHead, path, opts)
}

func (c *Client) Options(path string, opts RequestOptions) (*Response, error) {
	return c.open(http.MethodOptions, path, opts)
}

func (c *Client) Trace(path string, opts RequestOptions) (*Response, error) {
	return c.open(http.MethodTrace, path, opts)
}

// Do resolves the client operation named by method (case-insensitive) and calls it
func (c *Client) Do(method, path string, opts RequestOptions) (*Response, error) {
	op, ok := c.operations()[strings.ToLower(method)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return op(path, opts)
}

func (c *Client) operations() map[string]func(string, RequestOptions) (*Response, error) {
	return map[string]func(string, RequestOptions) (*Response, error){
		"get":     c.Get,
		"post":    c.Post,
		"put":     c.Put,
		"patch":   c.Patch,
		"delete":  c.Delete,
		"head":    c.Head,
		"options": c.Options,
		"trace":   c.Trace,
	}
}

func (c *Client) open(method, path string, opts RequestOptions) (*Response, error) {
	if c.closed {
		return nil, ErrClientClosed
	}

	// Rules are paths; a leading "//" is not an authority.
	rawPath, rawQuery, _ := strings.Cut(path, "?")
	target := &url.URL{Path: rawPath, RawQuery: rawQuery}
	if len(opts.Query) > 0 {
		q := target.Query()
		for k, vs := range opts.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	body := opts.Body
	resp, err := c.serve(method, target, body, opts)
	if err != nil {
		return nil, err
	}

	for hops := 0; opts.FollowRedirects && isRedirect(resp.StatusCode); hops++ {
		if hops >= c.maxRedirects {
			return nil, fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, hops)
		}
		location := resp.Header.Get("Location")
		if location == "" {
			break
		}
		next, err := target.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("invalid redirect location %q: %w", location, err)
		}
		switch resp.StatusCode {
		case http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		default:
			if method != http.MethodHead {
				method = http.MethodGet
			}
			body = nil
			opts.ContentType = ""
		}
		target = &url.URL{Path: next.Path, RawQuery: next.RawQuery}
		if resp, err = c.serve(method, target, body, opts); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

func (c *Client) serve(method string, target *url.URL, body []byte, opts RequestOptions) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, target.RequestURI(), reader).WithContext(c.ctx)
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.ContentType != "" && body != nil {
		req.Header.Set("Content-Type", opts.ContentType)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	result := rec.Result()
	defer result.Body.Close()
	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: result.StatusCode,
		Header:     result.Header,
		Body:       data,
	}, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
