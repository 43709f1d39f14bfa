// Package pageapi is a client for the page-storage backend the editor saves to.
package pageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

// Meta is the metadata block of a stored page.
type Meta struct {
	Title   string `json:"title" yaml:"title"`
	Private bool   `json:"private" yaml:"private"`
}

// Page is the stored representation returned by the read endpoint.
type Page struct {
	Content string `json:"content"`
	Meta    Meta   `json:"meta"`
	Error   string `json:"error,omitempty"`
}

// Commit is the body posted to the commit endpoint.
type Commit struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Private bool   `json:"private"`
	Dir     string `json:"dir,omitempty"`
}

// Credentials are forwarded with every request on behalf of the browser.
type Credentials struct {
	Cookies []*http.Cookie
	User    string
}

// Client talks to the backend rooted at a base URL.
type Client struct {
	base  *url.URL
	http  *http.Client
	creds Credentials
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets a per-request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// NewClient returns a client for the backend at base. A trailing slash is
// added to base when missing so relative paths resolve beneath it.
func NewClient(base string, opts ...Option) (*Client, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("pageapi: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("pageapi: base url %q must be absolute", base)
	}
	c := &Client{base: u, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Base returns the backend base URL, always ending in a slash.
func (c *Client) Base() string {
	return c.base.String()
}

// WithCredentials returns a copy of c that sends creds with each request.
func (c *Client) WithCredentials(creds Credentials) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

// Page reads the page stored under slug.
func (c *Client) Page(ctx context.Context, slug string) (Page, error) {
	body, err := c.do(ctx, http.MethodGet, "repo/"+escapeSlug(slug), nil)
	if err != nil {
		return Page{}, fmt.Errorf("pageapi: read %s: %w", slug, err)
	}
	var p Page
	if err := json.Unmarshal(body, &p); err != nil {
		return Page{}, fmt.Errorf("pageapi: decode %s: %w", slug, err)
	}
	if p.Error != "" {
		return Page{}, &ApplicationError{Message: p.Error}
	}
	return p, nil
}

// Source reads the raw markdown document stored under slug and splits its
// front matter from the body.
func (c *Client) Source(ctx context.Context, slug string) (Page, error) {
	body, err := c.do(ctx, http.MethodGet, "repo/"+escapeSlug(slug)+".md", nil)
	if err != nil {
		return Page{}, fmt.Errorf("pageapi: read source %s: %w", slug, err)
	}
	var meta Meta
	rest, err := frontmatter.Parse(bytes.NewReader(body), &meta)
	if err != nil {
		return Page{}, fmt.Errorf("pageapi: parse source %s: %w", slug, err)
	}
	return Page{Content: string(rest), Meta: meta}, nil
}

// Commit stores a page and returns the slug the backend saved it under.
func (c *Client) Commit(ctx context.Context, commit Commit) (string, error) {
	payload, err := json.Marshal(commit)
	if err != nil {
		return "", fmt.Errorf("pageapi: encode commit: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "commit", payload)
	if err != nil {
		return "", fmt.Errorf("pageapi: commit %q: %w", commit.Title, err)
	}
	slug := strings.TrimSpace(string(body))
	if slug == "" {
		return "", fmt.Errorf("pageapi: commit %q: empty slug in response", commit.Title)
	}
	return slug, nil
}

func (c *Client) do(ctx context.Context, method, ref string, payload []byte) ([]byte, error) {
	u, err := c.base.Parse(ref)
	if err != nil {
		return nil, err
	}
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.creds.Cookies {
		req.AddCookie(ck)
	}
	if c.creds.User != "" {
		req.Header.Set(UserHeader, c.creds.User)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// UserHeader carries the authenticated user name to the backend.
const UserHeader = "X-Forwarded-User"

// escapeSlug escapes each segment of a hierarchical slug, keeping separators.
func escapeSlug(slug string) string {
	parts := strings.Split(strings.Trim(slug, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
