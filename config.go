package wikiedit

import (
	"time"

	"github.com/eringen/wikiedit/editor"
)

// Default widget assets: EasyMDE from the unpkg CDN.
const (
	DefaultWidgetScriptURL = "https://unpkg.com/easymde@2.18.0/dist/easymde.min.js"
	DefaultWidgetStyleURL  = "https://unpkg.com/easymde@2.18.0/dist/easymde.min.css"
)

// Config holds all configuration for the editor server.
type Config struct {
	Name string // Site name (default "Wiki")
	URL  string // Public URL of this server (default "http://localhost:3000")
	Addr string // Listen address (default ":3000")

	BackendURL  string // Page-storage backend base URL (default "http://localhost:8000/")
	ViewBaseURL string // Root of page view URLs (default BackendURL)
	ViewPath    string // Page view path segment (default "page")

	User            string // Fixed identity; skips login when set
	TrustUserHeader bool   // Accept X-Forwarded-User from a fronting proxy
	LoginPassword   string // Shared password for the login form
	SessionSecret   string // Required: session encryption secret
	CookieSecure    bool   // Set true for HTTPS

	UploadDir       string // Image upload directory (default "public/uploads")
	WidgetScriptURL string
	WidgetStyleURL  string

	RequestTimeout time.Duration // Backend request timeout (default 30s)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Wiki"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.BackendURL == "" {
		c.BackendURL = "http://localhost:8000/"
	}
	if c.ViewBaseURL == "" {
		c.ViewBaseURL = c.BackendURL
	}
	if c.ViewPath == "" {
		c.ViewPath = "page"
	}
	if c.UploadDir == "" {
		c.UploadDir = "public/uploads"
	}
	if c.WidgetScriptURL == "" {
		c.WidgetScriptURL = DefaultWidgetScriptURL
	}
	if c.WidgetStyleURL == "" {
		c.WidgetStyleURL = DefaultWidgetStyleURL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithBackend replaces the HTTP backend client, for tests and embedding.
// Credentials are not forwarded to a replaced backend.
func WithBackend(b editor.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithStaticDir sets the directory served under /public (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
