// Package editor implements the page editor view: it loads a page into the
// markdown widget and form fields, and commits the edited page back to the
// page-storage backend.
package editor

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/eringen/wikiedit/pageapi"
)

var (
	// ErrSaveInFlight is returned by Save while a previous save is pending.
	ErrSaveInFlight = errors.New("editor: save already in flight")
)

// Backend is the page-storage collaborator. *pageapi.Client satisfies it.
type Backend interface {
	Page(ctx context.Context, slug string) (pageapi.Page, error)
	Commit(ctx context.Context, c pageapi.Commit) (string, error)
}

// Navigator moves the host to another URL after a successful save.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

// Navigate calls f(url).
func (f NavigatorFunc) Navigate(url string) { f(url) }

// Logger is the subset of echo.Logger the view writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Config wires a View to its collaborators.
type Config struct {
	Widget    TextEditor
	Backend   Backend
	Navigator Navigator
	Logger    Logger

	// BaseURL is the root that view URLs are built under.
	BaseURL string
	// ViewPath is the path segment of the page view route (default "page").
	ViewPath string
}

// View is the page editor controller. A View holds the state of one edit
// session and is safe for concurrent use.
type View struct {
	id       string
	widget   TextEditor
	backend  Backend
	nav      Navigator
	log      Logger
	baseURL  string
	viewPath string

	mu        sync.Mutex
	form      Form
	slug      string
	uploading bool
}

// NewView binds a view to its widget and mirrors the widget buffer into the
// form's content field.
func NewView(cfg Config) *View {
	if cfg.Widget == nil {
		cfg.Widget = NewBuffer("")
	}
	if cfg.Navigator == nil {
		cfg.Navigator = NavigatorFunc(func(string) {})
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New("editor")
	}
	if cfg.ViewPath == "" {
		cfg.ViewPath = "page"
	}
	v := &View{
		id:       uuid.NewString()[:8],
		widget:   cfg.Widget,
		backend:  cfg.Backend,
		nav:      cfg.Navigator,
		log:      cfg.Logger,
		baseURL:  cfg.BaseURL,
		viewPath: cfg.ViewPath,
	}
	v.form.Content = cfg.Widget.Value()
	cfg.Widget.OnChange(func(s string) {
		v.mu.Lock()
		v.form.Content = s
		v.mu.Unlock()
	})
	return v
}

// Init resolves the page to edit from the location's "page" query
// parameter. Without one the view stays empty and a new page is created on
// save.
func (v *View) Init(ctx context.Context, location *url.URL) error {
	slug := strings.Trim(strings.TrimSpace(location.Query().Get("page")), "/")
	if slug == "" {
		return nil
	}
	return v.Load(ctx, slug)
}

// Load fetches slug from the backend and populates the widget and fields.
// On failure the view is left untouched.
func (v *View) Load(ctx context.Context, slug string) error {
	if !pageapi.ValidPath(slug) {
		v.log.Warnf("[%s] load %q: %v", v.id, slug, ErrInvalidSlug)
		return ErrInvalidSlug
	}
	p, err := v.backend.Page(ctx, slug)
	if err != nil {
		v.log.Errorf("[%s] load %q: %v", v.id, slug, err)
		return err
	}

	v.widget.SetValue(p.Content)

	v.mu.Lock()
	v.slug = slug
	v.form.Title = p.Meta.Title
	v.form.Private = p.Meta.Private
	v.form.Dir = DirOf(slug)
	v.mu.Unlock()

	v.log.Infof("[%s] loaded %q", v.id, slug)
	return nil
}

// Restore puts previously submitted state back into the view, as when a
// form post is replayed into a fresh view.
func (v *View) Restore(slug string, f Form) {
	v.widget.SetValue(f.Content)

	v.mu.Lock()
	v.slug = slug
	v.form.Title = f.Title
	v.form.Private = f.Private
	v.form.Dir = f.Dir
	v.mu.Unlock()
}

// Save validates the form and commits it. On success the navigator is sent
// to the saved page's view URL.
func (v *View) Save(ctx context.Context) error {
	v.mu.Lock()
	if v.uploading {
		v.mu.Unlock()
		v.log.Warnf("[%s] save ignored: %v", v.id, ErrSaveInFlight)
		return ErrSaveInFlight
	}
	f := v.form
	f.Content = v.widget.Value()
	f.Title = strings.TrimSpace(f.Title)
	f.Dir = strings.Trim(strings.TrimSpace(f.Dir), "/")
	if err := f.Validate(); err != nil {
		v.mu.Unlock()
		v.log.Warnf("[%s] save aborted: %v", v.id, err)
		return err
	}
	v.uploading = true
	v.mu.Unlock()

	slug, err := v.backend.Commit(ctx, f.commit())
	if err != nil {
		v.setUploading(false)
		v.log.Errorf("[%s] save %q: %v", v.id, f.Title, err)
		return err
	}

	v.mu.Lock()
	v.slug = slug
	v.mu.Unlock()

	v.log.Infof("[%s] saved %q as %q", v.id, f.Title, slug)
	// The flag stays up while navigating so the unload guard lets it through.
	v.nav.Navigate(v.PageURL(slug))
	v.setUploading(false)
	return nil
}

func (v *View) setUploading(b bool) {
	v.mu.Lock()
	v.uploading = b
	v.mu.Unlock()
}

// BeforeUnload reports whether leaving now should ask for confirmation.
// Navigation during a save is allowed silently.
func (v *View) BeforeUnload() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.uploading
}

// Uploading reports whether a save is in flight.
func (v *View) Uploading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.uploading
}

// Form returns a snapshot of the form fields.
func (v *View) Form() Form {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form
}

// Slug returns the slug of the loaded or last saved page.
func (v *View) Slug() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.slug
}

// SetTitle sets the title field.
func (v *View) SetTitle(title string) {
	v.mu.Lock()
	v.form.Title = title
	v.mu.Unlock()
}

// SetPrivate sets the visibility flag.
func (v *View) SetPrivate(private bool) {
	v.mu.Lock()
	v.form.Private = private
	v.mu.Unlock()
}

// SetDir sets the containing directory.
func (v *View) SetDir(dir string) {
	v.mu.Lock()
	v.form.Dir = dir
	v.mu.Unlock()
}

// PageURL returns the view URL of slug: <base><viewPath>/<slug>.
func (v *View) PageURL(slug string) string {
	parts := strings.Split(strings.Trim(slug, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	base := strings.TrimSuffix(v.baseURL, "/") + "/"
	return base + strings.Trim(v.viewPath, "/") + "/" + strings.Join(parts, "/")
}

// DirOf returns the directory part of a hierarchical slug, or "" for a
// top-level page.
func DirOf(slug string) string {
	d := path.Dir(strings.Trim(slug, "/"))
	if d == "." || d == "/" {
		return ""
	}
	return d
}
