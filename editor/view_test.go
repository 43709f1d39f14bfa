package editor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eringen/wikiedit/pageapi"
)

type fakeBackend struct {
	mu      sync.Mutex
	pages   map[string]pageapi.Page
	readErr error
	slug    string
	saveErr error
	reads   []string
	commits []pageapi.Commit
	// block, when set, holds Commit until it is closed.
	block chan struct{}
}

func (b *fakeBackend) Page(ctx context.Context, slug string) (pageapi.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads = append(b.reads, slug)
	if b.readErr != nil {
		return pageapi.Page{}, b.readErr
	}
	p, ok := b.pages[slug]
	if !ok {
		return pageapi.Page{}, &pageapi.StatusError{Code: 404}
	}
	return p, nil
}

func (b *fakeBackend) Commit(ctx context.Context, c pageapi.Commit) (string, error) {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commits = append(b.commits, c)
	if b.saveErr != nil {
		return "", b.saveErr
	}
	return b.slug, nil
}

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *recordLogger) Infof(format string, args ...interface{})  { l.add("INFO", format, args...) }
func (l *recordLogger) Warnf(format string, args ...interface{})  { l.add("WARN", format, args...) }
func (l *recordLogger) Errorf(format string, args ...interface{}) { l.add("ERROR", format, args...) }

func (l *recordLogger) has(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.HasPrefix(line, level+" ") && strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

type harness struct {
	view    *View
	widget  *Buffer
	backend *fakeBackend
	log     *recordLogger
	nav     []string
	// guard records BeforeUnload as seen at navigation time.
	guard []bool
}

func newHarness(t *testing.T, b *fakeBackend) *harness {
	t.Helper()
	h := &harness{widget: NewBuffer(""), backend: b, log: &recordLogger{}}
	h.view = NewView(Config{
		Widget:  h.widget,
		Backend: b,
		Logger:  h.log,
		BaseURL: "http://localhost:8000/",
		Navigator: NavigatorFunc(func(u string) {
			h.nav = append(h.nav, u)
			h.guard = append(h.guard, h.view.BeforeUnload())
		}),
	})
	return h
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestInitWithoutPageParam(t *testing.T) {
	b := &fakeBackend{}
	h := newHarness(t, b)

	if err := h.view.Init(context.Background(), mustURL(t, "http://localhost:3000/edit/")); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if len(b.reads) != 0 {
		t.Errorf("reads = %v, want none", b.reads)
	}
	if f := h.view.Form(); f != (Form{}) {
		t.Errorf("Form = %+v, want zero value", f)
	}
	if h.widget.Value() != "" {
		t.Errorf("widget = %q, want empty", h.widget.Value())
	}
}

func TestInitLoadsPage(t *testing.T) {
	b := &fakeBackend{pages: map[string]pageapi.Page{
		"notes/go": {Content: "X", Meta: pageapi.Meta{Title: "T", Private: true}},
	}}
	h := newHarness(t, b)

	if err := h.view.Init(context.Background(), mustURL(t, "http://localhost:3000/edit/?page=notes/go")); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if h.widget.Value() != "X" {
		t.Errorf("widget = %q, want X", h.widget.Value())
	}
	f := h.view.Form()
	if f.Title != "T" {
		t.Errorf("Title = %q, want T", f.Title)
	}
	if !f.Private {
		t.Error("Private should be true")
	}
	if f.Dir != "notes" {
		t.Errorf("Dir = %q, want notes", f.Dir)
	}
	if f.Content != "X" {
		t.Errorf("mirrored Content = %q, want X", f.Content)
	}
	if h.view.Slug() != "notes/go" {
		t.Errorf("Slug = %q", h.view.Slug())
	}
}

func TestLoadFailureLeavesDefaults(t *testing.T) {
	b := &fakeBackend{readErr: errors.New("connection refused")}
	h := newHarness(t, b)

	err := h.view.Init(context.Background(), mustURL(t, "http://localhost:3000/edit/?page=intro"))
	if err == nil {
		t.Fatal("expected error")
	}
	if f := h.view.Form(); f != (Form{}) {
		t.Errorf("Form = %+v, want zero value", f)
	}
	if !h.log.has("ERROR", "connection refused") {
		t.Errorf("error not logged: %v", h.log.lines)
	}
}

func TestSaveEmptyTitleIssuesNoRequest(t *testing.T) {
	for _, title := range []string{"", "   "} {
		b := &fakeBackend{slug: "x"}
		h := newHarness(t, b)
		h.view.SetTitle(title)
		h.widget.SetValue("some content")

		err := h.view.Save(context.Background())
		if !errors.Is(err, ErrTitleRequired) || !errors.Is(err, ErrInvalidForm) {
			t.Errorf("Save(title=%q) err = %v, want ErrTitleRequired", title, err)
		}
		if len(b.commits) != 0 {
			t.Errorf("commits = %d, want 0", len(b.commits))
		}
		if len(h.nav) != 0 {
			t.Errorf("navigated to %v", h.nav)
		}
		if !h.log.has("WARN", "title is required") {
			t.Errorf("abort not logged: %v", h.log.lines)
		}
	}
}

func TestSaveInvalidDir(t *testing.T) {
	b := &fakeBackend{slug: "x"}
	h := newHarness(t, b)
	h.view.SetTitle("Title")
	h.view.SetDir("../etc")

	if err := h.view.Save(context.Background()); !errors.Is(err, ErrInvalidForm) {
		t.Errorf("err = %v, want ErrInvalidForm", err)
	}
	if len(b.commits) != 0 {
		t.Errorf("commits = %d, want 0", len(b.commits))
	}
}

func TestLoadedDottedDirSavesUnchanged(t *testing.T) {
	b := &fakeBackend{
		pages: map[string]pageapi.Page{"v1.2/page": {Content: "x", Meta: pageapi.Meta{Title: "Page"}}},
		slug:  "v1.2/page",
	}
	h := newHarness(t, b)

	if err := h.view.Init(context.Background(), mustURL(t, "http://localhost:3000/edit/?page=v1.2/page")); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := h.view.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(b.commits) != 1 || b.commits[0].Dir != "v1.2" {
		t.Errorf("commits = %+v, want dir v1.2", b.commits)
	}
}

func TestInitRejectsTraversal(t *testing.T) {
	tests := []string{"../log", "notes/../../log", "./x", "a//b"}
	for _, slug := range tests {
		b := &fakeBackend{}
		h := newHarness(t, b)
		err := h.view.Init(context.Background(), &url.URL{Path: "/edit/", RawQuery: url.Values{"page": {slug}}.Encode()})
		if !errors.Is(err, ErrInvalidSlug) {
			t.Errorf("Init(%q) err = %v, want ErrInvalidSlug", slug, err)
		}
		if len(b.reads) != 0 {
			t.Errorf("Init(%q) read %v from backend", slug, b.reads)
		}
		if h.view.Slug() != "" {
			t.Errorf("Init(%q) set slug %q", slug, h.view.Slug())
		}
	}
}

func TestSaveRedirectsToSlug(t *testing.T) {
	b := &fakeBackend{slug: "my-slug"}
	h := newHarness(t, b)
	h.view.SetTitle("  My Slug ")
	h.view.SetPrivate(true)
	h.view.SetDir("/notes/")
	h.widget.SetValue("# Hello")

	if err := h.view.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(h.nav) != 1 || h.nav[0] != "http://localhost:8000/page/my-slug" {
		t.Errorf("nav = %v, want http://localhost:8000/page/my-slug", h.nav)
	}
	if h.guard[0] {
		t.Error("unload guard should allow navigation during save")
	}
	if h.view.Uploading() {
		t.Error("uploading should be false after save")
	}
	want := pageapi.Commit{Title: "My Slug", Content: "# Hello", Private: true, Dir: "notes"}
	if len(b.commits) != 1 || b.commits[0] != want {
		t.Errorf("commits = %+v, want %+v", b.commits, want)
	}
	if h.view.Slug() != "my-slug" {
		t.Errorf("Slug = %q", h.view.Slug())
	}
}

func TestSaveFailureResetsUploading(t *testing.T) {
	b := &fakeBackend{saveErr: errors.New("network down")}
	h := newHarness(t, b)
	h.view.SetTitle("Title")
	h.widget.SetValue("body")

	if err := h.view.Save(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if h.view.Uploading() {
		t.Error("uploading should be false after failed save")
	}
	if !h.view.BeforeUnload() {
		t.Error("unload guard should ask for confirmation when idle")
	}
	if len(h.nav) != 0 {
		t.Errorf("navigated to %v", h.nav)
	}
	if !h.log.has("ERROR", "network down") {
		t.Errorf("error not logged: %v", h.log.lines)
	}
	if f := h.view.Form(); f.Title != "Title" || f.Content != "body" {
		t.Errorf("form state lost: %+v", f)
	}
}

func TestSaveWhileInFlight(t *testing.T) {
	b := &fakeBackend{slug: "a", block: make(chan struct{})}
	h := newHarness(t, b)
	h.view.SetTitle("A")

	done := make(chan error, 1)
	go func() { done <- h.view.Save(context.Background()) }()

	for !h.view.Uploading() {
		time.Sleep(time.Millisecond)
	}
	if h.view.BeforeUnload() {
		t.Error("guard should not block while uploading")
	}
	if err := h.view.Save(context.Background()); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("second Save err = %v, want ErrSaveInFlight", err)
	}
	close(b.block)
	if err := <-done; err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if len(b.commits) != 1 {
		t.Errorf("commits = %d, want 1", len(b.commits))
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	content := "---\nnot front matter\n---\n\n```go\nfunc main() {}\n```\r\n\ttrailing  \n\n"
	b := &fakeBackend{
		slug: "intro",
		pages: map[string]pageapi.Page{
			"intro": {Content: content, Meta: pageapi.Meta{Title: "Intro"}},
		},
	}
	h := newHarness(t, b)

	if err := h.view.Load(context.Background(), "intro"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := h.view.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if b.commits[0].Content != content {
		t.Errorf("content = %q, want %q", b.commits[0].Content, content)
	}
	if b.commits[0].Title != "Intro" {
		t.Errorf("title = %q", b.commits[0].Title)
	}
}

func TestRestore(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.view.Restore("a/b", Form{Title: "B", Content: "text", Private: true, Dir: "a"})

	if h.widget.Value() != "text" {
		t.Errorf("widget = %q", h.widget.Value())
	}
	want := Form{Title: "B", Content: "text", Private: true, Dir: "a"}
	if f := h.view.Form(); f != want {
		t.Errorf("Form = %+v, want %+v", f, want)
	}
	if h.view.Slug() != "a/b" {
		t.Errorf("Slug = %q", h.view.Slug())
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		base, viewPath, slug, expected string
	}{
		{"http://localhost:8000/", "page", "my-slug", "http://localhost:8000/page/my-slug"},
		{"http://localhost:8000", "pages", "a/b", "http://localhost:8000/pages/a/b"},
		{"https://wiki.example.com/w/", "/page/", "go tips", "https://wiki.example.com/w/page/go%20tips"},
	}
	for _, tt := range tests {
		v := NewView(Config{BaseURL: tt.base, ViewPath: tt.viewPath})
		if got := v.PageURL(tt.slug); got != tt.expected {
			t.Errorf("PageURL(%q) = %q, want %q", tt.slug, got, tt.expected)
		}
	}
}

func TestDirOf(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"intro", ""},
		{"notes/go", "notes"},
		{"a/b/c", "a/b"},
		{"/a/b/", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DirOf(tt.input); got != tt.expected {
			t.Errorf("DirOf(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
