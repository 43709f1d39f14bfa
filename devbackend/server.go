// Package devbackend is a local page-storage backend for developing and
// testing the editor. It speaks the read and commit contract the editor
// uses and keeps pages in SQLite.
package devbackend

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gopkg.in/yaml.v3"

	"github.com/eringen/wikiedit/pageapi"
)

const (
	anonymous = "anonymous"
	logLimit  = 100
)

var relativeDir = validation.By(func(value interface{}) error {
	dir, _ := value.(string)
	if dir == "" || pageapi.ValidPath(dir) {
		return nil
	}
	return errors.New("must be a relative path")
})

// Server serves the backend routes over a Store.
type Server struct {
	Echo  *echo.Echo
	store *Store
}

// NewServer creates a Server with its middleware and routes installed.
func NewServer(store *Store) *Server {
	s := &Server{Echo: echo.New(), store: store}
	e := s.Echo
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/repo/*", s.handleRead)
	e.POST("/commit", s.handleCommit)
	e.GET("/page/*", s.handleView)
	e.GET("/log", s.handleLog)
	e.GET("/pages", s.handlePages)
	e.GET("/changelog", s.handleChangelog)
	return s
}

// Start serves on addr until the server stops.
func (s *Server) Start(addr string) error {
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the server.
func (s *Server) Close() error {
	return s.Echo.Close()
}

// slugParam returns the unescaped wildcard path of the route.
func slugParam(c echo.Context) string {
	raw := c.Param("*")
	if s, err := url.PathUnescape(raw); err == nil {
		raw = s
	}
	return strings.Trim(raw, "/")
}

func author(c echo.Context) string {
	if u := strings.TrimSpace(c.Request().Header.Get(pageapi.UserHeader)); u != "" {
		return u
	}
	return anonymous
}

// handleRead answers /repo/<slug> with the page as JSON and
// /repo/<slug>.md with its front matter source.
func (s *Server) handleRead(c echo.Context) error {
	slug := slugParam(c)
	source := strings.HasSuffix(slug, ".md")
	slug = strings.TrimSuffix(slug, ".md")

	p, err := s.store.GetPage(slug)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, pageapi.Page{Error: "page not found: " + slug})
	}
	if err != nil {
		return err
	}
	meta := pageapi.Meta{Title: p.Title, Private: p.Private}

	if source {
		head, err := yaml.Marshal(meta)
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "text/markdown; charset=utf-8",
			[]byte("---\n"+string(head)+"---\n"+p.Content))
	}
	return c.JSON(http.StatusOK, pageapi.Page{Content: p.Content, Meta: meta})
}

func validateCommit(body *pageapi.Commit) error {
	return validation.ValidateStruct(body,
		validation.Field(&body.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&body.Dir, relativeDir),
	)
}

// handleCommit stores the posted page and answers with its slug as plain
// text.
func (s *Server) handleCommit(c echo.Context) error {
	var body pageapi.Commit
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid commit body")
	}
	body.Title = strings.TrimSpace(body.Title)
	body.Dir = strings.Trim(strings.TrimSpace(body.Dir), "/")
	if err := validateCommit(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slug := pageapi.PageSlug(body.Dir, body.Title)
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title has no slug characters")
	}

	who := author(c)
	msg := "Edited `" + body.Title + "` from web"
	if err := s.store.SavePage(Page{
		Slug:    slug,
		Title:   body.Title,
		Content: body.Content,
		Private: body.Private,
	}, who, msg); err != nil {
		return err
	}
	c.Logger().Infof("%s committed %q", who, slug)
	return c.String(http.StatusOK, slug)
}

// handleView renders a stored page. Private pages are hidden from
// anonymous readers.
func (s *Server) handleView(c echo.Context) error {
	slug := slugParam(c)
	p, err := s.store.GetPage(slug)
	if errors.Is(err, ErrNotFound) || (err == nil && p.Private && author(c) == anonymous) {
		return echo.NewHTTPError(http.StatusNotFound, "page not found")
	}
	if err != nil {
		return err
	}
	return render(c, pageView(p))
}

// handlePages lists stored pages; anonymous readers see public ones only.
func (s *Server) handlePages(c echo.Context) error {
	pages, err := s.store.ListPages(author(c) != anonymous)
	if err != nil {
		return err
	}
	return render(c, pagesView(pages))
}

func (s *Server) handleChangelog(c echo.Context) error {
	log, err := s.store.Log(logLimit)
	if err != nil {
		return err
	}
	return render(c, changelogView(log))
}

func render(c echo.Context, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func (s *Server) handleLog(c echo.Context) error {
	log, err := s.store.Log(logLimit)
	if err != nil {
		return err
	}
	if log == nil {
		log = []Commit{}
	}
	return c.JSON(http.StatusOK, log)
}
