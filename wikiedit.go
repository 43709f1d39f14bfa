// Package wikiedit serves the page editor of a markdown wiki. Text editing is
// done in the browser by an off-the-shelf markdown widget; the server loads
// pages from the page-storage backend into the editor form and commits
// edits back on the user's behalf.
package wikiedit

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/wikiedit/editor"
	"github.com/eringen/wikiedit/pageapi"
	"github.com/eringen/wikiedit/views"
)

// App is the editor application. It wires the backend client, handlers,
// middleware, and templates.
type App struct {
	Config Config
	Echo   *echo.Echo

	client       *pageapi.Client
	backend      editor.Backend
	site         views.SiteConfig
	loginLimiter *LoginLimiter
	staticDir    string
}

// New creates an App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
		site: views.SiteConfig{
			Name:            cfg.Name,
			WidgetScriptURL: cfg.WidgetScriptURL,
			WidgetStyleURL:  cfg.WidgetStyleURL,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup validates the configuration and installs middleware and routes.
func (a *App) Setup() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("wikiedit: SessionSecret is required")
	}

	if a.backend == nil {
		client, err := pageapi.NewClient(a.Config.BackendURL, pageapi.WithTimeout(a.Config.RequestTimeout))
		if err != nil {
			return fmt.Errorf("wikiedit: backend client: %w", err)
		}
		a.client = client
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Start sets the app up and serves until the server stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("editing pages of %s", a.Config.BackendURL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	assetHandler := http.FileServer(http.FS(assets))
	e.GET("/public/editor.js", echo.WrapHandler(http.StripPrefix("/public/", assetHandler)))
	e.GET("/public/editor.css", echo.WrapHandler(http.StripPrefix("/public/", assetHandler)))
	e.Static("/public", a.staticDir)
	e.Static("/uploads", a.Config.UploadDir)

	e.GET("/healthz", handleHealth)
	e.GET("/", handleRoot)

	e.GET("/login/", a.handleLoginForm)
	e.POST("/login/", a.handleLogin)
	e.POST("/logout/", handleLogout)

	edit := e.Group("/edit", a.requireUser)
	edit.GET("/", a.handleEdit)
	edit.POST("/", a.handleSave)
	edit.POST("/images/", a.handleImageUpload)
}

// Close releases background resources.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	return a.Echo.Close()
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("wikiedit: required environment variable %s is not set", key)
	}
	return v
}
