// Command wikiedit serves the wiki page editor and, for local development,
// a SQLite page-storage backend.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eringen/wikiedit"
	"github.com/eringen/wikiedit/devbackend"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "wikiedit",
	Short: "Browser editor for a markdown wiki",
	Long: `wikiedit serves a page editor backed by an off-the-shelf markdown widget.
Pages are loaded from and committed to a page-storage backend over HTTP.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the page editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, err := time.ParseDuration(wikiedit.EnvOr("WIKIEDIT_REQUEST_TIMEOUT", "30s"))
		if err != nil {
			return fmt.Errorf("WIKIEDIT_REQUEST_TIMEOUT: %w", err)
		}
		app := wikiedit.New(wikiedit.Config{
			Name:            wikiedit.EnvOr("WIKIEDIT_NAME", "Wiki"),
			URL:             wikiedit.EnvOr("WIKIEDIT_URL", "http://localhost:3000"),
			Addr:            wikiedit.EnvOr("WIKIEDIT_ADDR", ":3000"),
			BackendURL:      wikiedit.EnvOr("WIKIEDIT_BACKEND_URL", "http://localhost:8000/"),
			ViewBaseURL:     os.Getenv("WIKIEDIT_VIEW_BASE_URL"),
			ViewPath:        os.Getenv("WIKIEDIT_VIEW_PATH"),
			User:            os.Getenv("WIKIEDIT_USER"),
			TrustUserHeader: os.Getenv("WIKIEDIT_TRUST_USER_HEADER") == "true",
			LoginPassword:   os.Getenv("WIKIEDIT_PASSWORD"),
			SessionSecret:   wikiedit.MustEnv("WIKIEDIT_SESSION_SECRET"),
			CookieSecure:    os.Getenv("WIKIEDIT_COOKIE_SECURE") == "true",
			UploadDir:       os.Getenv("WIKIEDIT_UPLOAD_DIR"),
			WidgetScriptURL: os.Getenv("WIKIEDIT_WIDGET_JS"),
			WidgetStyleURL:  os.Getenv("WIKIEDIT_WIDGET_CSS"),
			RequestTimeout:  timeout,
		}, wikiedit.WithStaticDir(wikiedit.EnvOr("WIKIEDIT_STATIC_DIR", "public")))
		defer app.Close()
		app.Echo.Logger.SetLevel(log.INFO)
		return app.Start()
	},
}

var devbackendFlags struct {
	addr string
	db   string
}

var devbackendCmd = &cobra.Command{
	Use:   "devbackend",
	Short: "Serve a local SQLite page-storage backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := devbackend.NewStore(devbackendFlags.db)
		if err != nil {
			return err
		}
		defer store.Close()
		srv := devbackend.NewServer(store)
		srv.Echo.Logger.SetLevel(log.INFO)
		srv.Echo.Logger.Infof("pages stored in %s", devbackendFlags.db)
		return srv.Start(devbackendFlags.addr)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wikiedit version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wikiedit %s\n", version)
	},
}

func init() {
	devbackendCmd.Flags().StringVar(&devbackendFlags.addr, "addr", ":8000", "listen address")
	devbackendCmd.Flags().StringVar(&devbackendFlags.db, "db", "data/wiki.db", "SQLite database path")
	rootCmd.AddCommand(serveCmd, devbackendCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
