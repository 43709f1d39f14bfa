// Package views holds the templ components rendered by the editor.
package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// page wraps body in the shared HTML document.
func page(cfg SiteConfig, title string, csrfToken string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		if csrfToken != "" {
			b.WriteString(`<meta name="csrf-token" content="` + templ.EscapeString(csrfToken) + `"/>`)
		}
		b.WriteString(`<title>` + templ.EscapeString(pageTitle(cfg, title)) + `</title>`)
		if cfg.WidgetStyleURL != "" {
			b.WriteString(`<link rel="stylesheet" href="` + templ.EscapeString(cfg.WidgetStyleURL) + `"/>`)
		}
		b.WriteString(`<link rel="stylesheet" href="/public/editor.css"/>`)
		b.WriteString(`</head><body><main class="wiki">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func pageTitle(cfg SiteConfig, title string) string {
	if title == "" {
		return cfg.Name
	}
	return title + " · " + cfg.Name
}

func raw(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func checked(b bool) string {
	if b {
		return ` checked`
	}
	return ""
}

// NotFound renders the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return page(cfg, "Not found", "", raw(`<h1>Page not found</h1><p><a href="/edit/">Write a new page</a></p>`))
}

// ServerError renders the 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	return page(cfg, "Error", "", raw(`<h1>Something went wrong</h1><p>The error has been logged.</p>`))
}
