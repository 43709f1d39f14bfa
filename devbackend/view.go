package devbackend

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/wikiedit/markdown"
)

const footer = `<nav><a href="/pages">Pages</a> · <a href="/changelog">History</a></nav></body></html>`

func header(title string) string {
	return `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/><title>` +
		templ.EscapeString(title) + `</title></head><body>`
}

func pageView(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := header(p.Title) + `<article><h1>` + templ.EscapeString(p.Title) + `</h1>`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := markdown.Markdown(p.Content).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</article>`+footer)
		return err
	})
}

func pagesView(pages []Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(header("Pages") + `<h1>Pages</h1><ul class="pages">`)
		for _, p := range pages {
			b.WriteString(`<li><a href="/page/` + templ.EscapeString(p.Slug) + `">` + templ.EscapeString(p.Title) + `</a>`)
			if p.Private {
				b.WriteString(` <small>private</small>`)
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul>` + footer)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func changelogView(log []Commit) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(header("History") + `<h1>History</h1><ol class="changelog">`)
		for _, c := range log {
			b.WriteString(`<li><time>` + c.Time.Format("2006-01-02 15:04") + `</time> ` +
				templ.EscapeString(c.Author) + `: <a href="/page/` + templ.EscapeString(c.Slug) + `">` +
				templ.EscapeString(c.Message) + `</a></li>`)
		}
		b.WriteString(`</ol>` + footer)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
