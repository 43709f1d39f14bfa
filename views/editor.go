package views

import (
	"strings"

	"github.com/a-h/templ"
)

// Editor renders the page editor form. The content textarea is the backing
// field the widget mirrors into, so a plain form post carries the buffer.
func Editor(cfg SiteConfig, d EditorData) templ.Component {
	var b strings.Builder
	heading := "New page"
	if !d.IsNew() {
		heading = "Editing " + d.Slug
	}
	b.WriteString(`<header class="bar"><h1>` + templ.EscapeString(heading) + `</h1>`)
	if d.User != "" {
		b.WriteString(`<form method="post" action="/logout/" class="logout">`)
		b.WriteString(csrfField(d.CSRFToken))
		b.WriteString(`<span>` + templ.EscapeString(d.User) + `</span> <button type="submit">Log out</button></form>`)
	}
	b.WriteString(`</header>`)

	b.WriteString(`<form id="editor-form" method="post" action="/edit/" data-editor-form>`)
	b.WriteString(csrfField(d.CSRFToken))
	b.WriteString(`<input type="hidden" name="page" value="` + templ.EscapeString(d.Slug) + `"/>`)
	b.WriteString(`<label for="title">Title</label>`)
	b.WriteString(`<input id="title" name="title" type="text" required maxlength="200" value="` + templ.EscapeString(d.Title) + `"/>`)
	b.WriteString(`<label for="dir">Directory</label>`)
	b.WriteString(`<input id="dir" name="dir" type="text" placeholder="notes/go" value="` + templ.EscapeString(d.Dir) + `"/>`)
	b.WriteString(`<label class="check"><input id="private" name="private" type="checkbox" value="on"` + checked(d.Private) + `/> Private</label>`)
	// The HTML parser drops one newline right after <textarea>; write one so
	// content that starts with a blank line survives.
	b.WriteString("<textarea id=\"content\" name=\"content\" data-editor>\n" + templ.EscapeString(d.Content) + `</textarea>`)
	b.WriteString(`<button type="submit">Save</button>`)
	b.WriteString(`</form>`)

	if cfg.WidgetScriptURL != "" {
		b.WriteString(`<script src="` + templ.EscapeString(cfg.WidgetScriptURL) + `"></script>`)
	}
	b.WriteString(`<script src="/public/editor.js"></script>`)

	return page(cfg, heading, d.CSRFToken, raw(b.String()))
}

// Login renders the sign-in form. next is where a successful sign-in goes.
func Login(cfg SiteConfig, showError bool, csrfToken, next string) templ.Component {
	var b strings.Builder
	b.WriteString(`<h1>Sign in</h1>`)
	if showError {
		b.WriteString(`<p class="error">Invalid name or password.</p>`)
	}
	b.WriteString(`<form method="post" action="/login/">`)
	b.WriteString(csrfField(csrfToken))
	if next != "" {
		b.WriteString(`<input type="hidden" name="next" value="` + templ.EscapeString(next) + `"/>`)
	}
	b.WriteString(`<label for="username">Name</label><input id="username" name="username" type="text" required autocomplete="username"/>`)
	b.WriteString(`<label for="password">Password</label><input id="password" name="password" type="password" required autocomplete="current-password"/>`)
	b.WriteString(`<button type="submit">Sign in</button></form>`)
	return page(cfg, "Sign in", csrfToken, raw(b.String()))
}

func csrfField(token string) string {
	if token == "" {
		return ""
	}
	return `<input type="hidden" name="_csrf" value="` + templ.EscapeString(token) + `"/>`
}
