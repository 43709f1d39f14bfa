package wikiedit

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/wikiedit/editor"
	"github.com/eringen/wikiedit/pageapi"
	"github.com/eringen/wikiedit/views"
)

// handleEdit renders the editor, loaded with the page named by ?page= when
// present. A failed load falls back to an empty editor.
func (a *App) handleEdit(c echo.Context) error {
	v := a.newView(c, nil)
	_ = v.Init(c.Request().Context(), c.Request().URL)
	return a.renderEditor(c, http.StatusOK, v)
}

// handleSave commits the submitted form and redirects to the saved page.
// Invalid or failed saves re-render the submitted form unchanged.
func (a *App) handleSave(c echo.Context) error {
	var next string
	v := a.newView(c, editor.NavigatorFunc(func(u string) { next = u }))
	v.Restore(strings.TrimSpace(c.FormValue("page")), editor.Form{
		Title:   c.FormValue("title"),
		Content: normalizeNewlines(c.FormValue("content")),
		Private: c.FormValue("private") != "",
		Dir:     c.FormValue("dir"),
	})

	err := v.Save(c.Request().Context())
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, next)
	case errors.Is(err, editor.ErrInvalidForm), errors.Is(err, editor.ErrSaveInFlight):
		return a.renderEditor(c, http.StatusUnprocessableEntity, v)
	default:
		return a.renderEditor(c, http.StatusBadGateway, v)
	}
}

func (a *App) newView(c echo.Context, nav editor.Navigator) *editor.View {
	return editor.NewView(editor.Config{
		Widget:    editor.NewBuffer(""),
		Backend:   a.backendFor(c),
		Navigator: nav,
		Logger:    c.Logger(),
		BaseURL:   a.Config.ViewBaseURL,
		ViewPath:  a.Config.ViewPath,
	})
}

// backendFor returns the backend client acting for the request's user,
// carrying the browser's cookies like a credentialed fetch.
func (a *App) backendFor(c echo.Context) editor.Backend {
	if a.backend != nil {
		return a.backend
	}
	var cookies []*http.Cookie
	for _, ck := range c.Request().Cookies() {
		if ck.Name == sessionName || ck.Name == "_csrf" {
			continue
		}
		cookies = append(cookies, ck)
	}
	return a.client.WithCredentials(pageapi.Credentials{
		Cookies: cookies,
		User:    CurrentUser(c),
	})
}

// normalizeNewlines undoes the CRLF line endings browsers submit textarea
// values with.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func handleRoot(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/edit/")
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError(a.site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
