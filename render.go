package wikiedit

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/wikiedit/editor"
	"github.com/eringen/wikiedit/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderEditor renders the editor form from the view's current state.
func (a *App) renderEditor(c echo.Context, code int, v *editor.View) error {
	f := v.Form()
	return RenderStatus(c, code, views.Editor(a.site, views.EditorData{
		Slug:      v.Slug(),
		Title:     f.Title,
		Content:   f.Content,
		Private:   f.Private,
		Dir:       f.Dir,
		User:      CurrentUser(c),
		CSRFToken: CsrfToken(c),
	}))
}
