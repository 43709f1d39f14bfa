package wikiedit

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/wikiedit/pageapi"
	"github.com/eringen/wikiedit/views"
)

const userKey = "user"

// identify resolves the editing user: a trusted proxy header first, then
// the configured fixed user, then the session login.
func (a *App) identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var user string
		if a.Config.TrustUserHeader {
			user = strings.TrimSpace(c.Request().Header.Get(pageapi.UserHeader))
		}
		if user == "" {
			user = a.Config.User
		}
		if user == "" {
			user = sessionUser(c)
		}
		if user != "" {
			c.Set(userKey, user)
		}
		return next(c)
	}
}

// requireUser sends anonymous visitors to the login form.
func (a *App) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) != "" {
			return next(c)
		}
		if c.Request().Method != http.MethodGet {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		return c.Redirect(http.StatusSeeOther, "/login/?next="+url.QueryEscape(c.Request().URL.RequestURI()))
	}
}

// CurrentUser returns the user resolved for this request, or "".
func CurrentUser(c echo.Context) string {
	user, _ := c.Get(userKey).(string)
	return user
}

func (a *App) handleLoginForm(c echo.Context) error {
	if CurrentUser(c) != "" {
		return c.Redirect(http.StatusSeeOther, safeNext(c.QueryParam("next")))
	}
	return Render(c, views.Login(a.site, false, CsrfToken(c), safeNext(c.QueryParam("next"))))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	user := strings.TrimSpace(c.FormValue("username"))
	pass := c.FormValue("password")
	next := safeNext(c.FormValue("next"))
	if a.Config.LoginPassword == "" || user == "" ||
		subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.LoginPassword)) != 1 {
		a.loginLimiter.Record(ip)
		c.Logger().Warnf("failed login for %q from %s", user, ip)
		return RenderStatus(c, http.StatusUnauthorized, views.Login(a.site, true, CsrfToken(c), next))
	}
	if err := setSessionUser(c, user); err != nil {
		return err
	}
	c.Logger().Infof("%s signed in from %s", user, ip)
	return c.Redirect(http.StatusSeeOther, next)
}

func handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login/")
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/edit/"
	}
	return next
}

func sessionUser(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	user, _ := sess.Values[userKey].(string)
	return user
}

func setSessionUser(c echo.Context, user string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[userKey] = user
	return sess.Save(c.Request(), c.Response())
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
