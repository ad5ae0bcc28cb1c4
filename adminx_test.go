package adminx_test

import (
	"encoding/base64"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practio/adminx-os"
)

var pageViews = fstest.MapFS{
	"page.html": {Data: []byte(`{{template "layout" .}}{{define "title"}}Page{{end}}{{define "content"}}<p id="token">{{.csrfToken}}</p><p id="nonce">{{.nonce}}</p><p id="user">{{with .user}}{{.ID}}{{end}}</p><a id="users" href="{{call .href "~/users" nil}}">users</a>{{end}}`)},
}

func routes(g *echo.Group) {
	g.GET("/page", func(c echo.Context) error {
		return c.Render(http.StatusOK, "page", nil)
	})
	g.GET("/me", func(c echo.Context) error {
		user := adminx.CurrentUser(c)
		if user == nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, user.ID+" "+adminx.CurrentActor(c).Type)
	})
	g.GET("/admin-only", func(c echo.Context) error {
		return c.String(http.StatusOK, "secret")
	}, adminx.Authorize(adminx.Any("admin")))
	g.GET("/boom", func(c echo.Context) error {
		return adminx.NewError(http.StatusTeapot, "", "short and stout")
	})
	g.POST("/submit", func(c echo.Context) error {
		return c.String(http.StatusOK, "submitted "+c.FormValue("name"))
	})
}

func newApp(t *testing.T, mutate func(*adminx.Options)) *echo.Echo {
	t.Helper()
	opts := adminx.DefaultOptions()
	opts.ViewFS = []fs.FS{pageViews}
	if mutate != nil {
		mutate(&opts)
	}
	app, err := adminx.New(adminx.HandlerFunc(routes), opts)
	require.NoError(t, err)
	return app
}

func serve(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func identity(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := r.Cookie("session")
		if err != nil || session.Value != "valid" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"invalid session"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":7,"roles":["editor"],"name":"Ada"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func withAuth(baseURL string) func(*adminx.Options) {
	return func(o *adminx.Options) {
		o.Auth = &adminx.AuthConfig{CookieName: "session", BaseURL: baseURL}
	}
}

var nonceRe = regexp.MustCompile(`'nonce-([0-9a-f]{32})'`)

func TestRenderPageWithCSRFTokenAndNonce(t *testing.T) {
	app := newApp(t, nil)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/page", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	csrf := cookie(rec, "_csrf")
	require.NotNil(t, csrf)
	assert.Contains(t, body, `<p id="token">`+csrf.Value+`</p>`)

	match := nonceRe.FindStringSubmatch(rec.Header().Get("Content-Security-Policy"))
	require.Len(t, match, 2)
	assert.Contains(t, body, `<p id="nonce">`+match[1]+`</p>`)
	assert.NotContains(t, rec.Header().Get("Content-Security-Policy"), "form-action")

	assert.Contains(t, body, `<title>Page</title>`)
	assert.Contains(t, body, `<base href="http://example.com/">`)
	assert.Contains(t, body, `href="/users"`)
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "same-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMountPath(t *testing.T) {
	for _, mountPath := range []string{"/admin", "/admin/", "admin"} {
		t.Run(mountPath, func(t *testing.T) {
			srv := identity(t)
			app := newApp(t, func(o *adminx.Options) {
				o.MountPath = mountPath
				withAuth(srv.URL)(o)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin/page", nil)
			req.AddCookie(&http.Cookie{Name: "session", Value: "valid"})
			rec := serve(app, req)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `<base href="http://example.com/admin/">`)
			assert.Contains(t, rec.Body.String(), `href="/admin/users"`)

			rec = serve(app, httptest.NewRequest(http.MethodGet, "/admin/adminx.css", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "public, max-age=86400, immutable", rec.Header().Get("Cache-Control"))

			rec = serve(app, httptest.NewRequest(http.MethodGet, "/admin/logout", nil))
			assert.Equal(t, http.StatusFound, rec.Code)
			session := cookie(rec, "session")
			require.NotNil(t, session)
			assert.Less(t, session.MaxAge, 0)
		})
	}
}

func TestStaticFiles(t *testing.T) {
	app := newApp(t, nil)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/adminx.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=86400, immutable", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), ".adminx-header")

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/favicon.svg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestNotFoundRendersErrorPage(t *testing.T) {
	app := newApp(t, nil)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "404 <small>Not Found</small>")
	assert.Contains(t, rec.Body.String(), "<code>NOT_FOUND</code>")

	alert := cookie(rec, "alert")
	require.NotNil(t, alert)
	raw, err := base64.StdEncoding.DecodeString(alert.Value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Not Found","code":"NOT_FOUND"}`, string(raw))
	assert.Equal(t, 30, alert.MaxAge)
	assert.True(t, alert.HttpOnly)
}

func TestErrorDetailsFollowOption(t *testing.T) {
	rec := serve(newApp(t, nil), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "short and stout")

	hidden := newApp(t, func(o *adminx.Options) { o.ReturnErrorDetails = false })
	rec = serve(hidden, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotContains(t, rec.Body.String(), "short and stout")
	assert.Contains(t, rec.Body.String(), "I&#39;M_A_TEAPOT")
}

func TestAlertCookieIsShownOnceAndCleared(t *testing.T) {
	app := newApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	value := base64.StdEncoding.EncodeToString([]byte(`{"message":"Saved","code":"OK"}`))
	req.AddCookie(&http.Cookie{Name: "alert", Value: value})

	rec := serve(app, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Saved")
	assert.Contains(t, rec.Body.String(), "<code>OK</code>")

	cleared := cookie(rec, "alert")
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestMalformedAlertCookieIsIgnored(t *testing.T) {
	app := newApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: "alert", Value: "not-base64!"})

	rec := serve(app, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `role="alert"`)
}

func TestPostWithValidCSRFToken(t *testing.T) {
	app := newApp(t, nil)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/page", nil))
	csrf := cookie(rec, "_csrf")
	require.NotNil(t, csrf)

	form := url.Values{"_csrf": {csrf.Value}, "name": {"Ada"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(csrf)

	rec = serve(app, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "submitted Ada", rec.Body.String())
}

func TestWindyAssetsLinkedWhenConfigured(t *testing.T) {
	t.Run("absent by default", func(t *testing.T) {
		app := newApp(t, nil)

		rec := serve(app, httptest.NewRequest(http.MethodGet, "/page", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "windy.css")
		assert.NotContains(t, rec.Body.String(), "windy.js")
	})

	t.Run("linked and served when present", func(t *testing.T) {
		dir := t.TempDir()
		css := filepath.Join(dir, "windy.min.css")
		js := filepath.Join(dir, "windy.min.js")
		require.NoError(t, os.WriteFile(css, []byte("body{}"), 0o600))
		require.NoError(t, os.WriteFile(js, []byte("void 0"), 0o600))

		app := newApp(t, func(o *adminx.Options) {
			o.Assets.WindyCSS = css
			o.Assets.WindyJS = js
		})

		rec := serve(app, httptest.NewRequest(http.MethodGet, "/page", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<link rel="stylesheet" href="windy.css">`)

		match := nonceRe.FindStringSubmatch(rec.Header().Get("Content-Security-Policy"))
		require.Len(t, match, 2)
		assert.Contains(t, body, `<script nonce="`+match[1]+`" src="windy.js" defer></script>`)

		rec = serve(app, httptest.NewRequest(http.MethodGet, "/windy.css", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "body{}", rec.Body.String())
	})
}

func TestFailedPostRedirectsToReferrer(t *testing.T) {
	app := newApp(t, nil)

	form := url.Values{"_csrf": {"forged"}, "name": {"a", "b"}, "email": {"ada@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("Referer", "http://example.com/form?step=2")

	rec := serve(app, req)
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/form", location.Path)
	query := location.Query()
	assert.Equal(t, "2", query.Get("step"))
	assert.Equal(t, "a,b", query.Get("name"))
	assert.Equal(t, "ada@example.com", query.Get("email"))
	assert.False(t, query.Has("_csrf"))

	alert := cookie(rec, "alert")
	require.NotNil(t, alert)
	raw, err := base64.StdEncoding.DecodeString(alert.Value)
	require.NoError(t, err)
	assert.Contains(t, string(raw), adminx.CodeBadCSRFToken)
}

func TestFailedPostRedirectCarriesOnlyBodyFields(t *testing.T) {
	app := newApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/submit?debug=1&_csrf=x", strings.NewReader("name=a"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("Referer", "http://example.com/form")

	rec := serve(app, req)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://example.com/form?name=a", rec.Header().Get("Location"))
}

func TestFailedPostWithoutReferrerRendersError(t *testing.T) {
	app := newApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("name=a"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	rec := serve(app, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), adminx.CodeBadCSRFToken)
}

func TestAuthenticatedRequest(t *testing.T) {
	srv := identity(t)
	app := newApp(t, withAuth(srv.URL))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "valid"})

	rec := serve(app, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7 user", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "valid"})
	rec = serve(app, req)
	assert.Contains(t, rec.Body.String(), `<p id="user">7</p>`)
}

func TestAnonymousRequestPassesThrough(t *testing.T) {
	srv := identity(t)
	app := newApp(t, withAuth(srv.URL))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestFailedAuthenticationRedirectsToLogin(t *testing.T) {
	srv := identity(t)
	app := newApp(t, withAuth(srv.URL))

	req := httptest.NewRequest(http.MethodGet, "/me?tab=1", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "expired"})

	rec := serve(app, req)
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(srv.URL, "http://"), location.Host)
	assert.Equal(t, "http://example.com/me?tab=1", location.Query().Get("redirect_uri"))

	session := cookie(rec, "session")
	require.NotNil(t, session)
	assert.Less(t, session.MaxAge, 0)
}

func TestAuthorization(t *testing.T) {
	srv := identity(t)
	app := newApp(t, withAuth(srv.URL))

	// Anonymous and under-privileged users are both sent to login.
	rec := serve(app, httptest.NewRequest(http.MethodGet, "/admin-only", nil))
	assert.Equal(t, http.StatusFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "valid"})
	rec = serve(app, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "redirect_uri=")
}

func TestAuthorizationWithoutAuthRendersForbidden(t *testing.T) {
	app := newApp(t, nil)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/admin-only", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), adminx.CodeAuthorization)
}

func TestLogout(t *testing.T) {
	srv := identity(t)
	app := newApp(t, withAuth(srv.URL))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	session := cookie(rec, "session")
	require.NotNil(t, session)
	assert.Less(t, session.MaxAge, 0)
}

func TestCallbackURL(t *testing.T) {
	var got *url.URL
	app, err := adminx.New(adminx.HandlerFunc(func(g *echo.Group) {
		g.GET("/cb", func(c echo.Context) error {
			got = adminx.CallbackURL(c)
			return c.NoContent(http.StatusNoContent)
		})
	}), adminx.DefaultOptions())
	require.NoError(t, err)

	serve(app, httptest.NewRequest(http.MethodGet, "/cb?callbackUrl=https://app.example.com/done", nil))
	require.NotNil(t, got)
	assert.Equal(t, "https://app.example.com/done", got.String())

	got = nil
	serve(app, httptest.NewRequest(http.MethodGet, "/cb?callbackUrl=https://evil.example.org/", nil))
	assert.Nil(t, got)
}

func TestWrapHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello from net/http")
	})

	app, err := adminx.New(adminx.WrapHTTP(mux), adminx.DefaultOptions())
	require.NoError(t, err)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello from net/http", rec.Body.String())
}

func TestInvalidOptions(t *testing.T) {
	opts := adminx.DefaultOptions()
	opts.Auth = &adminx.AuthConfig{CookieName: "session", BaseURL: "not a url"}

	_, err := adminx.New(adminx.HandlerFunc(routes), opts)
	assert.Error(t, err)
}
