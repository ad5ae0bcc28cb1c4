// Package reqctx holds the per-request state of the admin app.
//
// Context is an immutable value: every With* method returns a modified
// copy, and middlewares publish the new value with Store. Templates see a
// projection of it through Locals.
package reqctx

import (
	"net/url"

	"github.com/labstack/echo/v4"
)

// key is the echo context key the request context is stored under.
const key = "adminx.reqctx"

// Alert is the one-shot message carried by the alert cookie.
type Alert struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Context is the request-scoped state built up by the middleware pipeline.
// The zero value is an empty, unauthenticated request.
type Context struct {
	requestID     string
	nonce         string
	csrfToken     string
	baseHref      *url.URL
	canonicalHref *url.URL
	fullHref      *url.URL
	callbackURL   *url.URL
	alert         *Alert
	user          *User
	actor         *Actor
}

// From returns the request context stored on c, or the zero value.
func From(c echo.Context) Context {
	if rc, ok := c.Get(key).(Context); ok {
		return rc
	}
	return Context{}
}

// Store publishes rc as the current request context of c.
func Store(c echo.Context, rc Context) {
	c.Set(key, rc)
}

func (rc Context) RequestID() string       { return rc.requestID }
func (rc Context) Nonce() string           { return rc.nonce }
func (rc Context) CSRFToken() string       { return rc.csrfToken }
func (rc Context) BaseHref() *url.URL      { return cloneURL(rc.baseHref) }
func (rc Context) CanonicalHref() *url.URL { return cloneURL(rc.canonicalHref) }
func (rc Context) FullHref() *url.URL      { return cloneURL(rc.fullHref) }
func (rc Context) CallbackURL() *url.URL   { return cloneURL(rc.callbackURL) }
func (rc Context) Alert() *Alert           { return rc.alert }
func (rc Context) User() *User             { return rc.user }
func (rc Context) Actor() *Actor           { return rc.actor }
func (rc Context) IsAuthenticated() bool   { return rc.user != nil }

func (rc Context) WithRequestID(id string) Context {
	rc.requestID = id
	return rc
}

func (rc Context) WithNonce(nonce string) Context {
	rc.nonce = nonce
	return rc
}

func (rc Context) WithCSRFToken(token string) Context {
	rc.csrfToken = token
	return rc
}

func (rc Context) WithBaseHref(u *url.URL) Context {
	rc.baseHref = cloneURL(u)
	return rc
}

func (rc Context) WithCanonicalHref(u *url.URL) Context {
	rc.canonicalHref = cloneURL(u)
	return rc
}

func (rc Context) WithFullHref(u *url.URL) Context {
	rc.fullHref = cloneURL(u)
	return rc
}

func (rc Context) WithCallbackURL(u *url.URL) Context {
	rc.callbackURL = cloneURL(u)
	return rc
}

func (rc Context) WithAlert(a *Alert) Context {
	if a != nil {
		cp := *a
		a = &cp
	}
	rc.alert = a
	return rc
}

// WithUser attaches the authenticated user and derives the actor from it.
// A nil user clears both.
func (rc Context) WithUser(u *User) Context {
	if u == nil {
		rc.user, rc.actor = nil, nil
		return rc
	}
	cp := u.clone()
	rc.user = &cp
	rc.actor = &Actor{ID: u.ID, Type: ActorTypeUser}
	return rc
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	cp := *u
	if u.User != nil {
		user := *u.User
		cp.User = &user
	}
	return &cp
}
