package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/reqctx"
)

// Alert cookie settings. The cookie carries the base64 JSON of a
// reqctx.Alert for the next page view.
const (
	AlertCookieName = "alert"
	AlertCookieTTL  = 30 * time.Second
)

// EncodeAlert serialises an alert for the alert cookie.
func EncodeAlert(a reqctx.Alert) (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeAlert parses an alert cookie value.
func DecodeAlert(value string) (*reqctx.Alert, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	var a reqctx.Alert
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// AlertStep moves the alert cookie into the request context and clears it.
// A malformed cookie is cleared and ignored.
func AlertStep(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
	cookie, err := c.Cookie(AlertCookieName)
	if err != nil || cookie.Value == "" {
		return rc, nil
	}

	clearAlertCookie(c)

	alert, err := DecodeAlert(cookie.Value)
	if err != nil {
		GetLogger(c).Warn().Err(err).Msg("ignoring malformed alert cookie")
		return rc, nil
	}
	return rc.WithAlert(alert), nil
}

func setAlertCookie(c echo.Context, value string) {
	c.SetCookie(&http.Cookie{
		Name:     AlertCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(AlertCookieTTL / time.Second),
		Expires:  time.Now().Add(AlertCookieTTL),
		HttpOnly: true,
	})
}

func clearAlertCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     AlertCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}
