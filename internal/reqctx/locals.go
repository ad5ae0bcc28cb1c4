package reqctx

import (
	"net/url"

	"github.com/practio/adminx-os/internal/href"
)

// Locals projects the request context onto the data map handed to
// templates. href and isActiveHref are functions, invoked with
// {{call .href "~/users" nil}}.
func (rc Context) Locals() map[string]any {
	base := rc.baseHref
	if base == nil {
		base = &url.URL{Path: "/"}
	}
	full := rc.fullHref
	if full == nil {
		full = base
	}

	locals := map[string]any{
		"requestId":     rc.requestID,
		"nonce":         rc.nonce,
		"csrfToken":     rc.csrfToken,
		"baseHref":      urlString(rc.baseHref),
		"canonicalHref": urlString(rc.canonicalHref),
		"fullHref":      urlString(rc.fullHref),
		"callbackUrl":   urlString(rc.callbackURL),
		"href": func(pathname string, searchParams map[string]any) string {
			return href.Href(base, full, pathname, searchParams)
		},
		"isActiveHref": func(target string) bool {
			return href.IsActive(full.String(), target)
		},
		"alert": nil,
		"user":  nil,
		"actor": nil,
	}
	if rc.alert != nil {
		locals["alert"] = *rc.alert
	}
	if rc.user != nil {
		locals["user"] = rc.user.clone()
	}
	if rc.actor != nil {
		locals["actor"] = *rc.actor
	}
	return locals
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
