// Package href derives canonical, base and full URLs from a request's
// forwarded headers and resolves relative or query-augmented targets
// against them.
//
// Everything here is a pure function of its inputs; the middlewares that
// publish the results on the request context live in package middleware.
package href

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	headerForwardedProto = "X-Forwarded-Proto"
	headerForwardedPort  = "X-Forwarded-Port"
)

// BaseMarker prefixes pathnames that resolve against the base href
// instead of the current location.
const BaseMarker = "~/"

// Protocol returns the request scheme. X-Forwarded-Proto wins over the
// connection's own scheme.
func Protocol(r *http.Request) string {
	if proto := r.Header.Get(headerForwardedProto); proto != "" {
		proto, _, _ = strings.Cut(proto, ",")
		return strings.ToLower(strings.TrimSpace(proto))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// ParseHost splits a Host header on its first colon. A missing or
// malformed port yields 0, which means "undefined".
func ParseHost(host string) (hostname string, port int) {
	hostname, rawPort, found := strings.Cut(host, ":")
	if !found {
		return hostname, 0
	}
	return hostname, leadingInt(rawPort)
}

// Hostname returns the host name part of the Host header.
func Hostname(r *http.Request) string {
	hostname, _ := ParseHost(r.Host)
	return hostname
}

// Port returns the effective port: X-Forwarded-Port first, then the port
// embedded in the Host header. 0 means the scheme's default.
func Port(r *http.Request) int {
	if port := leadingInt(r.Header.Get(headerForwardedPort)); port != 0 {
		return port
	}
	_, port := ParseHost(r.Host)
	return port
}

// Origin returns scheme://host[:port] of the request. Default ports are
// left out, the way URL serialisation normalises them.
func Origin(r *http.Request) *url.URL {
	scheme := Protocol(r)
	host := Hostname(r)
	if port := Port(r); port != 0 && port != defaultPort(scheme) {
		host += ":" + strconv.Itoa(port)
	}
	return &url.URL{Scheme: scheme, Host: host}
}

// BaseHref returns the URL of the mount root, always slash-terminated.
func BaseHref(r *http.Request, mountPath string) *url.URL {
	u := Origin(r)
	u.Path = AppendTrailingSlash(strings.TrimSuffix(mountPath, "/"))
	return u
}

// CanonicalHref returns the request URL without its query string.
func CanonicalHref(r *http.Request) *url.URL {
	u := FullHref(r)
	u.RawQuery = ""
	u.ForceQuery = false
	return u
}

// FullHref returns the original request URL including its query string.
func FullHref(r *http.Request) *url.URL {
	u := Origin(r)
	ref, err := url.Parse(r.URL.RequestURI())
	if err != nil {
		u.Path = "/"
		return u
	}
	u.Path = ref.Path
	u.RawPath = ref.RawPath
	u.RawQuery = ref.RawQuery
	return u
}

// AppendTrailingSlash appends "/" to pathname.
func AppendTrailingSlash(pathname string) string {
	return pathname + "/"
}

func defaultPort(scheme string) int {
	switch scheme {
	case "http":
		return 80
	case "https":
		return 443
	default:
		return 0
	}
}

// leadingInt parses the leading decimal digits of s, returning 0 when
// there are none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
