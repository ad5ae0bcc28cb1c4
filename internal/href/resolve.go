package href

import (
	"fmt"
	"net/url"
	"strings"
)

// Target describes where Resolve should point.
//
// An empty Pathname keeps the source location. A nil SearchParams leaves
// the query alone; a non-nil map first copies every source parameter onto
// the result and then applies its entries, deleting keys whose value is nil.
type Target struct {
	Pathname     string
	SearchParams map[string]any
}

// Resolve resolves target against source. A nil target returns a copy of
// source.
func Resolve(source *url.URL, target *Target) *url.URL {
	if target == nil {
		cp := *source
		return &cp
	}

	var u *url.URL
	if target.Pathname != "" {
		ref, err := url.Parse(target.Pathname)
		if err != nil {
			ref = &url.URL{Path: target.Pathname}
		}
		u = source.ResolveReference(ref)
	} else {
		cp := *source
		u = &cp
	}
	u.Fragment, u.RawFragment = "", ""

	if target.SearchParams != nil {
		query := u.Query()
		for name, values := range source.Query() {
			query[name] = []string{values[len(values)-1]}
		}
		for name, value := range target.SearchParams {
			if value == nil {
				query.Del(name)
				continue
			}
			query.Set(name, fmt.Sprint(value))
		}
		u.RawQuery = query.Encode()
	}

	return u
}

// Href resolves pathname and searchParams against the current full href
// and returns the relative pathname+search. Pathnames starting with "~/"
// resolve against base instead.
func Href(base, full *url.URL, pathname string, searchParams map[string]any) string {
	if rest, ok := strings.CutPrefix(pathname, BaseMarker); ok {
		ref, err := url.Parse(rest)
		if err != nil {
			ref = &url.URL{Path: rest}
		}
		pathname = base.ResolveReference(ref).EscapedPath()
	}

	u := Resolve(full, &Target{Pathname: pathname, SearchParams: searchParams})

	if u.RawQuery == "" {
		return u.EscapedPath()
	}
	return u.EscapedPath() + "?" + u.RawQuery
}

var localhost = &url.URL{Scheme: "http", Host: "localhost", Path: "/"}

// IsActive reports whether every path segment of target matches the
// segment at the same position in source. It is a prefix match used to
// highlight navigation entries.
func IsActive(source, target string) bool {
	s := pathSegments(source)
	t := pathSegments(target)

	for i := range t {
		if i >= len(s) || s[i] != t[i] {
			return false
		}
	}
	return true
}

func pathSegments(raw string) []string {
	u, err := localhost.Parse(raw)
	if err != nil {
		return []string{""}
	}
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	return strings.Split(p, "/")
}
