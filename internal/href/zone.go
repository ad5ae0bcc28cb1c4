package href

import (
	"net/url"
	"strings"
)

// Zone returns the last two dot-separated labels of host's name. Ports
// are ignored. Multi-part public suffixes such as co.uk are not special
// cased.
func Zone(host string) string {
	hostname, _, _ := strings.Cut(host, ":")
	labels := strings.Split(hostname, ".")
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	return strings.Join(labels, ".")
}

// SameZone reports whether two hosts share a zone.
func SameZone(a, b string) bool {
	return Zone(a) == Zone(b)
}

// CallbackURL returns the first candidate that, resolved against base,
// stays in base's zone. Empty and unparseable candidates are skipped.
// It returns nil when no candidate qualifies.
func CallbackURL(base *url.URL, candidates ...string) *url.URL {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		ref, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		u := base.ResolveReference(ref)
		if SameZone(u.Host, base.Host) {
			return u
		}
	}
	return nil
}
