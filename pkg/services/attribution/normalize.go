package attribution

import (
	"net/url"
	"strings"
)

// NormalizePage reduces a page reference to the canonical path both sources
// are joined on. The analytics source reports bare paths while the search
// source returns full URLs, so scheme, host, query string and fragment are
// dropped and the trailing slash trimmed (root "/" stays). Path case is
// preserved.
func NormalizePage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	path := trimmed
	if u, err := url.Parse(trimmed); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
