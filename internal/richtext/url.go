package richtext

import (
	"net/url"
	"strings"
)

var (
	linkSchemes  = []string{"http", "https", "mailto"}
	imageSchemes = []string{"http", "https"}
)

// safeHref returns raw when it is a relative reference or uses an allowed
// link scheme, and "" otherwise.
func safeHref(raw string) string {
	u, ok := parseURL(raw)
	if !ok {
		return ""
	}
	if u.Scheme == "" || hasScheme(u, linkSchemes) {
		return raw
	}
	return ""
}

// safeSrc is safeHref for image sources, which also accept data:image URLs.
func safeSrc(raw string) string {
	u, ok := parseURL(raw)
	if !ok {
		return ""
	}
	switch {
	case u.Scheme == "", hasScheme(u, imageSchemes):
		return raw
	case strings.EqualFold(u.Scheme, "data") && strings.HasPrefix(strings.ToLower(u.Opaque), "image/"):
		return raw
	}
	return ""
}

// parseURL rejects references a browser would read differently than
// net/url does: surrounding spaces and control characters.
func parseURL(raw string) (*url.URL, bool) {
	if raw == "" || raw != strings.TrimSpace(raw) {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	return u, true
}

func hasScheme(u *url.URL, schemes []string) bool {
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return true
		}
	}
	return false
}
