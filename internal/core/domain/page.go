package domain

import (
	"net/url"
	"strings"
)

// Page is a snapshot of the browser page an adapter reads from.
type Page struct {
	URL string

	// HTML is the serialised document, may be empty.
	HTML string

	// Cookies is the raw document.cookie string.
	Cookies string

	LocalStorage map[string]string
}

// Cookie returns the URL-decoded value of the named cookie.
func (p Page) Cookie(name string) (string, bool) {
	for _, part := range strings.Split(p.Cookies, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || k != name {
			continue
		}
		if decoded, err := url.PathUnescape(v); err == nil {
			return decoded, true
		}
		return v, true
	}
	return "", false
}

// Storage returns a local-storage entry.
func (p Page) Storage(key string) (string, bool) {
	if p.LocalStorage == nil {
		return "", false
	}
	v, ok := p.LocalStorage[key]
	return v, ok
}

// WithURL returns a copy of p pointing at u.
func (p Page) WithURL(u string) Page {
	p.URL = u
	return p
}
