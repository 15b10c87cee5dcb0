package connectors

import (
	"net/http"
	"time"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// UserAgent identifies outbound requests.
const UserAgent = "Mozilla/5.0 (compatible; ctxport)"

// Env is the runtime every adapter receives. The zero value is usable.
type Env struct {
	// HTTPClient performs outbound requests. Defaults to a client with DefaultTimeout.
	HTTPClient *http.Client

	// Sessions supplies page snapshots for FetchByID.
	Sessions driven.SessionProvider

	// Now returns the extraction time. Defaults to time.Now.
	Now func() time.Time
}

var defaultClient = &http.Client{Timeout: DefaultTimeout}

// Client returns the configured HTTP client.
func (e Env) Client() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	return defaultClient
}

// Session returns the stored page snapshot for platform, or an empty page.
func (e Env) Session(platform string) domain.Page {
	if e.Sessions == nil {
		return domain.Page{}
	}
	p, _ := e.Sessions.Session(platform)
	return p
}

// Clock returns the current extraction time in UTC.
func (e Env) Clock() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}
