package driven

import (
	"context"

	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// Adapter extracts conversations from one platform.
// Manifest-driven and imperative adapters both implement this interface,
// and every implementation must be safe for concurrent use.
type Adapter interface {
	// ID returns the stable adapter identifier (e.g. "chatgpt-ext").
	ID() string

	// Version returns the adapter's semantic version.
	Version() string

	// Name returns the human-readable platform name.
	Name() string

	// Platform returns the platform key used in bundle sources and config.
	Platform() string

	// MatchesHost reports whether the URL belongs to the platform.
	MatchesHost(rawURL string) bool

	// CanHandle reports whether the URL identifies a single conversation.
	CanHandle(rawURL string) bool

	// Parse extracts the conversation the page points at.
	Parse(ctx context.Context, page domain.Page) (*domain.ContentBundle, error)

	// FetchByID extracts a conversation without a live page, using the
	// ambient session for the platform.
	FetchByID(ctx context.Context, id string) (*domain.ContentBundle, error)
}

// SessionProvider supplies the ambient page for headless fetches.
type SessionProvider interface {
	// Session returns the stored page snapshot for a platform.
	Session(platform string) (domain.Page, bool)
}

// StaticSessions is a SessionProvider backed by a map.
type StaticSessions map[string]domain.Page

// Session implements SessionProvider.
func (s StaticSessions) Session(platform string) (domain.Page, bool) {
	p, ok := s[platform]
	return p, ok
}
