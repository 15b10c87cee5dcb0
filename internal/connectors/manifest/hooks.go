package manifest

import (
	"context"

	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/core/domain"
)

// HookContext is the read-only runtime context passed to hooks.
type HookContext struct {
	URL            string
	Page           domain.Page
	ConversationID string
	Provider       string
}

// Transformed is the result of a TransformResponse hook.
type Transformed struct {
	Data any

	// Title overrides the manifest title path when non-empty.
	Title string
}

// Hooks override individual engine steps for one platform. Every field
// is optional.
type Hooks struct {
	// ExtractAuth returns template variables derived from the page.
	ExtractAuth func(hc *HookContext) (map[string]string, error)

	// ExtractAuthHeadless resolves auth for FetchByID. When nil, ExtractAuth
	// runs against the ambient session page.
	ExtractAuthHeadless func(ctx context.Context, session domain.Page) (map[string]string, error)

	// ExtractConversationID replaces URL pattern matching.
	ExtractConversationID func(rawURL string) (string, bool)

	// BuildRequestURL replaces template-based URL construction.
	BuildRequestURL func(hc *HookContext, vars map[string]string) string

	// TransformResponse normalises the decoded response before parsing.
	TransformResponse func(raw any, hc *HookContext) (Transformed, error)

	// ExtractMessageText replaces the text path lookup. It may be called
	// concurrently for different messages.
	ExtractMessageText func(ctx context.Context, msg any, hc *HookContext) (string, error)

	// AfterParse post-processes the filtered, role-mapped message list.
	AfterParse func(msgs []bundle.Message, hc *HookContext) []bundle.Message
}

// Entry pairs a manifest with its hooks for registration.
type Entry struct {
	Manifest *Manifest
	Hooks    Hooks
}
