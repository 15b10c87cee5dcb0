// Package gemini extracts Gemini conversations through the batchexecute
// RPC endpoint used by the web app.
package gemini

import (
	"context"
	"net/http"
	"regexp"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/connectors/bundle"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/logger"
)

var _ driven.Adapter = (*Connector)(nil)

const (
	adapterID      = "gemini"
	adapterVersion = "1.0.0"
	platformName   = "Gemini"
	platformKey    = "gemini"

	// DefaultBaseURL is the Gemini web origin.
	DefaultBaseURL = "https://gemini.google.com"
)

var (
	hostPattern         = regexp.MustCompile(`(?i)^https://gemini\.google\.com/`)
	conversationPattern = regexp.MustCompile(`^https?://gemini\.google\.com/(?:u/\d+/)?app/([a-zA-Z0-9]+)`)
	idPattern           = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Options configures the connector.
type Options struct {
	// BaseURL overrides the web origin for RPC calls and page refetches.
	BaseURL string
}

// Connector extracts Gemini conversations.
type Connector struct {
	env     connectors.Env
	baseURL string
}

// New creates a Gemini connector.
func New(env connectors.Env, opts Options) *Connector {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Connector{env: env, baseURL: base}
}

func (c *Connector) ID() string       { return adapterID }
func (c *Connector) Version() string  { return adapterVersion }
func (c *Connector) Name() string     { return platformName }
func (c *Connector) Platform() string { return platformKey }

// MatchesHost reports whether rawURL is on gemini.google.com.
func (c *Connector) MatchesHost(rawURL string) bool {
	return hostPattern.MatchString(rawURL)
}

// CanHandle reports whether rawURL is a conversation page.
func (c *Connector) CanHandle(rawURL string) bool {
	_, ok := conversationID(rawURL)
	return ok
}

func conversationID(rawURL string) (string, bool) {
	m := conversationPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Parse extracts the conversation shown on page.
func (c *Connector) Parse(ctx context.Context, page domain.Page) (*domain.ContentBundle, error) {
	logger.Section("Extract Gemini")

	id, ok := conversationID(page.URL)
	if !ok {
		return nil, domain.NewInvalidInput(platformName, "not a Gemini conversation page: %q", page.URL)
	}
	return c.extract(ctx, id, page)
}

// FetchByID extracts a conversation by ID using the stored session.
func (c *Connector) FetchByID(ctx context.Context, id string) (*domain.ContentBundle, error) {
	logger.Section("Fetch Gemini " + id)

	if !idPattern.MatchString(id) {
		return nil, domain.NewInvalidInput(platformName, "invalid conversation ID %q", id)
	}
	page := c.env.Session(platformKey).WithURL(DefaultBaseURL + "/app/" + id)
	return c.extract(ctx, id, page)
}

func (c *Connector) extract(ctx context.Context, id string, page domain.Page) (*domain.ContentBundle, error) {
	params, err := c.resolveRuntimeParams(ctx, id, page)
	if err != nil {
		return nil, err
	}

	payload, err := c.fetchPayload(ctx, id, params, page.Cookies)
	if err != nil {
		return nil, err
	}

	msgs, stats := ExtractMessages(payload)
	logger.Debug("gemini: heuristics %s visited %d arrays, %d user and %d assistant turns, rejected %v",
		stats.Version, stats.ArraysVisited, stats.UserTurns, stats.AssistantTurns, stats.Rejected)

	source := domain.SourceInfo{
		Platform:      platformKey,
		URL:           page.URL,
		ExtractedAt:   c.env.Clock(),
		PluginID:      adapterID,
		PluginVersion: adapterVersion,
	}
	return bundle.Conversation(source, "", platformName, msgs)
}

// resolveRuntimeParams reads the tokens from the page snapshot and
// refetches the page once when they are missing.
func (c *Connector) resolveRuntimeParams(ctx context.Context, id string, page domain.Page) (RuntimeParams, error) {
	hl := PreferredLanguage(page.HTML)
	if params, ok := ExtractRuntimeParams(page.HTML, hl); ok {
		return params, nil
	}

	logger.Debug("gemini: runtime tokens missing from snapshot, refetching page")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/app/"+id, http.NoBody)
	if err != nil {
		return RuntimeParams{}, domain.NewTransportError(platformName, 0, err)
	}
	if page.Cookies != "" {
		req.Header.Set("Cookie", page.Cookies)
	}
	body, err := connectors.Do(ctx, c.env.Client(), req, platformName)
	if err != nil {
		return RuntimeParams{}, err
	}

	html := string(body)
	if hl == "en" && page.HTML == "" {
		hl = PreferredLanguage(html)
	}
	if params, ok := ExtractRuntimeParams(html, hl); ok {
		return params, nil
	}
	return RuntimeParams{}, domain.NewAuthError(platformName, "cannot find Gemini runtime tokens (SNlM0e/cfb2h/FdrFJe)")
}
