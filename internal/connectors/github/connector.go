package github

import (
	"context"
	"regexp"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ctxport/internal/connectors"
	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driven"
	"github.com/custodia-labs/ctxport/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Adapter = (*Connector)(nil)

const (
	adapterID      = "github"
	adapterVersion = "1.0.0"
	platformName   = "GitHub"
	platformKey    = "github"
)

var hostPattern = regexp.MustCompile(`(?i)^https://github\.com/`)

// Options configures the connector. The zero value targets github.com
// anonymously.
type Options struct {
	// Token authenticates REST calls.
	Token string

	// APIURL overrides the REST base URL.
	APIURL string

	// GraphQLURL overrides the GraphQL endpoint.
	GraphQLURL string

	// Rate overrides the proactive REST throttle in requests per second.
	Rate rate.Limit
}

// Connector extracts GitHub issues and pull requests.
type Connector struct {
	env        connectors.Env
	rest       *Client
	graphQLURL string
}

// New creates a GitHub connector.
func New(env connectors.Env, opts Options) (*Connector, error) {
	rest, err := NewClient(env.Client(), opts.Token, opts.APIURL, NewRateLimiter(opts.Rate))
	if err != nil {
		return nil, err
	}
	gql := opts.GraphQLURL
	if gql == "" {
		gql = DefaultGraphQLURL
	}
	return &Connector{env: env, rest: rest, graphQLURL: gql}, nil
}

// ID returns the adapter identifier.
func (c *Connector) ID() string { return adapterID }

// Version returns the adapter version.
func (c *Connector) Version() string { return adapterVersion }

// Name returns the platform display name.
func (c *Connector) Name() string { return platformName }

// Platform returns the platform key.
func (c *Connector) Platform() string { return platformKey }

// MatchesHost reports whether rawURL is on github.com.
func (c *Connector) MatchesHost(rawURL string) bool {
	return hostPattern.MatchString(rawURL)
}

// CanHandle reports whether rawURL is an issue or pull request page.
func (c *Connector) CanHandle(rawURL string) bool {
	_, ok := ParseURL(rawURL)
	return ok
}

// Parse extracts the issue or pull request shown on page.
func (c *Connector) Parse(ctx context.Context, page domain.Page) (*domain.ContentBundle, error) {
	logger.Section("Extract GitHub")

	ref, ok := ParseURL(page.URL)
	if !ok {
		return nil, domain.NewInvalidInput(platformName, "not a GitHub issue or pull request page: %q", page.URL)
	}
	return c.fetch(ctx, ref, page.URL, page)
}

// FetchByID extracts "owner/repo/issues/N" or "owner/repo/pull/N".
func (c *Connector) FetchByID(ctx context.Context, id string) (*domain.ContentBundle, error) {
	logger.Section("Fetch GitHub " + id)

	ref, ok := ParseID(id)
	if !ok {
		return nil, domain.NewInvalidInput(platformName,
			"invalid GitHub ID format: %s. Expected: owner/repo/issues/123 or owner/repo/pull/123", id)
	}
	return c.fetch(ctx, ref, ref.URL(), c.env.Session(platformKey))
}

// fetch tries GraphQL for signed-in pages and falls back to REST.
func (c *Connector) fetch(ctx context.Context, ref Ref, pageURL string, page domain.Page) (*domain.ContentBundle, error) {
	var (
		t   thread
		err error
	)

	if readPageMeta(page.HTML).Login != "" {
		t, err = c.fetchGraphQL(ctx, ref, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("github: GraphQL failed, falling back to REST API: %v", err)
		}
	} else {
		err = ErrNotLoggedIn
	}

	if err != nil {
		t, err = c.fetchREST(ctx, ref)
		if err != nil {
			return nil, err
		}
	}

	source := domain.SourceInfo{
		Platform:      platformKey,
		URL:           pageURL,
		ExtractedAt:   c.env.Clock(),
		PluginID:      adapterID,
		PluginVersion: adapterVersion,
	}
	return buildBundle(ref, t, source)
}
