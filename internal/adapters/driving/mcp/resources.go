package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
)

const (
	// uriScheme is the custom URI scheme for ctxport resources.
	uriScheme = "ctxport://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "platforms",
		Name:        "platforms",
		Description: "Registered platform adapters",
		MIMEType:    "application/json",
	}, s.handlePlatformsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "conversations/{platform}/{id}",
		Name:        "conversation",
		Description: "A conversation fetched with the stored session, as Markdown",
		MIMEType:    "text/markdown",
	}, s.handleConversationResource)
}

// handlePlatformsResource returns the registered adapters as JSON.
func (s *Server) handlePlatformsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.platforms(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling platforms: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleConversationResource fetches and renders one conversation.
func (s *Server) handleConversationResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	platform, id := parseConversationURI(req.Params.URI)
	if platform == "" || id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	b, err := s.ports.Export.FetchByID(ctx, platform, id)
	if err != nil {
		return nil, fmt.Errorf("fetching %s %s: %w", platform, id, err)
	}
	res := s.ports.Export.Render(b, driving.ExportOptions{})

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     res.Markdown,
		}},
	}, nil
}

// parseConversationURI splits ctxport://conversations/{platform}/{id}.
// GitHub IDs contain slashes, so everything after the platform is the ID.
func parseConversationURI(uri string) (platform, id string) {
	const prefix = uriScheme + "conversations/"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return "", ""
	}
	platform, id, _ = strings.Cut(rest, "/")
	return platform, id
}
