package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ctxport/internal/core/domain"
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
)

// ExportInput is the input schema for the export_conversation tool.
type ExportInput struct {
	URL                string            `json:"url" jsonschema:"conversation, issue or pull request URL"`
	HTML               string            `json:"html,omitempty" jsonschema:"serialised page HTML, needed for Gemini and signed-in GitHub"`
	Cookies            string            `json:"cookies,omitempty" jsonschema:"document.cookie string of the page"`
	LocalStorage       map[string]string `json:"local_storage,omitempty" jsonschema:"local storage entries of the page"`
	Format             string            `json:"format,omitempty" jsonschema:"full, user-only, code-only or compact (default full)"`
	IncludeFrontmatter *bool             `json:"include_frontmatter,omitempty" jsonschema:"prepend frontmatter (default true)"`
}

// ExportOutput is the output schema for the export_conversation tool.
type ExportOutput struct {
	Markdown        string `json:"markdown"`
	Title           string `json:"title,omitempty"`
	Platform        string `json:"platform"`
	MessageCount    int    `json:"message_count"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

// FetchInput is the input schema for the fetch_conversations tool.
type FetchInput struct {
	Platform           string   `json:"platform" jsonschema:"adapter ID or platform key, e.g. chatgpt or github"`
	IDs                []string `json:"ids" jsonschema:"conversation IDs, fetched one after another"`
	Format             string   `json:"format,omitempty" jsonschema:"full, user-only, code-only or compact (default full)"`
	IncludeFrontmatter *bool    `json:"include_frontmatter,omitempty" jsonschema:"prepend frontmatter (default true)"`
}

// FetchOutput is the output schema for the fetch_conversations tool.
type FetchOutput struct {
	Markdown        string            `json:"markdown,omitempty"`
	Succeeded       int               `json:"succeeded"`
	Failed          int               `json:"failed"`
	Total           int               `json:"total"`
	Errors          map[string]string `json:"errors,omitempty"`
	MessageCount    int               `json:"message_count"`
	EstimatedTokens int               `json:"estimated_tokens"`
}

// PlatformsInput is the empty input of list_platforms.
type PlatformsInput struct{}

// PlatformsOutput is the output schema for the list_platforms tool.
type PlatformsOutput struct {
	Platforms []PlatformOutput `json:"platforms"`
}

// PlatformOutput describes one adapter.
type PlatformOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	Version     string `json:"version"`
	Declarative bool   `json:"declarative"`
	Reliability string `json:"reliability,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_conversation",
		Description: "Export an AI conversation or GitHub issue/PR as Markdown",
	}, s.handleExport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_conversations",
		Description: "Fetch conversations by ID with stored sessions and merge them into one Markdown document",
	}, s.handleFetch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_platforms",
		Description: "List the platforms ctxport can export from",
	}, s.handleListPlatforms)
}

// handleExport handles the export_conversation tool invocation.
func (s *Server) handleExport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportInput,
) (*mcp.CallToolResult, ExportOutput, error) {
	if input.URL == "" {
		return nil, ExportOutput{}, errors.New("url is required")
	}
	opts, err := exportOptions(input.Format, input.IncludeFrontmatter)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	page := domain.Page{
		URL:          input.URL,
		HTML:         input.HTML,
		Cookies:      input.Cookies,
		LocalStorage: input.LocalStorage,
	}
	b, res, err := s.ports.Export.Export(ctx, page, opts)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	return nil, ExportOutput{
		Markdown:        res.Markdown,
		Title:           b.Title,
		Platform:        b.Source.Platform,
		MessageCount:    res.MessageCount,
		EstimatedTokens: res.EstimatedTokens,
	}, nil
}

// handleFetch handles the fetch_conversations tool invocation.
func (s *Server) handleFetch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchInput,
) (*mcp.CallToolResult, FetchOutput, error) {
	if input.Platform == "" || len(input.IDs) == 0 {
		return nil, FetchOutput{}, errors.New("platform and ids are required")
	}
	opts, err := exportOptions(input.Format, input.IncludeFrontmatter)
	if err != nil {
		return nil, FetchOutput{}, err
	}

	result, res, err := s.ports.Export.CopyMultiple(ctx, input.Platform, input.IDs, opts, nil)
	if err != nil {
		return nil, FetchOutput{}, err
	}

	out := FetchOutput{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Total:     result.Total,
	}
	for _, item := range result.Items {
		if item.Err != nil {
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[item.ID] = item.Err.Error()
		}
	}
	if res != nil {
		out.Markdown = res.Markdown
		out.MessageCount = res.MessageCount
		out.EstimatedTokens = res.EstimatedTokens
	}
	return nil, out, nil
}

// handleListPlatforms handles the list_platforms tool invocation.
func (s *Server) handleListPlatforms(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ PlatformsInput,
) (*mcp.CallToolResult, PlatformsOutput, error) {
	return nil, PlatformsOutput{Platforms: s.platforms()}, nil
}

func (s *Server) platforms() []PlatformOutput {
	infos := s.ports.Registry.Platforms()
	out := make([]PlatformOutput, len(infos))
	for i, p := range infos {
		out[i] = PlatformOutput{
			ID:          p.ID,
			Name:        p.Name,
			Platform:    p.Platform,
			Version:     p.Version,
			Declarative: p.Declarative,
			Reliability: p.Reliability,
		}
	}
	return out
}

func exportOptions(format string, frontmatter *bool) (driving.ExportOptions, error) {
	f, err := domain.ParseFormat(format)
	if err != nil {
		return driving.ExportOptions{}, fmt.Errorf("format: %w", err)
	}
	return driving.ExportOptions{Format: f, IncludeFrontmatter: frontmatter}, nil
}
