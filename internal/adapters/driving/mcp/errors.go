// Package mcp provides an MCP (Model Context Protocol) server adapter for ctxport.
// It lets AI assistants export conversations as Markdown over stdio.
package mcp

import "errors"

var (
	// ErrMissingExportService is returned when the export service is not provided.
	ErrMissingExportService = errors.New("mcp: export service is required")

	// ErrMissingRegistry is returned when the adapter registry is not provided.
	ErrMissingRegistry = errors.New("mcp: adapter registry is required")
)
