package mcp

import (
	"github.com/custodia-labs/ctxport/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Export extracts and renders conversations.
	Export driving.ExportService

	// Registry lists the available adapters.
	Registry driving.AdapterRegistry
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Export == nil {
		return ErrMissingExportService
	}
	if p.Registry == nil {
		return ErrMissingRegistry
	}
	return nil
}
