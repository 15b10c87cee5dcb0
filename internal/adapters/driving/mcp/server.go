package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server is the MCP server for ctxport.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports. The version is
// reported to clients during initialisation.
func NewServer(ports *Ports, version string) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "ctxport",
		Version: version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves over stdio until the context is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
