package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/device/schema"
)

// DialFunc opens a fresh session with the RGB daemon.
type DialFunc func(ctx context.Context) (device.Controller, error)

// Server exposes the profile actions as MCP tools. Every tool call opens its
// own session and closes it before returning.
type Server struct {
	mcpServer *server.MCPServer
	dial      DialFunc
	validator *schema.Validator
}

// NewServer creates a new MCP server backed by dial
func NewServer(dial DialFunc, validator *schema.Validator) *Server {
	s := &Server{
		dial:      dial,
		validator: validator,
	}

	s.mcpServer = server.NewMCPServer(
		"rgbprofile",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
