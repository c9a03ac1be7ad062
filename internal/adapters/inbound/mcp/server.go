package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
)

// Deps are the services the MCP tools operate on.
type Deps struct {
	Workflow *application.Workflow
	Store    domain.ResponseStore
	History  domain.RunHistory
	// StateDir holds the stored response and the run history.
	StateDir string
	Version  string
}

// NewStacAuditMCPServer creates an MCP server with the audit tools and
// resources registered.
func NewStacAuditMCPServer(deps Deps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"stacaudit",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, deps)
	registerResources(s, deps)

	return s
}
