package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/medqc/stacaudit/internal/domain"
)

// registerResources registers all audit MCP resources on the given server.
func registerResources(s *server.MCPServer, deps Deps) {
	// 1. stacaudit://screen - display state of the current run
	s.AddResource(
		mcplib.NewResource(
			"stacaudit://screen",
			"Audit Screen",
			mcplib.WithResourceDescription("State, output, violations and diagnostics of the current run"),
			mcplib.WithMIMEType("application/json"),
		),
		handleScreenResource(deps),
	)

	// 2. stacaudit://last-result - last stored response
	s.AddResource(
		mcplib.NewResource(
			"stacaudit://last-result",
			"Last Result",
			mcplib.WithResourceDescription("Last successful audit response stored on disk"),
			mcplib.WithMIMEType("application/json"),
		),
		handleLastResultResource(deps),
	)

	// 3. stacaudit://artifacts/{kind} - artifact content (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"stacaudit://artifacts/{kind}",
			"Artifact",
			mcplib.WithTemplateDescription("audit.json or audit.md of the current run"),
		),
		handleArtifactResource(deps),
	)
}

func handleScreenResource(deps Deps) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(deps.Workflow.Screen(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling screen: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "stacaudit://screen",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleLastResultResource(deps Deps) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		if deps.Store == nil {
			return nil, fmt.Errorf("result store is not configured")
		}
		stored, err := deps.Store.Load(deps.StateDir)
		if err != nil {
			return nil, err
		}

		data, err := json.MarshalIndent(stored, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling result: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "stacaudit://last-result",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleArtifactResource(deps Deps) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		// Extract the kind from the arguments (populated by template matching)
		name := templateArg(request.Params.Arguments["kind"])
		kind, ok := domain.ParseArtifactKind(name)
		if !ok || kind == domain.ArtifactSpreadsheet {
			return nil, fmt.Errorf("unknown artifact kind %q", name)
		}

		artifact, err := deps.Workflow.Download(kind)
		if err != nil {
			return nil, err
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: artifact.MediaType,
				Text:     string(artifact.Content),
			},
		}, nil
	}
}

// templateArg reads a template variable, which the server may deliver as a
// string or as a single-element list.
func templateArg(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	case []any:
		if len(t) > 0 {
			s, _ := t[0].(string)
			return s
		}
	}
	return ""
}
