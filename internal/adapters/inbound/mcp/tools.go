package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/medqc/stacaudit/internal/adapters/outbound/docfile"
	"github.com/medqc/stacaudit/internal/adapters/outbound/history"
	"github.com/medqc/stacaudit/internal/domain"
)

// registerTools registers all audit MCP tools on the given server.
func registerTools(s *server.MCPServer, deps Deps) {
	// 1. stacaudit_audit
	s.AddTool(
		mcplib.NewTool("stacaudit_audit",
			mcplib.WithDescription("Submit a PDF to the STAC audit service and return the resulting screen state as JSON"),
			mcplib.WithString("path",
				mcplib.Required(),
				mcplib.Description("Path to the PDF to audit"),
			),
			mcplib.WithBoolean("human", mcplib.Description("Request human-readable output instead of structured JSON")),
			mcplib.WithString("format", mcplib.Description("Output format in human mode: md, json or text")),
		),
		handleAudit(deps),
	)

	// 2. stacaudit_last_result
	s.AddTool(
		mcplib.NewTool("stacaudit_last_result",
			mcplib.WithDescription("Returns the last successful audit response stored on disk"),
		),
		handleLastResult(deps),
	)

	// 3. stacaudit_history
	s.AddTool(
		mcplib.NewTool("stacaudit_history",
			mcplib.WithDescription("Returns the most recent audit runs, oldest first"),
			mcplib.WithNumber("limit", mcplib.Description("Maximum number of runs (default: 10)")),
		),
		handleHistory(deps),
	)

	// 4. stacaudit_download
	s.AddTool(
		mcplib.NewTool("stacaudit_download",
			mcplib.WithDescription("Returns the content of an artifact of the current run (json or markdown)"),
			mcplib.WithString("kind",
				mcplib.Required(),
				mcplib.Description("Artifact kind: json or md"),
			),
		),
		handleDownload(deps),
	)
}

func handleAudit(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		format := request.GetString("format", "")
		if format != "" && !domain.IsKnownFormat(format) {
			return errorResult(fmt.Sprintf("unknown format %q", format)), nil
		}

		doc, err := docfile.Load(path)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		deps.Workflow.RunAudit(ctx, domain.AuditRequest{
			File:      doc,
			HumanMode: request.GetBool("human", false),
			Format:    format,
		})

		screen := deps.Workflow.Screen()
		result, err := jsonResult(screen)
		if err != nil {
			return nil, err
		}
		result.IsError = screen.State == domain.StateFailed
		return result, nil
	}
}

func handleLastResult(deps Deps) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		if deps.Store == nil {
			return errorResult("result store is not configured"), nil
		}
		stored, err := deps.Store.Load(deps.StateDir)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(stored)
	}
}

func handleHistory(deps Deps) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		if deps.History == nil {
			return errorResult("run history is not configured"), nil
		}
		entries, err := deps.History.Load(deps.StateDir)
		if err != nil {
			return errorResult(fmt.Sprintf("loading history failed: %v", err)), nil
		}
		return jsonResult(history.Last(entries, request.GetInt("limit", 10)))
	}
}

func handleDownload(deps Deps) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		name, err := request.RequireString("kind")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		kind, ok := domain.ParseArtifactKind(name)
		if !ok {
			return errorResult(fmt.Sprintf("unknown artifact kind %q", name)), nil
		}
		if kind == domain.ArtifactSpreadsheet {
			return errorResult("spreadsheets are binary; use the download command"), nil
		}

		artifact, err := deps.Workflow.Download(kind)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(string(artifact.Content)), nil
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
