package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	mcpadapter "github.com/medqc/stacaudit/internal/adapters/inbound/mcp"
	"github.com/medqc/stacaudit/internal/adapters/outbound/cache"
	"github.com/medqc/stacaudit/internal/adapters/outbound/history"
	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClient struct {
	resp *domain.AuditResponse
}

func (c fixedClient) Submit(context.Context, domain.AuditRequest) (*domain.AuditResponse, error) {
	return c.resp, nil
}

const structuredBody = `{"violations":[{"rule_id":"STAC-001","severity":"high"}],"pretty_text":"# Report"}`

func newTestServer(t *testing.T, resp *domain.AuditResponse) (*server.MCPServer, string) {
	t.Helper()
	dir := t.TempDir()
	store := cache.New()
	hist := history.New()
	wf := application.NewWorkflow(fixedClient{resp: resp},
		application.WithStateDir(dir),
		application.WithResponseStore(store),
		application.WithHistory(hist),
	)
	s := mcpadapter.NewStacAuditMCPServer(mcpadapter.Deps{
		Workflow: wf,
		Store:    store,
		History:  hist,
		StateDir: dir,
		Version:  "test",
	})
	return s, dir
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %q should be registered", name)

	var req mcplib.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	return result
}

func text(t *testing.T, r *mcplib.CallToolResult) string {
	t.Helper()
	require.Len(t, r.Content, 1)
	tc, ok := r.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func writePDF(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "scene.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.7\n%%EOF\n"), 0644))
	return p
}

func TestMCPServerHasTools(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"stacaudit_audit",
		"stacaudit_last_result",
		"stacaudit_history",
		"stacaudit_download",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}

func TestAuditTool_Structured(t *testing.T) {
	s, dir := newTestServer(t, &domain.AuditResponse{StatusCode: 200, ContentType: "application/json", Body: structuredBody})

	result := callTool(t, s, "stacaudit_audit", map[string]any{"path": writePDF(t, dir)})

	require.False(t, result.IsError)
	var screen map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &screen))
	assert.Equal(t, "succeeded", screen["state"])
	assert.Equal(t, true, screen["json_download"].(map[string]any)["enabled"])
}

func TestAuditTool_FailedRunIsError(t *testing.T) {
	s, dir := newTestServer(t, &domain.AuditResponse{StatusCode: 400, Body: "Invalid PDF signature"})

	result := callTool(t, s, "stacaudit_audit", map[string]any{"path": writePDF(t, dir)})

	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "Error: Invalid PDF signature")
}

func TestAuditTool_MissingPath(t *testing.T) {
	s, _ := newTestServer(t, nil)

	result := callTool(t, s, "stacaudit_audit", map[string]any{})

	assert.True(t, result.IsError)
}

func TestAuditTool_UnknownFormat(t *testing.T) {
	s, dir := newTestServer(t, nil)

	result := callTool(t, s, "stacaudit_audit", map[string]any{"path": writePDF(t, dir), "human": true, "format": "docx"})

	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "docx")
}

func TestLastResultTool(t *testing.T) {
	s, dir := newTestServer(t, &domain.AuditResponse{StatusCode: 200, ContentType: "application/json", Body: structuredBody})

	before := callTool(t, s, "stacaudit_last_result", nil)
	assert.True(t, before.IsError)
	assert.Contains(t, text(t, before), "run an audit first")

	callTool(t, s, "stacaudit_audit", map[string]any{"path": writePDF(t, dir)})
	after := callTool(t, s, "stacaudit_last_result", nil)

	require.False(t, after.IsError)
	var stored domain.StoredResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, after)), &stored))
	assert.Equal(t, structuredBody, stored.Response.Body)
}

func TestHistoryTool(t *testing.T) {
	s, dir := newTestServer(t, &domain.AuditResponse{StatusCode: 200, ContentType: "text/plain", Body: "ok"})
	pdf := writePDF(t, dir)
	for range 3 {
		callTool(t, s, "stacaudit_audit", map[string]any{"path": pdf})
	}

	result := callTool(t, s, "stacaudit_history", map[string]any{"limit": 2})

	require.False(t, result.IsError)
	var entries []domain.RunEntry
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &entries))
	assert.Len(t, entries, 2)
}

func TestDownloadTool(t *testing.T) {
	s, dir := newTestServer(t, &domain.AuditResponse{StatusCode: 200, ContentType: "application/json", Body: structuredBody})

	disabled := callTool(t, s, "stacaudit_download", map[string]any{"kind": "json"})
	assert.True(t, disabled.IsError)

	callTool(t, s, "stacaudit_audit", map[string]any{"path": writePDF(t, dir)})

	md := callTool(t, s, "stacaudit_download", map[string]any{"kind": "md"})
	require.False(t, md.IsError)
	assert.Equal(t, "# Report", text(t, md))

	js := callTool(t, s, "stacaudit_download", map[string]any{"kind": "json"})
	require.False(t, js.IsError)
	assert.JSONEq(t, structuredBody, text(t, js))

	xlsx := callTool(t, s, "stacaudit_download", map[string]any{"kind": "xlsx"})
	assert.True(t, xlsx.IsError)
}

func TestScreenResource(t *testing.T) {
	s, _ := newTestServer(t, nil)

	raw := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"stacaudit://screen"}}`))
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	assert.Contains(t, string(data), `\"state\": \"idle\"`)
}
