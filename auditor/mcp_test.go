package auditor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mkmetko/lighthouse/runstore"
)

var testImpl = &mcp.Implementation{Name: "legib-test", Version: "0.1.0"}

func mcpSession(t *testing.T) (*Runner, *mcp.ClientSession) {
	t.Helper()
	r := testRunner(t, nil)

	srv := mcp.NewServer(testImpl, nil)
	r.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() {
		_ = srv.Run(ctx, serverT)
	}()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return r, session
}

// callTool invokes a tool and returns the JSON text from the first TextContent.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) tool error: %v", name, result.Content)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text
}

func TestMCP_AuditAndListRuns(t *testing.T) {
	_, session := mcpSession(t)

	text := callTool(t, session, "legibility_audit", map[string]any{
		"url": "https://example.com/page",
	})

	var run runstore.Run
	if err := json.Unmarshal([]byte(text), &run); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if run.RunID == "" {
		t.Fatal("expected a run ID")
	}
	if run.DisplayValue != "70% legible text" {
		t.Fatalf("DisplayValue = %q", run.DisplayValue)
	}

	text = callTool(t, session, "legibility_runs", map[string]any{})
	var runs []*runstore.Run
	if err := json.Unmarshal([]byte(text), &runs); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != run.RunID {
		t.Fatalf("runs = %+v", runs)
	}

	text = callTool(t, session, "legibility_get_run", map[string]any{"run_id": run.RunID})
	var got runstore.Run
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("unmarshal get: %v", err)
	}
	if got.Report == nil || got.Report.Score != 1 {
		t.Fatalf("report = %+v", got.Report)
	}
}

func TestMCP_AuditRejectsBadURL(t *testing.T) {
	_, session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "legibility_audit",
		Arguments: map[string]any{"url": "ftp://example.com"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for non-http URL")
	}
}

func TestMCP_GetRunMissing(t *testing.T) {
	_, session := mcpSession(t)

	text := callTool(t, session, "legibility_get_run", map[string]any{"run_id": "run_nope"})
	var resp map[string]string
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == "" {
		t.Fatalf("expected not-found error, got %q", text)
	}
}
