package auditor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the legibility tools on an MCP server.
func (r *Runner) RegisterMCP(srv *mcp.Server) {
	r.registerAuditTool(srv)
	r.registerGetRunTool(srv)
	r.registerListRunsTool(srv)
}

// ServeMCP runs an MCP server over stdio until ctx is cancelled.
func (r *Runner) ServeMCP(ctx context.Context) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "legib", Version: "0.1.0"}, nil)
	r.RegisterMCP(srv)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// registerTool adapts an endpoint func to an MCP tool handler: decode
// arguments, call, marshal the response as text content.
func registerTool[Req any](srv *mcp.Server, tool *mcp.Tool, endpoint func(context.Context, *Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args Req
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		resp, err := endpoint(ctx, &args)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// --- legibility_audit ---

type auditRequest struct {
	URL string `json:"url"`
}

func (r *Runner) registerAuditTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "legibility_audit",
		Description: "Audit a page's mobile font-size legibility. Loads the URL in a headless browser emulating a mobile device and reports which style rules produce illegible text.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Absolute http(s) URL to audit"},
		}, []string{"url"}),
	}

	registerTool(srv, tool, func(ctx context.Context, req *auditRequest) (any, error) {
		if err := validateAuditURL(req.URL); err != nil {
			return nil, err
		}
		return r.AuditURL(ctx, req.URL)
	})
}

// --- legibility_get_run ---

type getRunRequest struct {
	RunID string `json:"run_id"`
}

func (r *Runner) registerGetRunTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "legibility_get_run",
		Description: "Get a persisted legibility audit run by ID, including the full report table.",
		InputSchema: inputSchema(map[string]any{
			"run_id": map[string]any{"type": "string", "description": "Run ID to retrieve"},
		}, []string{"run_id"}),
	}

	registerTool(srv, tool, func(ctx context.Context, req *getRunRequest) (any, error) {
		run, err := r.GetRun(ctx, req.RunID)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return map[string]string{"error": "run not found"}, nil
		}
		return run, nil
	})
}

// --- legibility_runs ---

type listRunsRequest struct {
	Limit int `json:"limit,omitempty"`
}

func (r *Runner) registerListRunsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "legibility_runs",
		Description: "List recent legibility audit runs, newest first.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max runs to return (default 50)"},
		}, nil),
	}

	registerTool(srv, tool, func(ctx context.Context, req *listRunsRequest) (any, error) {
		return r.ListRuns(ctx, req.Limit)
	})
}
