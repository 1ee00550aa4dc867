// Package mcpserver exposes the run-step handler and validator as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codex-k8s/runstep-agent/internal/runstep"
	"github.com/codex-k8s/runstep-agent/internal/schema"
	contract "github.com/codex-k8s/runstep-agent/pkg/runstep"
)

// Tool names.
const (
	ToolRunStep          = "run_step"
	ToolValidateResponse = "validate_response"
)

// SchemaURIPrefix prefixes the URI of each contract schema resource.
const SchemaURIPrefix = "runstep://schemas/"

// ValidateInput wraps the document to validate.
type ValidateInput struct {
	// Response is any JSON value claimed to be a run-step response.
	Response any `json:"response"`
}

// Builder constructs the MCP server.
type Builder struct {
	// Name and Version identify the implementation to clients.
	Name    string
	Version string
	// Logger is used for structured logging.
	Logger *slog.Logger
}

// Build creates an MCP server with the run-step tools and schema resources.
func (b Builder) Build() (*mcp.Server, error) {
	name := b.Name
	if name == "" {
		name = "runstep-agent"
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: b.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolRunStep,
		Title:       "Run step",
		Description: "Pick the next action for a run-step request. Selects the first offered tool, or say/ok when none is offered.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}, b.runStep)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolValidateResponse,
		Title:       "Validate response",
		Description: "Check that a JSON value is a well-formed run-step response.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}, b.validateResponse)

	docs, err := schema.Documents()
	if err != nil {
		return nil, err
	}
	for _, docName := range schema.Names() {
		raw, err := json.Marshal(docs[docName])
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", docName, err)
		}
		uri := SchemaURIPrefix + docName
		text := string(raw)
		server.AddResource(&mcp.Resource{
			Name:        docName,
			URI:         uri,
			Description: "JSON Schema for " + docName,
			MIMEType:    "application/schema+json",
		}, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: uri, MIMEType: "application/schema+json", Text: text},
				},
			}, nil
		})
	}

	return server, nil
}

func (b Builder) runStep(_ context.Context, _ *mcp.CallToolRequest, input contract.Request) (*mcp.CallToolResult, contract.Response, error) {
	resp := runstep.FromRequest(input)
	if b.Logger != nil {
		b.Logger.Debug("tool call", "tool", ToolRunStep, "tools_offered", len(input.Tools), "selected", resp.Action.Tool)
	}
	return nil, resp, nil
}

func (b Builder) validateResponse(_ context.Context, _ *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, contract.ValidationResult, error) {
	result := contract.ValidateResponse(input.Response)
	if b.Logger != nil {
		b.Logger.Debug("tool call", "tool", ToolValidateResponse, "valid", result.Valid, "errors", len(result.Errors))
	}
	return nil, result, nil
}

// HTTPHandler serves server over the streamable HTTP transport. Each request
// is independent so that every POST can be authorized on its own.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})
}

// RunStdio serves server on stdin and stdout until ctx is done.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
