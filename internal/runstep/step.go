// Package runstep derives the default action for a run-step request.
package runstep

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	contract "github.com/codex-k8s/runstep-agent/pkg/runstep"
)

// ErrMalformedRequest is returned when the body is not a JSON object.
var ErrMalformedRequest = errors.New("malformed run-step request")

// envelope is the part of the request body used for tool selection. Tools is
// kept raw so that shape checks happen here rather than in encoding/json.
type envelope struct {
	Tools json.RawMessage `json:"tools"`
}

// Step parses body and returns the default action for it.
func Step(body []byte) (contract.Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return contract.Response{}, fmt.Errorf("%w: body must be a JSON object", ErrMalformedRequest)
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return contract.Response{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return Respond(SelectTool(env.Tools)), nil
}

// FromRequest is Step for an already decoded request.
func FromRequest(req contract.Request) contract.Response {
	if len(req.Tools) == 0 {
		return Respond(contract.DefaultTool)
	}
	return Respond(req.Tools[0].Name)
}

// SelectTool returns the name of the first tool descriptor, or the default
// tool when tools is absent, empty, not an array, or its first element is not
// an object with a name key.
func SelectTool(tools json.RawMessage) string {
	if len(tools) == 0 {
		return contract.DefaultTool
	}
	var items []json.RawMessage
	if err := json.Unmarshal(tools, &items); err != nil || len(items) == 0 {
		return contract.DefaultTool
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil || first == nil {
		return contract.DefaultTool
	}
	name, ok := first["name"]
	if !ok {
		return contract.DefaultTool
	}
	return coerceName(name)
}

// Respond builds the response for tool.
func Respond(tool string) contract.Response {
	return contract.Response{
		Thought: contract.DefaultThought,
		Action: contract.Action{
			Tool: tool,
			Args: ArgsFor(tool),
		},
	}
}

// ArgsFor returns the arguments sent with tool.
func ArgsFor(tool string) map[string]any {
	if tool == contract.DefaultTool {
		return map[string]any{"message": contract.DefaultMessage}
	}
	return map[string]any{}
}

// coerceName renders a JSON value as a tool name: strings verbatim, anything
// else as its compact JSON text.
func coerceName(raw json.RawMessage) string {
	var s *string
	if err := json.Unmarshal(raw, &s); err == nil && s != nil {
		return *s
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, raw); err != nil {
		return string(raw)
	}
	return compacted.String()
}
