package invoke

import (
	"github.com/google/uuid"

	contract "github.com/codex-k8s/runstep-agent/pkg/runstep"
)

// Validation conversation sent to agents under test.
const (
	ValidationSystemPrompt = "You are an agent being validated by Kindred"
	ValidationUserPrompt   = "Reply using the provided say tool"
	ValidationObservation  = "Validation ping"
	validationRunPrefix    = "validate_"
)

// DefaultSayTool is offered when a validation request has no usable tools.
func DefaultSayTool() contract.ToolDescriptor {
	return contract.ToolDescriptor{
		Name: contract.DefaultTool,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
			"required": []any{"message"},
		},
	}
}

// BuildValidationPayload builds the probe request used to check that an
// agent answers run-step calls. Tools fall back to DefaultSayTool when empty
// or when any descriptor lacks a name. An empty agentID gets a random one.
func BuildValidationPayload(tools []contract.ToolDescriptor, agentID string) contract.Request {
	if agentID == "" {
		agentID = uuid.NewString()
	}
	return contract.Request{
		History: []contract.HistoryMessage{
			{Role: "system", Content: ValidationSystemPrompt},
			{Role: "user", Content: ValidationUserPrompt},
		},
		Observation: &contract.Observation{
			Text:   ValidationObservation,
			Errors: []string{},
		},
		Tools: usableTools(tools),
		Meta: &contract.Meta{
			RunID:   validationRunPrefix + agentID,
			StepIdx: 0,
		},
	}
}

func usableTools(tools []contract.ToolDescriptor) []contract.ToolDescriptor {
	if len(tools) == 0 {
		return []contract.ToolDescriptor{DefaultSayTool()}
	}
	for _, tool := range tools {
		if tool.Name == "" {
			return []contract.ToolDescriptor{DefaultSayTool()}
		}
	}
	return append([]contract.ToolDescriptor(nil), tools...)
}
