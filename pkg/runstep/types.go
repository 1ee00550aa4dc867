// Package runstep defines the run-step wire contract shared by agents and
// the callers that drive them.
package runstep

// Default action values returned when an agent has nothing better to do.
const (
	DefaultThought = "Choosing a safe default action."
	DefaultTool    = "say"
	DefaultMessage = "ok"
)

// Request is the JSON body POSTed to a run-step endpoint.
type Request struct {
	// History is the conversation so far.
	History []HistoryMessage `json:"history,omitempty"`
	// Observation describes what the agent currently sees.
	Observation *Observation `json:"observation,omitempty"`
	// Tools lists the tools the agent may pick from, in preference order.
	Tools []ToolDescriptor `json:"tools,omitempty"`
	// Meta identifies the run and step.
	Meta *Meta `json:"meta,omitempty"`
}

// HistoryMessage is a single chat turn.
type HistoryMessage struct {
	// Role is system, user or assistant.
	Role string `json:"role"`
	// Content is the message text.
	Content string `json:"content"`
}

// Observation carries the environment state for a step.
type Observation struct {
	// Text is a plain-text rendering of the environment.
	Text string `json:"text"`
	// DOM is an optional serialized document.
	DOM *string `json:"dom"`
	// ImageB64 is an optional base64 screenshot.
	ImageB64 *string `json:"image_b64"`
	// Errors lists errors raised by the previous action.
	Errors []string `json:"errors"`
}

// ToolDescriptor names a tool and optionally its argument schema.
type ToolDescriptor struct {
	// Name is the tool identifier.
	Name string `json:"name"`
	// Description explains the tool.
	Description string `json:"description,omitempty"`
	// Schema is a JSON Schema for the tool arguments.
	Schema map[string]any `json:"schema,omitempty"`
}

// Meta identifies a step within a run.
type Meta struct {
	// RunID is the run identifier.
	RunID string `json:"run_id"`
	// StepIdx is the zero-based step index.
	StepIdx int `json:"step_idx"`
}

// Action is the tool call chosen by the agent.
type Action struct {
	// Tool is the selected tool name.
	Tool string `json:"tool"`
	// Args are the tool arguments.
	Args map[string]any `json:"args"`
}

// Response is the JSON body returned by a run-step endpoint.
type Response struct {
	// Thought is a short non-empty rationale.
	Thought string `json:"thought"`
	// Action is the chosen action.
	Action Action `json:"action"`
}

// ValidationResult reports whether a response matches the contract.
type ValidationResult struct {
	// Valid is true when Errors is empty.
	Valid bool `json:"valid"`
	// Errors lists problems in the order they were found.
	Errors []string `json:"errors"`
}
