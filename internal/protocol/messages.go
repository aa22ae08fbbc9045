// Package protocol defines the wire contract between the adapter and the
// driving LLM.
//
// The adapter writes exactly one [ContextMessage] per invocation to stdout as
// a single line of JSON. The LLM replies (on the next invocation's stdin)
// with one of five inbound message kinds, parsed by [ParseInput] into a typed
// value. Malformed input is reported via [ProtocolError] so the caller can
// surface it in-band rather than crashing the turn.
//
// Key types:
//   - [ToolCallRequest], [LlmActionReport], [UserMessage],
//     [StepCompleteSignal], [WorkflowCompleteSignal] - inbound messages
//   - [ContextMessage] - the outbound context summary
//   - [ProtocolError] - validation failure for inbound text
package protocol

// Inbound message type tags accepted by [ParseInput].
const (
	TypeToolCall         = "tool_call"
	TypeLlmAction        = "llm_action"
	TypeMessageUser      = "message_user"
	TypeStepComplete     = "step_complete"
	TypeWorkflowComplete = "workflow_complete"
)

// TypeContext tags the outbound context message.
const TypeContext = "context"

// Message is the union of all inbound message kinds.
//
// Concrete types are [ToolCallRequest], [LlmActionReport], [UserMessage],
// [StepCompleteSignal], and [WorkflowCompleteSignal]. Callers switch on the
// concrete type after [ParseInput].
type Message interface {
	// MessageType returns the wire type tag of the message.
	MessageType() string
}

// ToolCallRequest asks the adapter to execute a registered local tool.
type ToolCallRequest struct {
	// Tool is the registered tool name. Required.
	Tool string

	// Params are the call parameters keyed by parameter name.
	// Defaults to an empty map when absent.
	Params map[string]any
}

// LlmActionReport reports the outcome of an action the LLM performed itself
// (web search, file read, creative writing) rather than via a local tool.
type LlmActionReport struct {
	// Action is the name of the capability exercised. Required.
	Action string

	// StateUpdates are key/value pairs to merge into the session state.
	StateUpdates map[string]any

	// Description is optional free text about what was done.
	Description string
}

// UserMessage asks the adapter to surface text to the human operator.
type UserMessage struct {
	// Message is the text to display. May be empty.
	Message string
}

// StepCompleteSignal declares the current workflow step finished and
// requests advancement to the next one.
type StepCompleteSignal struct {
	// StateUpdates are merged into the session state before advancing.
	StateUpdates map[string]any
}

// WorkflowCompleteSignal declares the whole workflow finished.
type WorkflowCompleteSignal struct {
	// Summary is optional free text describing the overall outcome.
	Summary string
}

func (ToolCallRequest) MessageType() string        { return TypeToolCall }
func (LlmActionReport) MessageType() string        { return TypeLlmAction }
func (UserMessage) MessageType() string            { return TypeMessageUser }
func (StepCompleteSignal) MessageType() string     { return TypeStepComplete }
func (WorkflowCompleteSignal) MessageType() string { return TypeWorkflowComplete }

// StepInfo describes the active workflow step inside a [ContextMessage].
type StepInfo struct {
	Number           int          `json:"number"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Actions          []ActionInfo `json:"actions"`
	Requirements     []string     `json:"requirements"`
	PromptTemplate   string       `json:"prompt_template,omitempty"`
	PromptGuidelines []string     `json:"prompt_guidelines"`
}

// ActionInfo describes one action of the active step.
//
// Tool is empty for reasoning-only actions; RequiresLlm marks actions the
// driving LLM must perform itself.
type ActionInfo struct {
	Name           string         `json:"name"`
	Tool           string         `json:"tool,omitempty"`
	RequiresLlm    bool           `json:"requires_llm"`
	ParamsTemplate map[string]any `json:"params_template"`
	Description    string         `json:"description"`
}

// ToolInfo describes one registered tool inside a [ContextMessage].
type ToolInfo struct {
	Name   string          `json:"name"`
	Params []ToolParamInfo `json:"params"`
}

// ToolParamInfo describes one declared parameter of a tool.
type ToolParamInfo struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Default  any    `json:"default"`
}

// StepStatus is one entry of the per-step status summary, ordered by step
// number ascending.
type StepStatus struct {
	Step   int    `json:"step"`
	Status string `json:"status"`
}

// ContextMessage is the adapter's outbound summary of the session after a
// turn: the active step (nil once the workflow is exhausted), the available
// tools, the LLM-side capability names, the accumulated state, the per-step
// status summary, the turn counter, and the last recorded result (nil before
// the first one).
type ContextMessage struct {
	Step            *StepInfo
	Tools           []ToolInfo
	LlmCapabilities []string
	State           map[string]any
	StepHistory     []StepStatus
	Turn            int
	LastResult      map[string]any
}
