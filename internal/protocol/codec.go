package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolError reports inbound text that could not be parsed into a valid
// [Message]: invalid JSON, a non-object payload, a missing or unknown type
// tag, or a kind-specific field violation.
//
// Protocol errors are recoverable: the turn processor reports them in-band
// as an error result instead of failing the invocation.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return e.Reason
}

func protocolErrorf(format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// ParseInput parses one line of JSON from the LLM into a typed [Message].
//
// Unknown fields are ignored. Optional fields default to an empty map or
// string when absent. Returns a [*ProtocolError] for any input that does not
// satisfy the wire contract; never panics.
func ParseInput(raw string) (Message, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, protocolErrorf("invalid JSON: %v", err)
	}
	if data == nil {
		return nil, protocolErrorf("input must be a JSON object")
	}

	msgType, _ := data["type"].(string)
	if msgType == "" {
		return nil, protocolErrorf("missing 'type' field")
	}

	switch msgType {
	case TypeToolCall:
		tool, _ := data["tool"].(string)
		if tool == "" {
			return nil, protocolErrorf("tool_call requires 'tool' field")
		}
		params := map[string]any{}
		if raw, ok := data["params"]; ok && raw != nil {
			obj, ok := raw.(map[string]any)
			if !ok {
				return nil, protocolErrorf("'params' must be an object")
			}
			params = obj
		}
		return ToolCallRequest{Tool: tool, Params: params}, nil

	case TypeLlmAction:
		action, _ := data["action"].(string)
		if action == "" {
			return nil, protocolErrorf("llm_action requires 'action' field")
		}
		description, _ := data["description"].(string)
		return LlmActionReport{
			Action:       action,
			StateUpdates: objectField(data, "state_updates"),
			Description:  description,
		}, nil

	case TypeMessageUser:
		message, _ := data["message"].(string)
		return UserMessage{Message: message}, nil

	case TypeStepComplete:
		return StepCompleteSignal{StateUpdates: objectField(data, "state_updates")}, nil

	case TypeWorkflowComplete:
		summary, _ := data["summary"].(string)
		return WorkflowCompleteSignal{Summary: summary}, nil

	default:
		return nil, protocolErrorf(
			"unknown message type %q. Expected: tool_call, llm_action, message_user, step_complete, workflow_complete",
			msgType)
	}
}

// objectField extracts a JSON object field, defaulting to an empty map when
// absent or not an object.
func objectField(data map[string]any, key string) map[string]any {
	if obj, ok := data[key].(map[string]any); ok {
		return obj
	}
	return map[string]any{}
}

// contextPayload is the JSON shape of an outbound context message.
type contextPayload struct {
	Type            string         `json:"type"`
	Step            *StepInfo      `json:"step"`
	Tools           []ToolInfo     `json:"tools"`
	LlmCapabilities []string       `json:"llm_capabilities"`
	State           map[string]any `json:"state"`
	StepHistory     []StepStatus   `json:"step_history"`
	Turn            int            `json:"turn"`
	LastResult      map[string]any `json:"last_result"`
}

// SerializeContext renders a [ContextMessage] as a single-line JSON string
// tagged "type":"context".
//
// Serialization is total for well-formed contexts: nil slices and maps are
// normalized to empty collections so the wire shape is stable, and the step
// and last_result fields serialize as JSON null when absent.
func SerializeContext(ctx ContextMessage) string {
	payload := contextPayload{
		Type:            TypeContext,
		Step:            ctx.Step,
		Tools:           ctx.Tools,
		LlmCapabilities: ctx.LlmCapabilities,
		State:           ctx.State,
		StepHistory:     ctx.StepHistory,
		Turn:            ctx.Turn,
		LastResult:      ctx.LastResult,
	}
	if payload.Tools == nil {
		payload.Tools = []ToolInfo{}
	}
	if payload.LlmCapabilities == nil {
		payload.LlmCapabilities = []string{}
	}
	if payload.State == nil {
		payload.State = map[string]any{}
	}
	if payload.StepHistory == nil {
		payload.StepHistory = []StepStatus{}
	}

	out, err := json.Marshal(payload)
	if err != nil {
		// Only reachable with non-serializable values smuggled into the
		// state map; report the failure in the same wire shape.
		fallback := map[string]any{
			"type":  TypeContext,
			"error": fmt.Sprintf("context serialization failed: %v", err),
		}
		out, _ = json.Marshal(fallback)
	}
	return string(out)
}
