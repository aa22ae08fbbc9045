// Package turn orchestrates one protocol turn per process invocation.
//
// The [Processor] is the state machine at the heart of the adapter: it loads
// the persisted session, applies at most one inbound message (dispatching
// tool calls, acknowledging LLM actions, delivering user messages, advancing
// or finishing the workflow), persists the mutated session, and emits the
// context message describing what to do next. It keeps no memory between
// invocations; the state file is the sole source of truth.
//
// Dependencies are injected through small interfaces so tests can run turns
// against in-memory fakes.
package turn

import (
	"context"
	"errors"
	"fmt"

	"papertok/internal/protocol"
	"papertok/internal/state"
	"papertok/internal/workflow"
)

// LlmCapabilities names the reasoning-side abilities advertised in every
// context message. These are performed by the driving LLM itself and
// reported back via llm_action messages.
var LlmCapabilities = []string{
	"web_search",
	"read_file",
	"message_user",
	"generate_uuid",
	"creative_writing",
}

// errorHint accompanies every in-band protocol error so the driver can
// self-correct.
const errorHint = "Respond with valid JSON. Types: tool_call, llm_action, message_user, step_complete, workflow_complete"

// ToolDispatcher executes local tool calls and describes the available
// tools. The [tools.Registry] type implements this interface.
type ToolDispatcher interface {
	Describe() []protocol.ToolInfo
	Execute(ctx context.Context, name string, params map[string]any) map[string]any
	AutoStateUpdates(name string, result map[string]any) map[string]any
}

// StateStore loads and persists the session record. The [state.Store] type
// implements this interface.
type StateStore interface {
	Load() (*state.State, error)
	Save(s *state.State) error
	Lock() (release func(), err error)
}

// UserNotifier surfaces a message to the human operator out of band, away
// from the protocol channel. The [output.Printer] type implements this
// interface.
type UserNotifier interface {
	NotifyUser(message string)
}

// Processor runs one turn of the adapter loop.
//
// Create with [NewProcessor] and call [Processor.ProcessTurn] exactly once
// per process invocation.
type Processor struct {
	store    StateStore
	registry ToolDispatcher
	steps    []workflow.Step
	notifier UserNotifier
}

// NewProcessor creates a [Processor] over the given collaborators. The steps
// are the parsed workflow document in step order.
func NewProcessor(store StateStore, registry ToolDispatcher, steps []workflow.Step, notifier UserNotifier) *Processor {
	return &Processor{
		store:    store,
		registry: registry,
		steps:    steps,
		notifier: notifier,
	}
}

// ProcessTurn handles one turn: load state, apply the inbound message (empty
// input means a first/observation turn with no message), persist, and return
// the serialized context message.
//
// Malformed input and tool failures are reported in-band and never fail the
// turn. Only state persistence problems return an error; a failed save is
// never reported as success.
func (p *Processor) ProcessTurn(ctx context.Context, input string) (string, error) {
	release, err := p.store.Lock()
	if err != nil {
		return "", err
	}
	defer release()

	st, err := p.store.Load()
	if err != nil {
		return "", err
	}

	if input != "" {
		msg, err := protocol.ParseInput(input)
		if err != nil {
			var protoErr *protocol.ProtocolError
			if !errors.As(err, &protoErr) {
				return "", err
			}
			st.RecordResult(map[string]any{
				"type":  "error",
				"error": protoErr.Error(),
				"hint":  errorHint,
			})
			return p.finish(st)
		}

		if done := p.dispatch(ctx, st, msg); done {
			return p.finish(st)
		}
	}

	return p.finish(st)
}

// dispatch applies one parsed message to the session. It returns true when
// the message ends the turn immediately (workflow completion).
func (p *Processor) dispatch(ctx context.Context, st *state.State, msg protocol.Message) bool {
	switch m := msg.(type) {
	case protocol.ToolCallRequest:
		result := p.registry.Execute(ctx, m.Tool, m.Params)
		st.RecordResult(map[string]any{
			"type":   "tool_result",
			"tool":   m.Tool,
			"result": result,
		})
		if updates := p.registry.AutoStateUpdates(m.Tool, result); len(updates) > 0 {
			st.Merge(updates)
		}

	case protocol.LlmActionReport:
		st.RecordResult(map[string]any{
			"type":         "llm_action_ack",
			"action":       m.Action,
			"acknowledged": true,
		})
		if len(m.StateUpdates) > 0 {
			st.Merge(m.StateUpdates)
		}

	case protocol.UserMessage:
		p.notifier.NotifyUser(m.Message)
		st.RecordResult(map[string]any{
			"type":         "message_delivered",
			"acknowledged": true,
		})

	case protocol.StepCompleteSignal:
		if len(m.StateUpdates) > 0 {
			st.Merge(m.StateUpdates)
		}
		st.AdvanceStep()
		newStepName := "DONE"
		if st.CurrentStep <= len(p.steps) {
			newStepName = p.steps[st.CurrentStep-1].Name
		}
		st.RecordResult(map[string]any{
			"type":          "step_advanced",
			"new_step":      st.CurrentStep,
			"new_step_name": newStepName,
		})

	case protocol.WorkflowCompleteSignal:
		st.RecordResult(map[string]any{
			"type":    "workflow_complete",
			"summary": m.Summary,
		})
		return true
	}

	return false
}

// finish persists the session and serializes the post-mutation context.
func (p *Processor) finish(st *state.State) (string, error) {
	if err := p.store.Save(st); err != nil {
		return "", fmt.Errorf("failed to persist session state: %w", err)
	}
	return protocol.SerializeContext(p.buildContext(st)), nil
}

// buildContext assembles the outbound context from the current session,
// workflow step, and tool metadata.
func (p *Processor) buildContext(st *state.State) protocol.ContextMessage {
	var stepInfo *protocol.StepInfo
	if st.CurrentStep >= 1 && st.CurrentStep <= len(p.steps) {
		info := stepToInfo(p.steps[st.CurrentStep-1])
		stepInfo = &info
	}

	history := st.StepHistory()
	stepHistory := make([]protocol.StepStatus, len(history))
	for i, entry := range history {
		stepHistory[i] = protocol.StepStatus{
			Step:   entry.Step,
			Status: string(entry.Status),
		}
	}

	return protocol.ContextMessage{
		Step:            stepInfo,
		Tools:           p.registry.Describe(),
		LlmCapabilities: LlmCapabilities,
		State:           st.Data,
		StepHistory:     stepHistory,
		Turn:            st.Turn,
		LastResult:      st.LastResult,
	}
}

func stepToInfo(step workflow.Step) protocol.StepInfo {
	actions := make([]protocol.ActionInfo, len(step.Actions))
	for i, a := range step.Actions {
		actions[i] = protocol.ActionInfo{
			Name:           a.Name,
			Tool:           a.Tool,
			RequiresLlm:    a.RequiresLlm,
			ParamsTemplate: a.ParamsTemplate,
			Description:    a.Description,
		}
	}
	return protocol.StepInfo{
		Number:           step.Number,
		Name:             step.Name,
		Description:      step.Description,
		Actions:          actions,
		Requirements:     step.Requirements,
		PromptTemplate:   step.PromptTemplate,
		PromptGuidelines: step.PromptGuidelines,
	}
}
