package turn

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertok/internal/protocol"
	"papertok/internal/state"
	"papertok/internal/workflow"
)

// memoryStore is an in-memory StateStore for processor tests.
type memoryStore struct {
	state     *state.State
	loadErr   error
	saveErr   error
	lockErr   error
	saveCount int
	locked    bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{state: state.New()}
}

func (m *memoryStore) Load() (*state.State, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.state, nil
}

func (m *memoryStore) Save(s *state.State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = s
	m.saveCount++
	return nil
}

func (m *memoryStore) Lock() (func(), error) {
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	m.locked = true
	return func() { m.locked = false }, nil
}

// fakeDispatcher is a canned ToolDispatcher for processor tests.
type fakeDispatcher struct {
	result      map[string]any
	autoUpdates map[string]any
	calls       []string
	lastParams  map[string]any
}

func (f *fakeDispatcher) Describe() []protocol.ToolInfo {
	return []protocol.ToolInfo{{Name: "download_paper", Params: []protocol.ToolParamInfo{}}}
}

func (f *fakeDispatcher) Execute(_ context.Context, name string, params map[string]any) map[string]any {
	f.calls = append(f.calls, name)
	f.lastParams = params
	return f.result
}

func (f *fakeDispatcher) AutoStateUpdates(name string, result map[string]any) map[string]any {
	if f.autoUpdates == nil {
		return map[string]any{}
	}
	return f.autoUpdates
}

// recordingNotifier captures NotifyUser calls.
type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) NotifyUser(message string) {
	n.messages = append(n.messages, message)
}

func twoStepWorkflow() []workflow.Step {
	return []workflow.Step{
		{Number: 1, Name: "find_paper", Actions: []workflow.Action{{Name: "search", RequiresLlm: true}}},
		{Number: 2, Name: "download_paper", Actions: []workflow.Action{{Name: "download_paper", Tool: "download_paper"}}},
	}
}

func newTestProcessor(store *memoryStore, dispatcher *fakeDispatcher) (*Processor, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewProcessor(store, dispatcher, twoStepWorkflow(), notifier), notifier
}

func decodeContext(t *testing.T, line string) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &payload))
	require.Equal(t, "context", payload["type"])
	return payload
}

func TestProcessTurn_FirstTurnNoInput(t *testing.T) {
	store := newMemoryStore()
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(), "")

	require.NoError(t, err)
	payload := decodeContext(t, line)

	assert.Equal(t, float64(0), payload["turn"])
	assert.Nil(t, payload["last_result"])

	step := payload["step"].(map[string]any)
	assert.Equal(t, "find_paper", step["name"])

	history := payload["step_history"].([]any)
	require.Len(t, history, 1)
	first := history[0].(map[string]any)
	assert.Equal(t, float64(1), first["step"])
	assert.Equal(t, "in_progress", first["status"])

	assert.Equal(t, 1, store.saveCount)
	assert.False(t, store.locked)
}

func TestProcessTurn_ToolCall(t *testing.T) {
	store := newMemoryStore()
	dispatcher := &fakeDispatcher{
		result:      map[string]any{"success": true, "file_path": "/r/abc/paper.pdf"},
		autoUpdates: map[string]any{"paper_path": "/r/abc/paper.pdf"},
	}
	proc, _ := newTestProcessor(store, dispatcher)

	line, err := proc.ProcessTurn(context.Background(),
		`{"type":"tool_call","tool":"download_paper","params":{"url":"https://x/p.pdf"}}`)

	require.NoError(t, err)
	assert.Equal(t, []string{"download_paper"}, dispatcher.calls)
	assert.Equal(t, "https://x/p.pdf", dispatcher.lastParams["url"])

	payload := decodeContext(t, line)
	assert.Equal(t, float64(1), payload["turn"])

	last := payload["last_result"].(map[string]any)
	assert.Equal(t, "tool_result", last["type"])
	assert.Equal(t, "download_paper", last["tool"])
	result := last["result"].(map[string]any)
	assert.Equal(t, true, result["success"])

	st := payload["state"].(map[string]any)
	assert.Equal(t, "/r/abc/paper.pdf", st["paper_path"])

	require.Len(t, store.state.History, 1)
	assert.Equal(t, 0, store.state.History[0].Turn)
}

func TestProcessTurn_ToolCall_NoAutoUpdatesOnFailure(t *testing.T) {
	store := newMemoryStore()
	dispatcher := &fakeDispatcher{
		result: map[string]any{"success": false, "error": "boom"},
	}
	proc, _ := newTestProcessor(store, dispatcher)

	line, err := proc.ProcessTurn(context.Background(),
		`{"type":"tool_call","tool":"download_paper"}`)

	require.NoError(t, err)
	payload := decodeContext(t, line)
	st := payload["state"].(map[string]any)
	assert.NotContains(t, st, "paper_path")
}

func TestProcessTurn_LlmAction(t *testing.T) {
	store := newMemoryStore()
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(),
		`{"type":"llm_action","action":"pick_paper","state_updates":{"paper_title":"Quantum Frogs"}}`)

	require.NoError(t, err)
	payload := decodeContext(t, line)

	last := payload["last_result"].(map[string]any)
	assert.Equal(t, "llm_action_ack", last["type"])
	assert.Equal(t, "pick_paper", last["action"])
	assert.Equal(t, true, last["acknowledged"])

	st := payload["state"].(map[string]any)
	assert.Equal(t, "Quantum Frogs", st["paper_title"])
}

func TestProcessTurn_MessageUser(t *testing.T) {
	store := newMemoryStore()
	proc, notifier := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(),
		`{"type":"message_user","message":"video ready"}`)

	require.NoError(t, err)
	assert.Equal(t, []string{"video ready"}, notifier.messages)

	payload := decodeContext(t, line)
	last := payload["last_result"].(map[string]any)
	assert.Equal(t, "message_delivered", last["type"])
	assert.Equal(t, true, last["acknowledged"])
}

func TestProcessTurn_StepComplete(t *testing.T) {
	store := newMemoryStore()
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(),
		`{"type":"step_complete","state_updates":{"paper_url":"https://x/p.pdf"}}`)

	require.NoError(t, err)
	payload := decodeContext(t, line)

	last := payload["last_result"].(map[string]any)
	assert.Equal(t, "step_advanced", last["type"])
	assert.Equal(t, float64(2), last["new_step"])
	assert.Equal(t, "download_paper", last["new_step_name"])

	step := payload["step"].(map[string]any)
	assert.Equal(t, "download_paper", step["name"])

	st := payload["state"].(map[string]any)
	assert.Equal(t, "https://x/p.pdf", st["paper_url"])

	history := payload["step_history"].([]any)
	require.Len(t, history, 2)
	assert.Equal(t, "completed", history[0].(map[string]any)["status"])
	assert.Equal(t, "in_progress", history[1].(map[string]any)["status"])
}

func TestProcessTurn_StepComplete_ExhaustsWorkflow(t *testing.T) {
	store := newMemoryStore()
	store.state.CurrentStep = 2
	store.state.StepStatuses = map[string]state.Status{
		"1": state.StatusCompleted,
		"2": state.StatusInProgress,
	}
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(), `{"type":"step_complete"}`)

	require.NoError(t, err)
	payload := decodeContext(t, line)

	last := payload["last_result"].(map[string]any)
	assert.Equal(t, float64(3), last["new_step"])
	assert.Equal(t, "DONE", last["new_step_name"])

	// Past the final step there is no active step to describe.
	assert.Nil(t, payload["step"])
}

func TestProcessTurn_WorkflowComplete(t *testing.T) {
	store := newMemoryStore()
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(),
		`{"type":"workflow_complete","summary":"all done"}`)

	require.NoError(t, err)
	payload := decodeContext(t, line)

	last := payload["last_result"].(map[string]any)
	assert.Equal(t, "workflow_complete", last["type"])
	assert.Equal(t, "all done", last["summary"])
	assert.Equal(t, 1, store.saveCount)
}

func TestProcessTurn_MalformedInputReportedInBand(t *testing.T) {
	store := newMemoryStore()
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(), `{broken`)

	require.NoError(t, err)
	payload := decodeContext(t, line)

	last := payload["last_result"].(map[string]any)
	assert.Equal(t, "error", last["type"])
	assert.Contains(t, last["error"], "invalid JSON")
	assert.Contains(t, last["hint"], "tool_call")

	// The failed turn still counts and persists.
	assert.Equal(t, float64(1), payload["turn"])
	assert.Equal(t, 1, store.saveCount)
}

func TestProcessTurn_UnknownTypeReportedInBand(t *testing.T) {
	store := newMemoryStore()
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(), `{"type":"dance"}`)

	require.NoError(t, err)
	payload := decodeContext(t, line)
	last := payload["last_result"].(map[string]any)
	assert.Equal(t, "error", last["type"])
	assert.Contains(t, last["error"], "unknown message type")
}

func TestProcessTurn_LockFailure(t *testing.T) {
	store := newMemoryStore()
	store.lockErr = errors.New("state file is locked by another invocation")
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(), "")

	assert.Empty(t, line)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked by another invocation")
	assert.Equal(t, 0, store.saveCount)
}

func TestProcessTurn_LoadFailure(t *testing.T) {
	store := newMemoryStore()
	store.loadErr = errors.New("failed to parse state file")
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	_, err := proc.ProcessTurn(context.Background(), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse state file")
}

func TestProcessTurn_SaveFailureIsFatal(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("disk full")
	proc, _ := newTestProcessor(store, &fakeDispatcher{})

	line, err := proc.ProcessTurn(context.Background(), "")

	assert.Empty(t, line)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist session state")
}

func TestProcessTurn_FullScenario(t *testing.T) {
	// A short session against a 2-step workflow: observe, call a tool,
	// advance, finish.
	store := newMemoryStore()
	dispatcher := &fakeDispatcher{
		result:      map[string]any{"success": true, "file_path": "/r/abc/paper.pdf"},
		autoUpdates: map[string]any{"paper_path": "/r/abc/paper.pdf"},
	}
	proc, _ := newTestProcessor(store, dispatcher)
	ctx := context.Background()

	line, err := proc.ProcessTurn(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, float64(0), decodeContext(t, line)["turn"])

	line, err = proc.ProcessTurn(ctx, `{"type":"llm_action","action":"search","state_updates":{"paper_url":"https://x/p.pdf"}}`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), decodeContext(t, line)["turn"])

	line, err = proc.ProcessTurn(ctx, `{"type":"step_complete"}`)
	require.NoError(t, err)
	payload := decodeContext(t, line)
	assert.Equal(t, "download_paper", payload["step"].(map[string]any)["name"])

	line, err = proc.ProcessTurn(ctx, `{"type":"tool_call","tool":"download_paper","params":{"url":"https://x/p.pdf","video_uuid":"abc"}}`)
	require.NoError(t, err)
	payload = decodeContext(t, line)
	assert.Equal(t, "/r/abc/paper.pdf", payload["state"].(map[string]any)["paper_path"])

	line, err = proc.ProcessTurn(ctx, `{"type":"workflow_complete","summary":"rendered"}`)
	require.NoError(t, err)
	payload = decodeContext(t, line)
	assert.Equal(t, float64(4), payload["turn"])

	require.Len(t, store.state.History, 4)
	for i, entry := range store.state.History {
		assert.Equal(t, i, entry.Turn)
	}
}
