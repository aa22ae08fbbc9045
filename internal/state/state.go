// Package state persists the workflow session record between process
// invocations.
//
// The adapter holds no memory across turns: the JSON state file is the sole
// source of truth. Each invocation loads the record, mutates it through the
// methods on [State], and writes it back atomically. A missing file yields a
// fresh default session; [Store.Reset] deletes the record to start over.
//
// Key types:
//   - [State] - the session record (accumulated data, step progress, history)
//   - [Store] - file-backed load/save/reset with single-writer locking
package state

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// Status is the progress marker for a single workflow step.
type Status string

const (
	// StatusInProgress marks the step currently being worked.
	StatusInProgress Status = "in_progress"

	// StatusCompleted marks a finished step.
	StatusCompleted Status = "completed"
)

// SessionIDKey is the state data key carrying the session identifier.
//
// The identifier is seeded once when a session is created and travels inside
// the state mapping so every step and tool call can reference it without a
// process-wide global.
const SessionIDKey = "session_id"

// HistoryEntry is one audit-trail record: the turn counter value at the time
// the result was recorded (pre-increment) and the result itself.
type HistoryEntry struct {
	Turn   int            `json:"turn"`
	Result map[string]any `json:"result"`
}

// StepStatusEntry is one row of the ordered per-step status summary.
type StepStatusEntry struct {
	Step   int
	Status Status
}

// State is the persisted session record.
//
// Mutate it only through [State.Merge], [State.AdvanceStep], and
// [State.RecordResult] so the invariants hold: exactly one step is
// in_progress until the workflow is exhausted, history is append-only, and
// the turn counter increments once per recorded result.
type State struct {
	// Data is the accumulated key/value workflow state. Later writes to a
	// key overwrite earlier ones.
	Data map[string]any `json:"data"`

	// CurrentStep is the 1-based index of the active step. It may exceed
	// the step count once the workflow is exhausted.
	CurrentStep int `json:"current_step"`

	// StepStatuses maps step index (as a string, for JSON stability) to
	// its progress marker.
	StepStatuses map[string]Status `json:"step_statuses"`

	// Turn counts recorded results since session start.
	Turn int `json:"turn"`

	// LastResult is the most recently recorded result, nil before the
	// first turn.
	LastResult map[string]any `json:"last_result"`

	// History is the append-only audit trail of every recorded result.
	History []HistoryEntry `json:"history"`
}

// New returns a default session record positioned at step 1.
func New() *State {
	return &State{
		Data:         map[string]any{},
		CurrentStep:  1,
		StepStatuses: map[string]Status{"1": StatusInProgress},
		Turn:         0,
	}
}

// NewSession returns a default session record seeded with a fresh session id.
func NewSession() *State {
	s := New()
	s.Data[SessionIDKey] = uuid.NewString()
	return s
}

// Merge shallow-merges updates into the accumulated data. Later keys
// overwrite earlier ones.
func (s *State) Merge(updates map[string]any) {
	for k, v := range updates {
		s.Data[k] = v
	}
}

// AdvanceStep marks the current step completed and moves to the next one,
// which becomes in_progress.
func (s *State) AdvanceStep() {
	s.StepStatuses[strconv.Itoa(s.CurrentStep)] = StatusCompleted
	s.CurrentStep++
	s.StepStatuses[strconv.Itoa(s.CurrentStep)] = StatusInProgress
}

// RecordResult stores result as the most recent outcome and appends it to
// the history.
//
// History entries carry the pre-increment turn number: the first recorded
// result of a session is logged as turn 0 while the counter reported to the
// driver afterwards reads 1.
func (s *State) RecordResult(result map[string]any) {
	s.LastResult = result
	s.History = append(s.History, HistoryEntry{Turn: s.Turn, Result: result})
	s.Turn++
}

// StepHistory returns the per-step status summary ordered by step number
// ascending.
func (s *State) StepHistory() []StepStatusEntry {
	entries := make([]StepStatusEntry, 0, len(s.StepStatuses))
	for key, status := range s.StepStatuses {
		num, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		entries = append(entries, StepStatusEntry{Step: num, Status: status})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Step < entries[j].Step
	})
	return entries
}
