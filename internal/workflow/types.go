// Package workflow loads the declarative workflow document that
// parameterizes the turn state machine.
//
// The document is a YAML file with an ordered `steps` list. Each step names
// its actions: local tool calls the adapter can execute, or reasoning tasks
// the driving LLM must perform itself. Steps missing their mandatory ordinal
// or name abort the whole parse; a partial workflow is never returned.
//
// Key types:
//   - [Step] - one parsed workflow stage
//   - [Action] - one unit of work inside a step
package workflow

// Action is a single unit of work within a workflow step.
//
// An action is either a local tool call (Tool is non-empty and RequiresLlm
// is false) or a reasoning task for the driving LLM (RequiresLlm is true).
type Action struct {
	// Name identifies the action within its step.
	Name string

	// Tool is the registered tool to call, or empty for reasoning actions.
	Tool string

	// RequiresLlm marks actions the driving LLM performs itself rather
	// than through the adapter's tool registry.
	RequiresLlm bool

	// ParamsTemplate maps parameter names to templated values the LLM
	// should fill in when issuing the corresponding tool call.
	ParamsTemplate map[string]any

	// Description is free text explaining the action.
	Description string
}

// Step is one stage of the workflow in document order.
type Step struct {
	// Number is the 1-based step ordinal from the document.
	Number int

	// Name is the step identifier (e.g. "download_paper").
	Name string

	// Description is free text explaining the step.
	Description string

	// Actions are the units of work for this step, in declaration order.
	Actions []Action

	// Requirements list preconditions the LLM should verify before
	// declaring the step complete.
	Requirements []string

	// PromptTemplate is an optional template for content the LLM must
	// produce during this step.
	PromptTemplate string

	// PromptGuidelines are optional style constraints for PromptTemplate.
	PromptGuidelines []string
}
