package workflow

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawDocument mirrors the YAML document layout.
type rawDocument struct {
	Steps []rawStep `yaml:"steps"`
}

type rawStep struct {
	Step             *int         `yaml:"step"`
	Name             string       `yaml:"name"`
	Description      string       `yaml:"description"`
	Actions          []rawAction  `yaml:"actions"`
	ToolCall         *rawToolCall `yaml:"tool_call"`
	Requirements     []string     `yaml:"requirements"`
	PromptTemplate   string       `yaml:"prompt_template"`
	PromptGuidelines []string     `yaml:"prompt_guidelines"`

	// Narrative fields a step may carry instead of an explicit action
	// list. The first one present becomes a synthesized reasoning action.
	Method   string `yaml:"method"`
	Analysis string `yaml:"analysis"`
	Planning string `yaml:"planning"`
}

type rawAction struct {
	Action      string         `yaml:"action"`
	ToolCall    *rawToolCall   `yaml:"tool_call"`
	Tool        string         `yaml:"tool"`
	Params      map[string]any `yaml:"params"`
	Description string         `yaml:"description"`
	Purpose     string         `yaml:"purpose"`
}

type rawToolCall struct {
	Function string         `yaml:"function"`
	Params   map[string]any `yaml:"params"`
}

// ParseFile reads and parses a workflow YAML document.
//
// Any structural defect (unreadable file, invalid YAML, a step missing its
// mandatory ordinal or name) fails the whole parse; partial workflows are
// never returned.
func ParseFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow document: %w", err)
	}
	defer f.Close()

	return parseReader(f)
}

// ParseString parses a workflow document from a YAML string.
// This is useful for testing and for embedding workflow data.
func ParseString(data string) ([]Step, error) {
	return parseReader(strings.NewReader(data))
}

func parseReader(r io.Reader) ([]Step, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow document: %w", err)
	}

	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow document: %w", err)
	}

	steps := make([]Step, 0, len(doc.Steps))
	for i, rs := range doc.Steps {
		step, err := parseStep(rs)
		if err != nil {
			return nil, fmt.Errorf("workflow step at index %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(rs rawStep) (Step, error) {
	if rs.Step == nil {
		return Step{}, fmt.Errorf("missing required 'step' field")
	}
	if rs.Name == "" {
		return Step{}, fmt.Errorf("missing required 'name' field")
	}

	var actions []Action
	for _, ra := range rs.Actions {
		actions = append(actions, parseAction(ra))
	}

	// Some steps declare their tool call at step level instead of inside
	// the actions list.
	if rs.ToolCall != nil {
		actions = append(actions, stepLevelToolAction(rs.ToolCall))
	}

	// A step with no explicit actions is LLM-driven; synthesize a single
	// reasoning action from whichever narrative field is present.
	if len(actions) == 0 {
		actions = synthesizeReasoningAction(rs)
	}

	return Step{
		Number:           *rs.Step,
		Name:             rs.Name,
		Description:      rs.Description,
		Actions:          actions,
		Requirements:     rs.Requirements,
		PromptTemplate:   rs.PromptTemplate,
		PromptGuidelines: rs.PromptGuidelines,
	}, nil
}

func parseAction(ra rawAction) Action {
	name := ra.Action
	if name == "" {
		name = "unnamed"
	}
	description := ra.Description
	if description == "" {
		description = ra.Purpose
	}

	action := Action{
		Name:           name,
		ParamsTemplate: map[string]any{},
		Description:    description,
	}

	switch {
	case ra.ToolCall != nil:
		// Local tool call executed by the adapter.
		action.Tool = ra.ToolCall.Function
		if ra.ToolCall.Params != nil {
			action.ParamsTemplate = ra.ToolCall.Params
		}
	case ra.Tool != "":
		// Native LLM tool reference (Read, WebSearch, ...).
		action.RequiresLlm = true
		if ra.Params != nil {
			action.ParamsTemplate = ra.Params
		}
	default:
		action.RequiresLlm = true
	}

	return action
}

func stepLevelToolAction(tc *rawToolCall) Action {
	name := tc.Function
	if name == "" {
		name = "tool_call"
	}
	params := tc.Params
	if params == nil {
		params = map[string]any{}
	}
	return Action{
		Name:           name,
		Tool:           tc.Function,
		ParamsTemplate: params,
		Description:    fmt.Sprintf("Execute %s", tc.Function),
	}
}

func synthesizeReasoningAction(rs rawStep) []Action {
	narratives := []struct {
		name string
		text string
	}{
		{"method", rs.Method},
		{"analysis", rs.Analysis},
		{"planning", rs.Planning},
	}
	for _, n := range narratives {
		if n.text != "" {
			return []Action{{
				Name:           n.name,
				RequiresLlm:    true,
				ParamsTemplate: map[string]any{},
				Description:    n.text,
			}}
		}
	}
	return nil
}
