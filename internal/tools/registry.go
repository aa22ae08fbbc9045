// Package tools dispatches local tool calls requested by the driving LLM.
//
// The registry holds a static table of tool definitions: name, parameter
// schema, and a binder producing the callable. Execution never raises across
// the registry boundary - unknown tools, missing required parameters,
// binding failures, and panics inside a tool all normalize to a
// {"success": false, "error": ...} result map, so the turn processor can
// report every outcome uniformly.
//
// Key types:
//   - [Registry] - validates and dispatches tool calls
//   - [Definition] - one tool's schema and binder
//   - [Options] - environment shared by the tool implementations
package tools

import (
	"context"
	"fmt"

	"papertok/internal/protocol"
)

// Func is a bound tool callable. It receives validated parameters (required
// ones present, optional ones defaulted) and returns a result map that must
// include a "success" flag. The context covers the call's blocking I/O;
// the registry itself applies no timeout.
type Func func(ctx context.Context, params map[string]any) map[string]any

// ParamSpec declares one tool parameter.
type ParamSpec struct {
	// Name is the parameter key in the call's params object.
	Name string

	// Type is an informational type tag ("string", "int", "list").
	Type string

	// Required parameters must be present in the call or the call is
	// rejected before dispatch.
	Required bool

	// Default fills optional parameters absent from the call.
	Default any
}

// Definition is one entry of the static tool table.
type Definition struct {
	// Name is the wire-visible tool name.
	Name string

	// Params are the declared parameters in order.
	Params []ParamSpec

	// Bind resolves the callable. It runs lazily on first use and may
	// fail (e.g. a required binary is not installed); failures are
	// reported as error results and retried on the next call.
	Bind func(opts Options) (Func, error)
}

// Options is the environment handed to tool implementations.
type Options struct {
	// ResourcesRoot is the directory under which per-session resource
	// folders are created.
	ResourcesRoot string

	// FFmpegPath overrides the ffmpeg binary location. Empty means
	// look it up on PATH.
	FFmpegPath string

	// WordsPerSecond is the narration speed used to budget script length.
	WordsPerSecond int

	// ImageAPIURL is the endpoint of the image generation service.
	ImageAPIURL string

	// ImageAPIKey authenticates against the image generation service.
	ImageAPIKey string

	// HTTPTimeoutSeconds is the default timeout for download tools when
	// the call does not override it.
	HTTPTimeoutSeconds int
}

// Registry validates and dispatches tool calls against the static tool
// table.
//
// Bindings resolve lazily on first use and are cached for the process
// lifetime; a failed binding is not cached, so the next call within the same
// invocation retries it.
type Registry struct {
	opts        Options
	definitions []Definition
	bound       map[string]Func
}

// NewRegistry creates a [Registry] over the default tool table.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:        opts,
		definitions: definitions(),
		bound:       make(map[string]Func),
	}
}

// Describe returns tool metadata for inclusion in context messages, in
// table order.
func (r *Registry) Describe() []protocol.ToolInfo {
	infos := make([]protocol.ToolInfo, 0, len(r.definitions))
	for _, def := range r.definitions {
		params := make([]protocol.ToolParamInfo, 0, len(def.Params))
		for _, p := range def.Params {
			params = append(params, protocol.ToolParamInfo{
				Name:     p.Name,
				Required: p.Required,
				Default:  p.Default,
			})
		}
		infos = append(infos, protocol.ToolInfo{Name: def.Name, Params: params})
	}
	return infos
}

// Execute runs a tool by name with the given parameters.
//
// Execute never returns an error: every failure mode comes back as a
// {"success": false, "error": ...} result map. Required parameters absent
// from the call reject it before the callable is invoked; optional
// parameters absent from the call are filled with their declared defaults.
// Parameters not declared in the schema are dropped.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (result map[string]any) {
	def := r.lookup(name)
	if def == nil {
		return errorResult(fmt.Sprintf("Unknown tool: %s", name))
	}

	for _, p := range def.Params {
		if !p.Required {
			continue
		}
		if _, ok := params[p.Name]; !ok {
			return errorResult(fmt.Sprintf(
				"Missing required parameter %q for tool %q", p.Name, name))
		}
	}

	callParams := make(map[string]any, len(def.Params))
	for _, p := range def.Params {
		if v, ok := params[p.Name]; ok {
			callParams[p.Name] = v
		} else {
			callParams[p.Name] = p.Default
		}
	}

	fn, ok := r.bound[name]
	if !ok {
		var err error
		fn, err = def.Bind(r.opts)
		if err != nil {
			return errorResult(fmt.Sprintf("Failed to bind tool %q: %v", name, err))
		}
		r.bound[name] = fn
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = errorResult(fmt.Sprintf("Tool execution error: %v", rec))
		}
	}()
	return fn(ctx, callParams)
}

// AutoStateUpdates extracts state updates from a successful tool result.
//
// It consults the static result-key to state-key mapping for the tool and
// copies only keys actually present in the result. Failed results and tools
// without a mapping yield an empty map.
func (r *Registry) AutoStateUpdates(name string, result map[string]any) map[string]any {
	updates := map[string]any{}
	success, _ := result["success"].(bool)
	if !success {
		return updates
	}
	mapping, ok := autoStateKeys[name]
	if !ok {
		return updates
	}
	for resultKey, stateKey := range mapping {
		if v, present := result[resultKey]; present {
			updates[stateKey] = v
		}
	}
	return updates
}

func (r *Registry) lookup(name string) *Definition {
	for i := range r.definitions {
		if r.definitions[i].Name == name {
			return &r.definitions[i]
		}
	}
	return nil
}
