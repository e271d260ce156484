package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// ToolExecutor is the strategy behind the tool-execution node. The default
// registry ships empty, which makes the Generate→Tools edge unreachable, but
// the seam stays so a future tool set plugs in without restructuring the
// workflow.
type ToolExecutor interface {
	// Execute runs the requested invocations in order and returns one tool
	// turn per invocation.
	Execute(ctx context.Context, calls []schema.ToolCall) ([]*schema.Message, error)

	// HasTools reports whether any tool is registered at all.
	HasTools() bool

	// Infos exposes the registered tool schemas for binding to the model.
	Infos() []*schema.ToolInfo
}

// Registry executes eino invokable tools looked up by function name.
type Registry struct {
	tools map[string]tool.InvokableTool
	infos []*schema.ToolInfo
}

// NewRegistry resolves tool names once up front. An empty call is valid and
// yields the no-op executor.
func NewRegistry(ctx context.Context, tools ...tool.InvokableTool) (*Registry, error) {
	registry := &Registry{
		tools: make(map[string]tool.InvokableTool, len(tools)),
		infos: make([]*schema.ToolInfo, 0, len(tools)),
	}

	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read tool info: %w", err)
		}
		registry.tools[info.Name] = t
		registry.infos = append(registry.infos, info)
	}

	return registry, nil
}

// HasTools reports whether the registry holds at least one tool.
func (r *Registry) HasTools() bool {
	return len(r.tools) > 0
}

// Infos returns the registered tool schemas.
func (r *Registry) Infos() []*schema.ToolInfo {
	return r.infos
}

// Execute runs each requested invocation sequentially. An unknown tool name
// becomes an error-bearing tool turn rather than a workflow failure, so the
// model gets a chance to recover on the next generate pass.
func (r *Registry) Execute(ctx context.Context, calls []schema.ToolCall) ([]*schema.Message, error) {
	results := make([]*schema.Message, 0, len(calls))

	for _, call := range calls {
		name := call.Function.Name
		invokable, ok := r.tools[name]
		if !ok {
			log.Printf("[agent] model requested unregistered tool %q", name)
			results = append(results, schema.ToolMessage(
				fmt.Sprintf("tool %q is not available", name), call.ID))
			continue
		}

		output, err := invokable.InvokableRun(ctx, call.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("tool %q failed: %w", name, err)
		}
		results = append(results, schema.ToolMessage(output, call.ID))
	}

	return results, nil
}
