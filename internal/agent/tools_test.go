package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

type addTool struct{}

func (addTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: "add", Desc: "Adds two numbers"}, nil
}

func (addTool) InvokableRun(_ context.Context, _ string, _ ...tool.Option) (string, error) {
	return "3", nil
}

func TestEmptyRegistryHasNoTools(t *testing.T) {
	registry, err := NewRegistry(context.Background())
	if err != nil {
		t.Fatalf("NewRegistry err: %v", err)
	}
	if registry.HasTools() {
		t.Fatal("empty registry must report no tools")
	}
	if len(registry.Infos()) != 0 {
		t.Fatal("empty registry must expose no tool infos")
	}
}

func TestRegistryExecutesByName(t *testing.T) {
	ctx := context.Background()
	registry, err := NewRegistry(ctx, addTool{})
	if err != nil {
		t.Fatalf("NewRegistry err: %v", err)
	}
	if !registry.HasTools() {
		t.Fatal("registry must report registered tools")
	}

	results, err := registry.Execute(ctx, []schema.ToolCall{{
		ID:       "call-1",
		Function: schema.FunctionCall{Name: "add", Arguments: `{"a":1,"b":2}`},
	}})
	if err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results length = %d, want 1", len(results))
	}
	if results[0].Role != schema.Tool || results[0].Content != "3" {
		t.Fatalf("unexpected tool turn %+v", results[0])
	}
	if results[0].ToolCallID != "call-1" {
		t.Fatalf("tool turn must carry the originating call id, got %q", results[0].ToolCallID)
	}
}

func TestRegistryUnknownToolBecomesErrorTurn(t *testing.T) {
	ctx := context.Background()
	registry, err := NewRegistry(ctx, addTool{})
	if err != nil {
		t.Fatalf("NewRegistry err: %v", err)
	}

	results, err := registry.Execute(ctx, []schema.ToolCall{{
		ID:       "call-9",
		Function: schema.FunctionCall{Name: "subtract"},
	}})
	if err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if len(results) != 1 || !strings.Contains(results[0].Content, "not available") {
		t.Fatalf("unknown tool must yield an error-bearing turn, got %+v", results)
	}
}
