package agent

import (
	"context"
	"log"

	"github.com/cloudwego/eino/schema"
)

// EventSink observes a run as it executes. OnStep fires once per step-log
// append, OnDelta once per relayed model chunk. A nil sink disables both.
type EventSink interface {
	OnStep(step string)
	OnDelta(content string)
}

// Engine walks the fixed workflow topology for one request:
//
//	input → classify_intent → generate → end
//	                              ↑↓
//	                            tools
//
// Each node runs to completion before the next starts; the engine never shares
// a State between requests.
type Engine struct {
	classifier *Classifier
	generator  *Generator
	tools      ToolExecutor
	routes     RouteTable

	// maxToolRounds bounds the generate↔tools loop so a misbehaving model
	// cannot spin the workflow forever.
	maxToolRounds int
}

// NewEngine assembles the workflow from its node implementations.
func NewEngine(classifier *Classifier, generator *Generator, tools ToolExecutor, routes RouteTable, maxToolRounds int) *Engine {
	if maxToolRounds < 1 {
		maxToolRounds = 3
	}
	return &Engine{
		classifier:    classifier,
		generator:     generator,
		tools:         tools,
		routes:        routes,
		maxToolRounds: maxToolRounds,
	}
}

// Run executes the workflow over the given state and returns the final
// assistant turn. Classification and retrieval failures degrade silently;
// a generation failure is replaced by a fixed apology turn unless the request
// context itself is already dead.
func (e *Engine) Run(ctx context.Context, state *State, sink EventSink) (*schema.Message, error) {
	logStep := func(step string) {
		state.Steps = append(state.Steps, step)
		if sink != nil {
			sink.OnStep(step)
		}
	}

	node := NodeInput
	toolRounds := 0

	for {
		state.Node = node

		switch node {
		case NodeInput:
			logStep("Received user input")
			node = NodeClassify

		case NodeClassify:
			logStep("Classifying user intent with LLM")
			label := e.classifier.Classify(ctx, state.LatestUserContent())
			if label != "" && !e.routes.Known(label) {
				log.Printf("[agent] unrecognized intent label %q, routing via fallback", label)
			}
			state.Intent = label
			node = e.routes.Route(label)

		case NodeGenerate:
			response, err := e.generate(ctx, state, logStep, sink)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Printf("[agent] generation failed, substituting apology turn: %v", err)
				response = schema.AssistantMessage(apologyContent, nil)
			}
			state.Messages = append(state.Messages, response)

			if !shouldContinue(response) {
				state.Node = NodeEnd
				return response, nil
			}
			node = NodeTools

		case NodeTools:
			toolRounds++
			if toolRounds > e.maxToolRounds {
				log.Printf("[agent] tool round limit (%d) reached, ending with pending tool calls", e.maxToolRounds)
				last := state.Messages[len(state.Messages)-1]
				state.Node = NodeEnd
				return last, nil
			}

			logStep("Executing requested tools")
			last := state.Messages[len(state.Messages)-1]
			results, err := e.tools.Execute(ctx, last.ToolCalls)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Printf("[agent] tool execution failed, substituting apology turn: %v", err)
				response := schema.AssistantMessage(apologyContent, nil)
				state.Messages = append(state.Messages, response)
				state.Node = NodeEnd
				return response, nil
			}
			state.Messages = append(state.Messages, results...)
			node = NodeGenerate
		}
	}
}

// generate relays model deltas live only when no tool is registered: with an
// empty registry the first generation is guaranteed final, so its chunks are
// safe to forward as answer content.
func (e *Engine) generate(ctx context.Context, state *State, logStep func(string), sink EventSink) (*schema.Message, error) {
	if sink != nil && !e.tools.HasTools() {
		return e.generator.GenerateStream(ctx, state, logStep, sink.OnDelta)
	}
	return e.generator.Generate(ctx, state, logStep)
}

// shouldContinue is the tool-continuation gate: a response declaring at least
// one pending invocation loops the workflow back through tool execution. A nil
// and an empty declaration list mean the same thing.
func shouldContinue(response *schema.Message) bool {
	return response != nil && len(response.ToolCalls) > 0
}
