package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/krittin/healthchat/backend/internal/retrieval"
)

// Generator owns the generate node: it fetches grounding context for the
// latest user turn, picks the matching instruction variant and runs the chat
// model over the full message history. Appending the produced turn to the
// workflow state is the engine's job, not the generator's.
type Generator struct {
	chain     compose.Runnable[map[string]any, *schema.Message]
	retriever retrieval.Retriever
	topK      int
}

// NewGenerator compiles the generation chain over the supplied model.
func NewGenerator(ctx context.Context, chatModel model.BaseChatModel, retriever retrieval.Retriever, topK int) (*Generator, error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &Generator{
		chain:     runnable,
		retriever: retriever,
		topK:      topK,
	}, nil
}

// Generate produces the assistant turn for the current history.
func (g *Generator) Generate(ctx context.Context, state *State, logStep func(string)) (*schema.Message, error) {
	input := g.buildChainInput(ctx, state, logStep)

	logStep("Generating response with LLM")
	response, err := g.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run generation chain: %w", err)
	}
	return response, nil
}

// GenerateStream is Generate with live delta relay. The concatenated deltas
// equal the returned turn's content.
func (g *Generator) GenerateStream(ctx context.Context, state *State, logStep, onDelta func(string)) (*schema.Message, error) {
	input := g.buildChainInput(ctx, state, logStep)

	logStep("Generating response with LLM")
	stream, err := g.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream generation chain: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, fmt.Errorf("failed to receive generation chunk: %w", recvErr)
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			onDelta(chunk.Content)
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to concatenate generation chunks: %w", err)
	}
	return response, nil
}

// buildChainInput runs retrieval for the latest user turn and assembles the
// template input. Retrieval failures surface as an empty context block, which
// selects the scoped instruction variant.
func (g *Generator) buildChainInput(ctx context.Context, state *State, logStep func(string)) map[string]any {
	logStep("Retrieving knowledge context")
	contextBlock := g.retriever.Retrieve(ctx, state.LatestUserContent(), g.topK)

	return map[string]any{
		"system":  systemPrompt(contextBlock),
		"history": state.Messages,
	}
}
