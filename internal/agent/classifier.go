package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Classifier labels the latest user message with a single intent from the
// configured closed set. It runs one call against a zero-temperature model so
// identical input yields an identical label.
type Classifier struct {
	chain       compose.Runnable[map[string]any, *schema.Message]
	instruction string
}

// NewClassifier compiles the classification chain over the supplied model.
func NewClassifier(ctx context.Context, intentModel model.BaseChatModel, labels []string) (*Classifier, error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{instruction}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(intentModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile classifier chain: %w", err)
	}

	return &Classifier{
		chain:       runnable,
		instruction: classifyInstruction(labels),
	}, nil
}

// Classify returns the normalized label for the message. A failed model call
// returns the empty string; routing treats that like any unknown label, so a
// classification failure can never abort the conversation.
func (c *Classifier) Classify(ctx context.Context, userMessage string) string {
	response, err := c.chain.Invoke(ctx, map[string]any{
		"instruction": c.instruction,
		"query":       userMessage,
	})
	if err != nil {
		log.Printf("[agent] intent classification failed, using fallback route: %v", err)
		return ""
	}

	return strings.ToLower(strings.TrimSpace(response.Content))
}
