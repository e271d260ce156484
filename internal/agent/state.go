package agent

import "github.com/cloudwego/eino/schema"

// NodeID names a node of the workflow graph.
type NodeID string

const (
	NodeInput    NodeID = "input"
	NodeClassify NodeID = "classify_intent"
	NodeGenerate NodeID = "generate"
	NodeTools    NodeID = "tools"
	NodeEnd      NodeID = "end"
)

// State carries everything one workflow run mutates. A State belongs to exactly
// one in-flight request; cross-request continuity lives in the session store,
// never here.
type State struct {
	// Messages is seeded from session history plus the new user turn and is
	// extended only by the generate and tool nodes.
	Messages []*schema.Message

	// Steps is the append-only progress log, consumed by streaming observers.
	Steps []string

	// Node is the node currently executing.
	Node NodeID

	// Intent is empty until classification ran. Read by routing only afterwards.
	Intent string
}

// NewState seeds a run with prior history and the new user message.
func NewState(history []*schema.Message, userMessage string) *State {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, schema.UserMessage(userMessage))

	return &State{
		Messages: messages,
		Steps:    make([]string, 0, 8),
	}
}

// LatestUserContent walks backwards for the most recent user turn.
func (s *State) LatestUserContent() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == schema.User {
			return s.Messages[i].Content
		}
	}
	return ""
}
