package chat

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// Turn roles as they appear on the wire and in stored history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one immutable message in a conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Message converts the turn into the schema type consumed by the model layer.
func (t Turn) Message() *schema.Message {
	switch t.Role {
	case RoleAssistant:
		return schema.AssistantMessage(t.Content, nil)
	case RoleSystem:
		return schema.SystemMessage(t.Content)
	default:
		return schema.UserMessage(t.Content)
	}
}

// Messages converts an ordered turn history for seeding a workflow run.
func Messages(turns []Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}
	messages := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, turn.Message())
	}
	return messages
}
