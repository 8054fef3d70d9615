package conversation

import (
	"github.com/cloudwego/eino/schema"

	"market_assistant/pkg"
)

// ContextStrategy decides how much of a session's memory is replayed to a
// remote chat model.
type ContextStrategy interface {
	BuildMessages(memory *Memory) []*schema.Message
	GetMaxTurns() int
}

// ====================== Response ======================
// ResponseContextStrategy - response generation replays the last N turn pairs
type ResponseContextStrategy struct {
	maxTurns int
}

func NewResponseContextStrategy(maxTurns int) *ResponseContextStrategy {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &ResponseContextStrategy{maxTurns: maxTurns}
}

func (s *ResponseContextStrategy) GetMaxTurns() int {
	return s.maxTurns
}

func (s *ResponseContextStrategy) BuildMessages(memory *Memory) []*schema.Message {
	if memory == nil {
		return nil
	}
	return ToSchemaMessages(memory.GetHistory(s.maxTurns))
}

// ToSchemaMessages converts {role, content} history into eino chat messages
func ToSchemaMessages(history []pkg.ConversationMessage) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case string(schema.User):
			messages = append(messages, schema.UserMessage(msg.Content))
		case string(schema.Assistant):
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return messages
}
