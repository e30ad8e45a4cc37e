package model

import "time"

// Conversation is an append-only message history. It is not safe for
// concurrent use; the owning session serialises access.
type Conversation struct {
	messages []Message
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a message stamped with the current time.
func (c *Conversation) Append(role, content string) Message {
	msg := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	c.messages = append(c.messages, msg)
	return msg
}

// Messages returns a copy of the history in arrival order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// LastReply finds the most recent assistant content in a history snapshot.
func LastReply(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}

// Clear drops every message regardless of prior length.
func (c *Conversation) Clear() {
	c.messages = nil
}
