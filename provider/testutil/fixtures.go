package testutil

import (
	"time"

	"mori/model"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   "Why do you climb alone?",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleAssistant,
			Content:   "Because the mountain does not ask for company.",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleUser,
			Content:   "Is K2 harder than Everest?",
			Timestamp: time.Now(),
		},
	}
}

// PromptMessages returns the two-message request shape the chatbot sends.
func PromptMessages(system, user string) []model.Message {
	return []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: user},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}
