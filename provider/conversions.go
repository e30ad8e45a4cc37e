package provider

import (
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"mori/model"
	"mori/ollama"
)

// ConvertToOllamaMessages converts model.Message to Ollama api.Message.
//
// Timestamps are not preserved; the Ollama API has no field for them.
//
// Example:
//
//	ollamaMessages := ConvertToOllamaMessages([]model.Message{
//	    {Role: "system", Content: "You are Mori Buntarou..."},
//	    {Role: "user", Content: "Why climb alone?"},
//	})
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return result
}

// ConvertToOllamaOptions maps generation options to the client's options.
func ConvertToOllamaOptions(opts model.GenerationOptions) ollama.Options {
	return ollama.Options{
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
	}
}

// ConvertToOpenAIMessages converts model.Message to OpenAI message params.
// Unknown roles are sent as user messages.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case model.RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}

	return result
}
