// Package provider implements model.Provider for the inference services Mori
// can talk to.
//
// Both supported services run locally:
//   - ProviderTypeOllama: an Ollama server (default)
//   - ProviderTypeOpenAI: any OpenAI-compatible server (llama.cpp server,
//     LM Studio, vLLM)
//
// The provider layer handles all type conversions between Mori's
// provider-agnostic types and the SDK types. See conversions.go.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:    provider.ProviderTypeOllama,
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama3.2:1b",
//	})
//	if err != nil {
//	    // handle error
//	}
//	reply, err := p.Chat(ctx, model.ChatRequest{Model: "mistral", Messages: msgs})
package provider

// Note: The Provider interface is defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama ProviderType = "ollama"
	ProviderTypeOpenAI ProviderType = "openai"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // OpenAI-compatible servers only; most local ones ignore it
}
