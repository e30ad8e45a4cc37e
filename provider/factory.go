package provider

import (
	"fmt"

	"mori/model"
)

// NewProvider creates a provider based on configuration.
//
// Returns an error if the provider type is unknown or the provider-specific
// constructor fails (e.g., invalid URL).
//
// Example:
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:    provider.ProviderTypeOpenAI,
//	    BaseURL: "http://localhost:8080/v1",
//	    Model:   "llama3",
//	})
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts config provider ID to factory ProviderType.
//
// For unknown IDs, returns the ID cast as ProviderType (factory will error).
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "ollama", "":
		return ProviderTypeOllama
	case "openai":
		return ProviderTypeOpenAI
	default:
		return ProviderType(id)
	}
}
