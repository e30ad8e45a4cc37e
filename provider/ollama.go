package provider

import (
	"context"
	"fmt"

	"mori/model"
	"mori/ollama"
)

// OllamaProvider wraps ollama.Client to implement model.Provider.
//
// This provider handles the conversions between Mori's provider-agnostic
// types and Ollama's API types.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (e.g., "http://localhost:11434").
//     If empty, defaults to "http://localhost:11434".
//   - model: The fallback model name (e.g., "mistral").
//     If empty, defaults to "llama3.2:1b".
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Chat implements model.Provider.Chat. The request is sent with streaming
// disabled; an empty req.Model falls back to the provider's model.
func (p *OllamaProvider) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	return p.client.Chat(ctx, req.Model, ConvertToOllamaMessages(req.Messages), ConvertToOllamaOptions(req.Options))
}

// ListModels implements model.Provider.ListModels.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

// Ping implements model.Provider.Ping.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Pull downloads a model through the Ollama API. It implements model.Puller,
// which the terminal client uses for Ctrl+P.
func (p *OllamaProvider) Pull(ctx context.Context, name string, fn ollama.PullProgress) error {
	return p.client.Pull(ctx, name, fn)
}

// GetModel returns the fallback model name.
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// BaseURL returns the server this provider talks to.
func (p *OllamaProvider) BaseURL() string {
	return p.client.BaseURL()
}
