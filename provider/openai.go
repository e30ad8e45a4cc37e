package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"mori/model"
	"mori/ollama"
)

// localAPIKey is sent when no key is configured. Local OpenAI-compatible
// servers accept any bearer token.
const localAPIKey = "local"

// OpenAIProvider implements model.Provider against an OpenAI-compatible
// server such as llama.cpp's server or LM Studio.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI-compatible provider instance.
//
// Parameters:
//   - baseURL: server base URL including the /v1 prefix (required)
//   - apiKey: bearer token; optional for local servers
//   - model: fallback model name (required)
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("OpenAI-compatible base URL is required")
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid OpenAI-compatible URL %q", baseURL)
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI-compatible provider needs a model")
	}
	if apiKey == "" {
		apiKey = localAPIKey
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Chat implements model.Provider.Chat with a single non-streaming completion.
func (p *OpenAIProvider) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}

	params := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(req.Messages),
		Model:    openai.ChatModel(modelName),
	}
	if req.Options.Temperature > 0 {
		params.Temperature = openai.Float(req.Options.Temperature)
	}
	if req.Options.TopP > 0 {
		params.TopP = openai.Float(req.Options.TopP)
	}
	if req.Options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Options.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat with %s: %w", modelName, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat with %s: no choices returned", modelName)
	}

	return completion.Choices[0].Message.Content, nil
}

// ListModels implements model.Provider.ListModels.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenAI-compatible models: %w", err)
	}

	result := make([]ollama.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, ollama.ModelInfo{
			Name:         m.ID,
			InternalName: m.ID,
			Provider:     "openai",
		})
	}

	return result, nil
}

// GetModel returns the fallback model name.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// Ping implements model.Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenAI-compatible ping failed: %w", err)
	}
	return nil
}
