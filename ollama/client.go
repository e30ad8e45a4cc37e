package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llama3.2:1b"
)

type Client struct {
	client  *api.Client
	model   string
	baseURL string
}

// Options are the sampling parameters sent with a chat request.
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// ToMap converts to Ollama's options payload; MaxTokens maps to num_predict.
// Zero values are left out so the server default applies.
func (o Options) ToMap() map[string]any {
	opts := map[string]any{}
	if o.Temperature > 0 {
		opts["temperature"] = o.Temperature
	}
	if o.TopP > 0 {
		opts["top_p"] = o.TopP
	}
	if o.MaxTokens > 0 {
		opts["num_predict"] = o.MaxTokens
	}
	return opts
}

// PullProgress reports pull status lines as the server sends them.
type PullProgress func(status string, completed, total int64)

func NewClient(baseURL, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid Ollama URL %q: scheme and host required", baseURL)
	}

	client := api.NewClient(parsedURL, http.DefaultClient)

	return &Client{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Chat sends one non-streaming request and blocks until the complete reply
// arrives. modelName overrides the client's default when non-empty.
func (c *Client) Chat(ctx context.Context, modelName string, messages []api.Message, opts Options) (string, error) {
	if modelName == "" {
		modelName = c.model
	}

	req := &api.ChatRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false),
		Options:  opts.ToMap(),
	}

	var content strings.Builder
	respFunc := func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	}

	if err := c.client.Chat(ctx, req, respFunc); err != nil {
		return "", fmt.Errorf("chat with %s: %w", modelName, err)
	}

	return content.String(), nil
}

type ModelInfo struct {
	Name         string // Display name
	Size         int64
	Provider     string // Provider ID: "ollama", "openai"
	InternalName string // Full API name
}

func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]ModelInfo, len(resp.Models))
	for i, model := range resp.Models {
		models[i] = ModelInfo{
			Name:         model.Name,
			Size:         model.Size,
			Provider:     "ollama",
			InternalName: model.Name, // Ollama uses same name for display and API
		}
	}

	return models, nil
}

// Pull downloads a model, reporting progress through fn (may be nil).
func (c *Client) Pull(ctx context.Context, name string, fn PullProgress) error {
	req := &api.PullRequest{Model: name}
	progress := func(resp api.ProgressResponse) error {
		if fn != nil {
			fn(resp.Status, resp.Completed, resp.Total)
		}
		return nil
	}

	if err := c.client.Pull(ctx, req, progress); err != nil {
		return fmt.Errorf("failed to pull %s: %w", name, err)
	}
	return nil
}

func (c *Client) SetModel(model string) {
	c.model = model
}

func (c *Client) GetModel() string {
	return c.model
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.List(ctx)
	return err
}

// SameModel compares model names treating "name" and "name:latest" as equal.
func SameModel(a, b string) bool {
	return withTag(a) == withTag(b)
}

func withTag(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.Contains(name, ":") {
		name += ":latest"
	}
	return name
}
