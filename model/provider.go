package model

import (
	"context"
	"time"

	"mori/ollama"
)

// GenerationOptions are the sampling knobs sent with every request.
type GenerationOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// ChatRequest is one complete, non-streaming inference call.
type ChatRequest struct {
	Model    string
	Messages []Message
	Options  GenerationOptions
}

// Provider abstracts the inference service (a local Ollama server or an
// OpenAI-compatible local server) using provider-agnostic types.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model.
type Provider interface {
	// Chat blocks until the full reply is available.
	Chat(ctx context.Context, req ChatRequest) (string, error)

	// ListModels returns the models the service has locally.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// Ping checks if the service is reachable.
	Ping(ctx context.Context) error
}

// Puller is implemented by providers that can download models on request.
type Puller interface {
	Pull(ctx context.Context, name string, fn ollama.PullProgress) error
}

// TurnRecord describes one completed turn without its text.
type TurnRecord struct {
	SessionID   string
	Model       string
	PromptChars int
	ReplyChars  int
	Duration    time.Duration
	Failed      bool
	CreatedAt   time.Time
}

// TurnRecorder receives a record after every turn. Failures to record never
// affect the reply.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, rec TurnRecord) error
}
