package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mori/config"
	"mori/knowledge"
	"mori/persona"
)

var (
	// ErrEmptyMessage is returned for blank input. Nothing is appended.
	ErrEmptyMessage = errors.New("empty message")
	// ErrUnknownModel is returned for a model outside the allow-list.
	ErrUnknownModel = errors.New("model not in allow-list")
)

// ChatbotConfig configures a Chatbot.
type ChatbotConfig struct {
	Models         []string
	DefaultModel   string
	Options        GenerationOptions
	Timeout        time.Duration // zero blocks until the provider answers
	KnowledgeHints bool
	Recorder       TurnRecorder // optional
}

// ChatbotConfigFrom maps application settings onto a ChatbotConfig.
func ChatbotConfigFrom(cfg *config.Config) ChatbotConfig {
	return ChatbotConfig{
		Models:       cfg.Models,
		DefaultModel: cfg.Model(),
		Options: GenerationOptions{
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
		},
		Timeout:        cfg.Timeout,
		KnowledgeHints: cfg.KnowledgeHints,
	}
}

// Chatbot runs one turn at a time against a provider. It holds no
// conversation state of its own and is safe for concurrent use as long as
// each Conversation is only used by one caller at a time.
type Chatbot struct {
	provider Provider
	cfg      ChatbotConfig
}

func NewChatbot(p Provider, cfg ChatbotConfig) (*Chatbot, error) {
	if p == nil {
		return nil, errors.New("chatbot needs a provider")
	}
	if len(cfg.Models) == 0 {
		return nil, errors.New("chatbot needs at least one model")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = cfg.Models[0]
	}

	bot := &Chatbot{provider: p, cfg: cfg}
	if !bot.IsAllowedModel(cfg.DefaultModel) {
		return nil, fmt.Errorf("default model %q: %w", cfg.DefaultModel, ErrUnknownModel)
	}
	return bot, nil
}

// BuildMessages returns the request sent for one turn: the persona prompt as
// the system message followed by the raw utterance.
func BuildMessages(utterance, notes string) []Message {
	return []Message{
		{Role: RoleSystem, Content: persona.BuildPrompt(utterance, notes)},
		{Role: RoleUser, Content: utterance},
	}
}

// Reply runs one turn: it appends the user message, asks the provider,
// filters the answer and appends it. Provider failures never surface as
// errors; the reply becomes persona.Placeholder instead. An empty modelName
// selects the default model.
func (b *Chatbot) Reply(ctx context.Context, sessionID string, conv *Conversation, text, modelName string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	if modelName == "" {
		modelName = b.cfg.DefaultModel
	}
	if !b.IsAllowedModel(modelName) {
		return "", fmt.Errorf("%q: %w", modelName, ErrUnknownModel)
	}

	conv.Append(RoleUser, text)

	notes := ""
	if b.cfg.KnowledgeHints {
		notes = knowledge.Search(text)
	}
	req := ChatRequest{
		Model:    modelName,
		Messages: BuildMessages(text, notes),
		Options:  b.cfg.Options,
	}

	callCtx := ctx
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := b.provider.Chat(callCtx, req)
	elapsed := time.Since(start)

	failed := err != nil
	if failed {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Chatbot] %s failed after %s: %v", modelName, elapsed.Round(time.Millisecond), err)
		}
		raw = persona.Placeholder
	}

	reply := persona.Filter(raw)
	conv.Append(RoleAssistant, reply)

	// The caller may be gone already; the turn still gets its record.
	b.record(context.WithoutCancel(ctx), TurnRecord{
		SessionID:   sessionID,
		Model:       modelName,
		PromptChars: len(text),
		ReplyChars:  len(reply),
		Duration:    elapsed,
		Failed:      failed,
		CreatedAt:   start,
	})

	return reply, nil
}

func (b *Chatbot) record(ctx context.Context, rec TurnRecord) {
	if b.cfg.Recorder == nil {
		return
	}
	if err := b.cfg.Recorder.RecordTurn(ctx, rec); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Chatbot] usage record failed: %v", err)
	}
}

// IsAllowedModel reports whether name is in the allow-list.
func (b *Chatbot) IsAllowedModel(name string) bool {
	for _, m := range b.cfg.Models {
		if m == name {
			return true
		}
	}
	return false
}

// Models returns the allow-list in configured order.
func (b *Chatbot) Models() []string {
	out := make([]string, len(b.cfg.Models))
	copy(out, b.cfg.Models)
	return out
}

func (b *Chatbot) DefaultModel() string {
	return b.cfg.DefaultModel
}

// NextModel returns the model after current in the allow-list, wrapping.
func (b *Chatbot) NextModel(current string) string {
	for i, m := range b.cfg.Models {
		if m == current {
			return b.cfg.Models[(i+1)%len(b.cfg.Models)]
		}
	}
	return b.cfg.DefaultModel
}

// Provider exposes the underlying provider for health checks.
func (b *Chatbot) Provider() Provider {
	return b.provider
}
