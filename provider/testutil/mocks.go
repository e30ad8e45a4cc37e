package testutil

import (
	"context"
	"sync"

	"mori/model"
	"mori/ollama"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, req model.ChatRequest) (string, error)
	ListModelsFunc func(ctx context.Context) ([]ollama.ModelInfo, error)
	PingFunc       func(ctx context.Context) error
	PullFunc       func(ctx context.Context, name string, fn ollama.PullProgress) error

	mu       sync.Mutex
	requests []model.ChatRequest
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider() *MockProvider {
	mock := &MockProvider{}
	mock.ChatFunc = mock.defaultChat
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	mock.PullFunc = mock.defaultPull
	return mock
}

// NewReplyProvider returns a mock that always answers with reply.
func NewReplyProvider(reply string) *MockProvider {
	mock := NewMockProvider()
	mock.ChatFunc = func(ctx context.Context, req model.ChatRequest) (string, error) {
		return reply, nil
	}
	return mock
}

// NewFailingProvider returns a mock whose every call fails with err.
func NewFailingProvider(err error) *MockProvider {
	mock := NewMockProvider()
	mock.ChatFunc = func(ctx context.Context, req model.ChatRequest) (string, error) {
		return "", err
	}
	mock.ListModelsFunc = func(ctx context.Context) ([]ollama.ModelInfo, error) {
		return nil, err
	}
	mock.PingFunc = func(ctx context.Context) error {
		return err
	}
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, req model.ChatRequest) (string, error) {
	return "Mock response", nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return []ollama.ModelInfo{
		{Name: "llama3.2:1b", Size: 1000, Provider: "ollama"},
		{Name: "mistral:latest", Size: 2000, Provider: "ollama"},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) defaultPull(ctx context.Context, name string, fn ollama.PullProgress) error {
	if fn != nil {
		fn("pulling manifest", 0, 0)
		fn("downloading", 50, 100)
		fn("success", 100, 100)
	}
	return nil
}

func (m *MockProvider) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.ChatFunc(ctx, req)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

func (m *MockProvider) Pull(ctx context.Context, name string, fn ollama.PullProgress) error {
	return m.PullFunc(ctx, name, fn)
}

// Requests returns a copy of every Chat request received so far.
func (m *MockProvider) Requests() []model.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent Chat request, or false if none.
func (m *MockProvider) LastRequest() (model.ChatRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return model.ChatRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// RecorderFunc adapts a function to model.TurnRecorder.
type RecorderFunc func(ctx context.Context, rec model.TurnRecord) error

func (f RecorderFunc) RecordTurn(ctx context.Context, rec model.TurnRecord) error {
	return f(ctx, rec)
}

// MemoryRecorder keeps every turn record in memory.
type MemoryRecorder struct {
	mu      sync.Mutex
	records []model.TurnRecord
}

func (r *MemoryRecorder) RecordTurn(ctx context.Context, rec model.TurnRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *MemoryRecorder) Records() []model.TurnRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.TurnRecord, len(r.records))
	copy(out, r.records)
	return out
}
