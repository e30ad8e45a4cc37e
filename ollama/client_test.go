package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama serves the three endpoints the client uses.
func fakeOllama(t *testing.T, got *api.ChatRequest) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req api.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if got != nil {
			*got = req
		}
		if req.Model == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model \"missing\" not found, try pulling it first"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   req.Model,
			"message": map[string]string{"role": "assistant", "content": "Cold up there."},
			"done":    true,
		})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:1b","size":1300000000},{"name":"mistral:latest","size":4100000000}]}`))
	})
	mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{\"status\":\"pulling manifest\"}\n{\"status\":\"downloading\",\"total\":100,\"completed\":50}\n{\"status\":\"success\"}\n"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, c.BaseURL())
	assert.Equal(t, DefaultModel, c.GetModel())

	c.SetModel("phi3")
	assert.Equal(t, "phi3", c.GetModel())
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("localhost", "")
	assert.Error(t, err)

	_, err = NewClient("://bad", "")
	assert.Error(t, err)
}

func TestChatSendsNonStreamingRequest(t *testing.T) {
	var got api.ChatRequest
	srv := fakeOllama(t, &got)

	c, err := NewClient(srv.URL, "llama3.2:1b")
	require.NoError(t, err)

	reply, err := c.Chat(context.Background(), "mistral", []api.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	}, Options{Temperature: 0.7, TopP: 0.9, MaxTokens: 50})
	require.NoError(t, err)

	assert.Equal(t, "Cold up there.", reply)
	assert.Equal(t, "mistral", got.Model)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, 0.7, got.Options["temperature"])
	assert.Equal(t, 0.9, got.Options["top_p"])
	assert.Equal(t, float64(50), got.Options["num_predict"])
}

func TestChatUsesDefaultModel(t *testing.T) {
	var got api.ChatRequest
	srv := fakeOllama(t, &got)

	c, err := NewClient(srv.URL, "phi3")
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "phi3", got.Model)
	assert.Empty(t, got.Options)
}

func TestChatMissingModel(t *testing.T) {
	srv := fakeOllama(t, nil)
	c, err := NewClient(srv.URL, "")
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "missing", nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestChatUnreachable(t *testing.T) {
	srv := fakeOllama(t, nil)
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, "")
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "", nil, Options{})
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}

func TestListModels(t *testing.T) {
	srv := fakeOllama(t, nil)
	c, err := NewClient(srv.URL, "")
	require.NoError(t, err)

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama3.2:1b", models[0].Name)
	assert.Equal(t, "ollama", models[0].Provider)
	assert.Equal(t, int64(1300000000), models[0].Size)

	assert.NoError(t, c.Ping(context.Background()))
}

func TestPullReportsProgress(t *testing.T) {
	srv := fakeOllama(t, nil)
	c, err := NewClient(srv.URL, "")
	require.NoError(t, err)

	var statuses []string
	err = c.Pull(context.Background(), "mistral", func(status string, completed, total int64) {
		statuses = append(statuses, status)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pulling manifest", "downloading", "success"}, statuses)
}

func TestSameModel(t *testing.T) {
	assert.True(t, SameModel("mistral", "mistral:latest"))
	assert.True(t, SameModel("Llama3.2:1b", "llama3.2:1b"))
	assert.False(t, SameModel("llama3", "llama3.2:1b"))
}
