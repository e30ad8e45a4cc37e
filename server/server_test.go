package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mori/model"
	"mori/persona"
	"mori/provider/testutil"
	"mori/storage"
)

var testModels = []string{"llama3.2:1b", "mistral", "llama3", "phi3", "codellama"}

type fakeUsage struct {
	sum storage.UsageSummary
	err error
}

func (f fakeUsage) Summary(ctx context.Context) (storage.UsageSummary, error) {
	return f.sum, f.err
}

func newTestServer(t *testing.T, p model.Provider, usage UsageSource, opts Options) (*httptest.Server, *http.Client, *storage.SessionStore) {
	t.Helper()

	bot, err := model.NewChatbot(p, model.ChatbotConfig{Models: testModels})
	require.NoError(t, err)

	sessions := storage.NewSessionStore()
	if opts.AssetsDir == "" {
		opts.AssetsDir = t.TempDir()
	}
	srv, err := NewServer(opts, bot, sessions, usage)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}, sessions
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestIndexRendersPage(t *testing.T) {
	ts, client, sessions := newTestServer(t, testutil.NewMockProvider(), nil, Options{})

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Mori Buntarou</h1>")
	assert.Contains(t, body, "The Solitary Climber")
	assert.Contains(t, body, "In silence, the mountain speaks")
	assert.Contains(t, body, `placeholder="Speak to the mountain..."`)
	assert.Contains(t, body, "famous peaks")
	assert.Contains(t, body, `<option value="llama3.2:1b" selected>`)
	assert.Contains(t, body, `class="gradient"`)
	assert.NotContains(t, body, "/assets/logo.png")
	assert.Equal(t, 1, sessions.Len())

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestStarterVariesBySession(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"00000000-0000-4000-8000-000000000000", persona.Starters[0]},
		{"00000000-0000-4000-8000-000000000003", persona.Starters[3]},
		{"00000000-0000-4000-8000-000000000007", persona.Starters[2]},
		{"not-a-uuid", persona.Starters[0]},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, starterFor(tt.id))
		})
	}
}

func TestIndexGreetingFollowsSession(t *testing.T) {
	ts, client, sessions := newTestServer(t, testutil.NewMockProvider(), nil, Options{})

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)

	list := sessions.List()
	require.Len(t, list, 1)
	assert.Contains(t, body, template.HTMLEscapeString(starterFor(list[0].ID)))
}

func TestChatFormRoundTrip(t *testing.T) {
	ts, client, sessions := newTestServer(t, testutil.NewReplyProvider("**Cold**. Always cold!"), nil, Options{})

	resp, err := client.PostForm(ts.URL+"/chat", url.Values{"message": {"How is the summit?"}})
	require.NoError(t, err)
	body := readBody(t, resp)

	// The redirect lands back on the page with the same session.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "How is the summit?")
	assert.Contains(t, body, "<strong>Cold</strong>. Always cold.")
	assert.Equal(t, 1, sessions.Len())

	resp, err = client.PostForm(ts.URL+"/chat", url.Values{"message": {"And the wind?"}})
	require.NoError(t, err)
	readBody(t, resp)

	list := sessions.List()
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].MessageCount)
}

func TestChatFormEscapesMarkup(t *testing.T) {
	ts, client, _ := newTestServer(t, testutil.NewReplyProvider(`<script>alert(1)</script>Fine`), nil, Options{})

	resp, err := client.PostForm(ts.URL+"/chat", url.Values{"message": {`<img src=x onerror=alert(1)>`}})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.NotContains(t, body, "<script>alert")
	assert.NotContains(t, body, "onerror")
}

func TestBlankMessageIgnored(t *testing.T) {
	mock := testutil.NewMockProvider()
	ts, client, sessions := newTestServer(t, mock, nil, Options{})

	resp, err := client.PostForm(ts.URL+"/chat", url.Values{"message": {"   "}})
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, mock.Requests())
	assert.Equal(t, 0, sessions.List()[0].MessageCount)
}

func TestClearEmptiesHistory(t *testing.T) {
	ts, client, sessions := newTestServer(t, testutil.NewMockProvider(), nil, Options{})

	resp, err := client.PostForm(ts.URL+"/chat", url.Values{"message": {"hello"}})
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, 2, sessions.List()[0].MessageCount)

	resp, err = client.PostForm(ts.URL+"/clear", nil)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, 0, sessions.List()[0].MessageCount)
}

func TestModelSelection(t *testing.T) {
	mock := testutil.NewMockProvider()
	ts, client, _ := newTestServer(t, mock, nil, Options{})

	resp, err := client.PostForm(ts.URL+"/model", url.Values{"model": {"gpt-4"}})
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = client.PostForm(ts.URL+"/model", url.Values{"model": {"phi3"}})
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `<option value="phi3" selected>`)

	resp, err = client.PostForm(ts.URL+"/chat", url.Values{"message": {"hi"}})
	require.NoError(t, err)
	readBody(t, resp)

	req, ok := mock.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "phi3", req.Model)
}

func TestAPIChat(t *testing.T) {
	mock := testutil.NewFailingProvider(errors.New("ollama not running"))
	ts, client, _ := newTestServer(t, mock, nil, Options{})

	resp, err := client.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"anyone there?","model":"mistral"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "...", out.Reply)
	assert.Equal(t, "mistral", out.Model)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, model.RoleUser, out.Messages[0].Role)
}

func TestAPIChatErrors(t *testing.T) {
	ts, client, _ := newTestServer(t, testutil.NewMockProvider(), nil, Options{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{"message":`, http.StatusBadRequest},
		{"blank", `{"message":"  "}`, http.StatusBadRequest},
		{"unknown model", `{"message":"hi","model":"gpt-4"}`, http.StatusBadRequest},
		{"too large", `{"message":"` + strings.Repeat("a", MaxRequestBodySize) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			body := readBody(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode, body)
			assert.Contains(t, body, `"error"`)
		})
	}
}

func TestRateLimit(t *testing.T) {
	ts, client, _ := newTestServer(t, testutil.NewMockProvider(), nil, Options{RatePerSecond: 0.001, RateBurst: 2})

	// Pick up the session cookie first so every post shares one bucket.
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)

	var statuses []int
	for i := 0; i < 3; i++ {
		resp, err := client.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"again"}`))
		require.NoError(t, err)
		readBody(t, resp)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	// Pages are not rate limited.
	resp, err = client.Get(ts.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitIgnoresForgedCookies(t *testing.T) {
	ts, _, sessions := newTestServer(t, testutil.NewMockProvider(), nil, Options{RatePerSecond: 0.001, RateBurst: 2})

	accepted := 0
	for i := 0; i < 20; i++ {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/chat", strings.NewReader(`{"message":"again"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: fmt.Sprintf("forged-%d", i)})

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		readBody(t, resp)
		if resp.StatusCode == http.StatusOK {
			accepted++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		}
	}

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 2, sessions.Len())
}

func TestAPIChatPassesLongMessageThrough(t *testing.T) {
	mock := testutil.NewReplyProvider("Long way up.")
	ts, client, _ := newTestServer(t, mock, nil, Options{})

	long := strings.Repeat("step by step ", 400)
	body, err := json.Marshal(ChatRequest{Message: long})
	require.NoError(t, err)

	resp, err := client.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	last, ok := mock.LastRequest()
	require.True(t, ok)
	require.Len(t, last.Messages, 2)
	assert.Greater(t, len(last.Messages[1].Content), 4001)
	assert.Equal(t, long, last.Messages[1].Content)
}

func TestExport(t *testing.T) {
	ts, client, _ := newTestServer(t, testutil.NewReplyProvider("Go light."), nil, Options{})

	resp, err := client.PostForm(ts.URL+"/chat", url.Values{"message": {"What should I pack?"}})
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = client.Get(ts.URL + "/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Contains(t, resp.Header.Get("Content-Disposition"), "mori-session-What-should-I-pack")
	var tr storage.Transcript
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
	require.Len(t, tr.Messages, 2)
	assert.Equal(t, "Go light.", tr.Messages[1].Content)
}

func TestKnowledgeAPI(t *testing.T) {
	ts, client, _ := newTestServer(t, testutil.NewMockProvider(), nil, Options{})

	get := func(query string) KnowledgeResponse {
		resp, err := client.Get(ts.URL + "/api/knowledge" + query)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out KnowledgeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	all := get("")
	assert.Len(t, all.Topics, 6)

	found := get("?topic=hazards")
	assert.True(t, found.Found)
	assert.Contains(t, found.Description, "rockfall: Gravity never sleeps.")

	missing := get("?topic=volcanoes")
	assert.False(t, missing.Found)
	assert.Equal(t, "The mountain keeps its secrets.", missing.Description)

	search := get("?q=" + url.QueryEscape("tell me about famous_peaks"))
	assert.True(t, search.Found)
	assert.Len(t, search.Results, 3)

	miss := get("?q=evrest")
	assert.False(t, miss.Found)
	assert.Contains(t, miss.Suggestions, "famous_peaks/everest")
}

func TestStats(t *testing.T) {
	usage := fakeUsage{sum: storage.UsageSummary{Turns: 4, Failed: 1}}
	ts, client, _ := newTestServer(t, testutil.NewMockProvider(), usage, Options{})

	resp, err := client.PostForm(ts.URL+"/chat", url.Values{"message": {"first light?"}})
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = client.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out.Sessions)
	assert.Equal(t, 2, out.Messages)
	require.NotNil(t, out.LastActive)
	require.NotNil(t, out.Usage)
	assert.Equal(t, 4, out.Usage.Turns)
	assert.Equal(t, 1, out.Usage.Failed)
}

func TestHealth(t *testing.T) {
	ts, client, _ := newTestServer(t, testutil.NewMockProvider(), nil, Options{})
	resp, err := client.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "degraded", out.Status)
	assert.Equal(t, []string{"llama3", "phi3", "codellama"}, out.MissingModels)

	down, downClient, _ := newTestServer(t, testutil.NewFailingProvider(errors.New("connection refused")), nil, Options{})
	resp, err = downClient.Get(down.URL + "/healthz")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "unreachable")
}

func TestAssets(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n0000")
	require.NoError(t, os.WriteFile(filepath.Join(dir, LogoFile), png, 0600))

	ts, client, _ := newTestServer(t, testutil.NewMockProvider(), nil, Options{AssetsDir: dir})

	resp, err := client.Get(ts.URL + "/assets/logo.png")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = client.Get(ts.URL + "/assets/bg.jpeg")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `src="/assets/logo.png"`)

	resp, err = client.Get(ts.URL + "/static/style.css")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "with-bg")
}

func TestSecurityHeaders(t *testing.T) {
	ts, client, _ := newTestServer(t, testutil.NewMockProvider(), nil, Options{})
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'self'")
}
