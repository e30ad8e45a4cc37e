package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"mori/config"
	"mori/knowledge"
	"mori/model"
	"mori/persona"
	"mori/provider"
	"mori/storage"
)

type messageView struct {
	Role string
	Name string
	HTML template.HTML
	Time time.Time
}

type modelOption struct {
	Name     string
	Selected bool
}

type topicView struct {
	Label       string
	Description string
}

type pageData struct {
	Title          string
	Subtitle       string
	Quote          string
	InputHint      string
	Greeting       string
	CharacterSheet string
	HasLogo        bool
	HasBackground  bool
	Messages       []messageView
	Models         []modelOption
	Topics         []topicView
	AskAbout       []string
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// ChatResponse is returned by POST /api/chat.
type ChatResponse struct {
	Reply    string          `json:"reply"`
	Model    string          `json:"model"`
	Messages []model.Message `json:"messages"`
}

// clientKey names the caller for rate limiting. Only a cookie that names a
// live session counts; unknown cookie values fall back to the remote address.
func (s *Server) clientKey(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if _, err := s.sessions.Get(c.Value); err == nil {
			return "session:" + c.Value
		}
	}
	return addrKey(r)
}

// session returns the caller's session, starting one (and setting the
// cookie) when the cookie is missing or stale.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *storage.Session {
	id := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.GetOrCreate(id, s.bot.DefaultModel())
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Server] new session %s", sess.ID)
		}
	}
	return sess
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	sess.Lock()
	msgs := sess.Conversation().Messages()
	selected := sess.Model()
	sess.Unlock()

	data := pageData{
		Title:          persona.Title,
		Subtitle:       persona.Subtitle,
		Quote:          persona.Quote,
		InputHint:      persona.InputHint,
		CharacterSheet: persona.CharacterSheet,
		HasLogo:        s.assets.Has(LogoFile),
		HasBackground:  s.assets.Has(BackgroundFile),
		AskAbout:       persona.AskAbout,
	}

	if len(msgs) == 0 {
		data.Greeting = starterFor(sess.ID)
	}

	for _, m := range msgs {
		name := "You"
		if m.Role == model.RoleAssistant {
			name = persona.Name
		}
		data.Messages = append(data.Messages, messageView{
			Role: m.Role,
			Name: name,
			HTML: s.renderer.Render(m.Content),
			Time: m.Timestamp,
		})
	}

	for _, name := range s.bot.Models() {
		data.Models = append(data.Models, modelOption{Name: name, Selected: name == selected})
	}

	for _, t := range knowledge.All() {
		data.Topics = append(data.Topics, topicView{Label: t.Label(), Description: t.Render()})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Server] page render failed: %v", err)
	}
}

// starterFor picks the greeting from the last byte of the session's UUID,
// so a visitor keeps one line across reloads.
func starterFor(id string) string {
	u, err := uuid.Parse(id)
	if err != nil {
		return persona.Starter(0)
	}
	return persona.Starter(int(u[len(u)-1]))
}

// turn runs one exchange while holding the session lock.
func (s *Server) turn(ctx context.Context, sess *storage.Session, text, modelName string) (ChatResponse, error) {
	sess.Lock()
	defer sess.Unlock()

	if modelName == "" {
		modelName = sess.Model()
	}

	reply, err := s.bot.Reply(ctx, sess.ID, sess.Conversation(), text, modelName)
	if err != nil {
		return ChatResponse{}, err
	}
	sess.SetModel(modelName)

	return ChatResponse{
		Reply:    reply,
		Model:    modelName,
		Messages: sess.Conversation().Messages(),
	}, nil
}

func (s *Server) handleChatForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	_, err := s.turn(r.Context(), sess, r.PostFormValue("message"), "")
	switch {
	case err == nil, errors.Is(err, model.ErrEmptyMessage):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	sess.Lock()
	sess.Conversation().Clear()
	sess.Touch()
	sess.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	name := r.PostFormValue("model")
	if !s.bot.IsAllowedModel(name) {
		http.Error(w, fmt.Sprintf("Unknown model %q", name), http.StatusBadRequest)
		return
	}

	sess.Lock()
	sess.SetModel(name)
	sess.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	transcript := s.session(w, r).Snapshot()

	data, err := storage.MarshalTranscript(transcript)
	if err != nil {
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.ExportFilename(transcript)))
	_, _ = w.Write(data)
}

func (s *Server) handleAPIChat(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.turn(r.Context(), sess, req.Message, req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// KnowledgeResponse is returned by GET /api/knowledge.
type KnowledgeResponse struct {
	Topic       string          `json:"topic,omitempty"`
	Found       bool            `json:"found"`
	Description string          `json:"description,omitempty"`
	Query       string          `json:"query,omitempty"`
	Results     []knowledge.Hit `json:"results,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Topics      []string        `json:"topics,omitempty"`
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch {
	case q.Get("topic") != "":
		topic := q.Get("topic")
		resp := KnowledgeResponse{Topic: topic, Description: knowledge.Describe(topic)}
		if _, ok := knowledge.Lookup(topic); ok {
			resp.Found = true
		} else {
			resp.Suggestions = knowledge.Suggest(topic, 3)
		}
		writeJSON(w, http.StatusOK, resp)

	case q.Get("q") != "":
		query := q.Get("q")
		hits := knowledge.SearchAll(query)
		if len(hits) > knowledge.MaxSearchResults {
			hits = hits[:knowledge.MaxSearchResults]
		}
		resp := KnowledgeResponse{Query: query, Found: len(hits) > 0, Results: hits}
		if len(hits) == 0 {
			resp.Suggestions = knowledge.Suggest(query, 3)
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		writeJSON(w, http.StatusOK, KnowledgeResponse{Found: true, Topics: knowledge.Names()})
	}
}

// StatsResponse is returned by GET /api/stats.
type StatsResponse struct {
	Sessions   int                   `json:"sessions"`
	Messages   int                   `json:"messages"`
	LastActive *time.Time            `json:"last_active,omitempty"`
	Usage      *storage.UsageSummary `json:"usage,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	live := s.sessions.List()
	resp := StatsResponse{Sessions: len(live)}
	for _, m := range live {
		resp.Messages += m.MessageCount
	}
	if len(live) > 0 {
		resp.LastActive = &live[0].UpdatedAt
	}

	if s.usage != nil {
		sum, err := s.usage.Summary(r.Context())
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Server] usage summary failed: %v", err)
			}
			writeError(w, http.StatusInternalServerError, "usage summary unavailable")
			return
		}
		resp.Usage = &sum
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status        string   `json:"status"`
	MissingModels []string `json:"missing_models,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	missing, err := provider.CheckModels(ctx, s.bot.Provider(), s.bot.Models())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unreachable", Error: err.Error()})
		return
	}

	status := "ok"
	if len(missing) > 0 {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: status, MissingModels: missing})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(message)})
}
