// Package server is the browser chat: a single page that forwards each
// message to the Chatbot and renders the history.
//
// Endpoints:
//   - GET  /                page with history, model selector, topic list
//   - POST /chat            one turn from the page form
//   - POST /clear           drop the history
//   - POST /model           select a model from the allow-list
//   - GET  /export          download the transcript as JSON
//   - POST /api/chat        one turn, JSON in and out
//   - GET  /api/knowledge   topic lookup (?topic=) or search (?q=)
//   - GET  /api/stats       usage ledger summary
//   - GET  /healthz         inference service reachability
//   - GET  /assets/{name}   optional bg.jpeg and logo.png
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"mori/config"
	"mori/model"
	"mori/storage"
)

const (
	// DefaultListen is where the page is served unless configured otherwise.
	DefaultListen = "127.0.0.1:8501"

	// SessionCookie carries the session id.
	SessionCookie = "mori_session"

	// MaxRequestBodySize caps every request body (64KB).
	MaxRequestBodySize = 64 * 1024

	// SessionIdleTimeout is how long an untouched session is kept.
	SessionIdleTimeout = 12 * time.Hour

	janitorInterval = 10 * time.Minute
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// UsageSource is the read side of the usage ledger.
type UsageSource interface {
	Summary(ctx context.Context) (storage.UsageSummary, error)
}

// Options configure a Server.
type Options struct {
	Listen        string
	AssetsDir     string
	RatePerSecond float64
	RateBurst     int
}

// OptionsFrom maps application settings onto server options.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Listen:        cfg.Listen,
		AssetsDir:     cfg.AssetsDir,
		RatePerSecond: cfg.RatePerSecond,
		RateBurst:     cfg.RateBurst,
	}
}

// Server is the HTTP front end.
type Server struct {
	opts     Options
	bot      *model.Chatbot
	sessions *storage.SessionStore
	usage    UsageSource

	router   *http.ServeMux
	server   *http.Server
	page     *template.Template
	renderer *Renderer
	assets   *Assets
	limiter  *RateLimiter
}

// NewServer wires the routes. usage may be nil when the ledger is disabled.
func NewServer(opts Options, bot *model.Chatbot, sessions *storage.SessionStore, usage UsageSource) (*Server, error) {
	if bot == nil {
		return nil, errors.New("server needs a chatbot")
	}
	if opts.Listen == "" {
		opts.Listen = DefaultListen
	}
	if sessions == nil {
		sessions = storage.NewSessionStore()
	}

	page, err := template.New("page.html").Funcs(template.FuncMap{
		"clock": func(t time.Time) string { return t.Format("15:04") },
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	s := &Server{
		opts:     opts,
		bot:      bot,
		sessions: sessions,
		usage:    usage,
		router:   http.NewServeMux(),
		page:     page,
		renderer: NewRenderer(),
		assets:   LoadAssets(opts.AssetsDir),
		limiter:  NewRateLimiter(opts.RatePerSecond, opts.RateBurst),
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	limited := RateLimitMiddleware(s.limiter, s.clientKey)

	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.Handle("POST /chat", limited(http.HandlerFunc(s.handleChatForm)))
	s.router.HandleFunc("POST /clear", s.handleClear)
	s.router.HandleFunc("POST /model", s.handleModel)
	s.router.HandleFunc("GET /export", s.handleExport)

	s.router.Handle("POST /api/chat", limited(http.HandlerFunc(s.handleAPIChat)))
	s.router.HandleFunc("GET /api/knowledge", s.handleKnowledge)
	s.router.HandleFunc("GET /api/stats", s.handleStats)
	s.router.HandleFunc("GET /healthz", s.handleHealth)

	s.router.HandleFunc("GET /assets/{name}", s.assets.serve)
	static, _ := fs.Sub(staticFS, "static")
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(),
		BodyLimitMiddleware(MaxRequestBodySize),
	)(s.router)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.opts.Listen
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.janitor(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// janitor drops idle sessions and their rate limiters.
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.sessions.PruneIdle(SessionIdleTimeout)
			s.limiter.Cleanup(SessionIdleTimeout)
			if removed > 0 && config.DebugLog != nil {
				config.DebugLog.Printf("[Server] pruned %d idle sessions, %d live", removed, s.sessions.Len())
			}
		}
	}
}
