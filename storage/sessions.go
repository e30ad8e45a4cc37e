package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mori/model"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one visitor's conversation. Sessions live in memory only and
// are gone when the process exits.
//
// The conversation may only be touched while the session is locked; Lock
// and Unlock serialise turns so a double submit cannot interleave messages.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	model     string
	updatedAt time.Time
	conv      *model.Conversation
}

// Transcript is the exported form of a session
type Transcript struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Model     string          `json:"model"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []model.Message `json:"messages"`
}

// SessionMetadata is a lightweight version of Session for listing
type SessionMetadata struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Conversation returns the history. Callers must hold the lock.
func (s *Session) Conversation() *model.Conversation {
	return s.conv
}

// Model returns the selected model. Callers must hold the lock.
func (s *Session) Model() string {
	return s.model
}

// SetModel selects the model for later turns. Callers must hold the lock.
func (s *Session) SetModel(name string) {
	s.model = name
	s.updatedAt = time.Now()
}

// Touch marks the session as used. Callers must hold the lock.
func (s *Session) Touch() {
	s.updatedAt = time.Now()
}

// Snapshot copies the session under its lock.
func (s *Session) Snapshot() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.conv.Messages()
	first := ""
	for _, m := range msgs {
		if m.Role == model.RoleUser {
			first = m.Content
			break
		}
	}

	return Transcript{
		ID:        s.ID,
		Name:      GenerateSessionName(first),
		Model:     s.model,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
		Messages:  msgs,
	}
}

// SessionStore holds every live session, keyed by id
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create starts an empty session with a fresh uuid.
func (s *SessionStore) Create(modelName string) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		model:     modelName,
		updatedAt: now,
		conv:      model.NewConversation(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns a live session or ErrSessionNotFound.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// The boolean reports whether a session was created.
func (s *SessionStore) GetOrCreate(id, modelName string) (*Session, bool) {
	if id != "" {
		if sess, err := s.Get(id); err == nil {
			return sess, false
		}
	}
	return s.Create(modelName), true
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// List returns metadata for all sessions, sorted by update time (newest first)
func (s *SessionStore) List() []SessionMetadata {
	s.mu.RLock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	out := make([]SessionMetadata, 0, len(all))
	for _, sess := range all {
		sess.mu.Lock()
		out = append(out, SessionMetadata{
			ID:           sess.ID,
			Model:        sess.model,
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    sess.updatedAt,
			MessageCount: sess.conv.Len(),
		})
		sess.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// PruneIdle drops sessions not used for longer than maxIdle and returns how
// many were removed. Sessions busy with a turn are skipped.
func (s *SessionStore) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		idle := sess.updatedAt.Before(cutoff)
		sess.mu.Unlock()

		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// MarshalTranscript encodes a transcript with indentation for readability
func MarshalTranscript(t Transcript) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
		"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
	)
	name = replacer.Replace(name)

	// Remove leading/trailing hyphens and dots
	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = strings.TrimRight(name[:50], "-.")
	}

	if name == "" {
		name = "session"
	}

	return name
}

// ExportFilename generates the download name for a transcript
func ExportFilename(t Transcript) string {
	stamp := t.UpdatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	return fmt.Sprintf("mori-session-%s-%s.json", SanitizeFilename(t.Name), stamp.Format("20060102-150405"))
}

// GenerateSessionName generates a session name from the first user message
func GenerateSessionName(firstMessage string) string {
	name := strings.ReplaceAll(firstMessage, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return "Silent climb"
	}

	// Take first 30 runes
	if r := []rune(name); len(r) > 30 {
		name = strings.TrimSpace(string(r[:30])) + "..."
	}

	return name
}
