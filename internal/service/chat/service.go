package chat

import (
	"sync"
	"time"

	"github.com/krittin/healthchat/backend/internal/model/chat"
)

// Service is the process-wide session memory store. Sessions are created
// lazily on first reference and live for the process lifetime; an optional
// history limit bounds how many turns a session retains.
type Service struct {
	mu        sync.RWMutex
	sessions  map[string]chat.Session
	histories map[string][]chat.Turn
	gates     map[string]*sync.Mutex

	historyLimit int
}

// NewService bootstraps the in-memory store. historyLimit <= 0 keeps history
// unbounded.
func NewService(historyLimit int) *Service {
	return &Service{
		sessions:     make(map[string]chat.Session),
		histories:    make(map[string][]chat.Turn),
		gates:        make(map[string]*sync.Mutex),
		historyLimit: historyLimit,
	}
}

// Acquire serializes whole requests on the same session and returns the
// release func. Requests on different session ids proceed independently.
func (s *Service) Acquire(sessionID string) func() {
	s.mu.Lock()
	gate, ok := s.gates[sessionID]
	if !ok {
		gate = &sync.Mutex{}
		s.gates[sessionID] = gate
	}
	s.mu.Unlock()

	gate.Lock()
	return gate.Unlock
}

// History returns a copy of the session's ordered turn history, creating the
// session on first access.
func (s *Service) History(sessionID string) []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLocked(sessionID)
	history := s.histories[sessionID]
	copied := make([]chat.Turn, len(history))
	copy(copied, history)
	return copied
}

// AppendExchange stores a completed turn pair in request order. The pair is
// appended atomically: a failed request never leaves a lone user turn behind.
func (s *Service) AppendExchange(sessionID, userContent, assistantContent string) {
	now := time.Now().UTC()
	user := chat.Turn{Role: chat.RoleUser, Content: userContent, CreatedAt: now}
	assistant := chat.Turn{Role: chat.RoleAssistant, Content: assistantContent, CreatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLocked(sessionID)
	history := append(s.histories[sessionID], user, assistant)
	if s.historyLimit > 0 && len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	s.histories[sessionID] = history
}

// Session returns the session record, creating it on first access.
func (s *Service) Session(sessionID string) chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLocked(sessionID)
	return s.sessions[sessionID]
}

// ensureLocked lazily provisions a session. Caller must hold mu.
func (s *Service) ensureLocked(sessionID string) {
	if _, ok := s.sessions[sessionID]; ok {
		return
	}
	s.sessions[sessionID] = chat.Session{ID: sessionID, CreatedAt: time.Now().UTC()}
	s.histories[sessionID] = make([]chat.Turn, 0, 16)
}
