package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/hud"
)

// ErrSessionNotFound is returned for unknown or evicted session ids.
var ErrSessionNotFound = errors.New("session not found")

// =============================================================================
// SESSION
// =============================================================================

// Session pairs one engine with its HUD. Handlers hold mu for the whole
// request so that propose and commit never interleave.
type Session struct {
	ID   string
	Seed int64

	mu       sync.Mutex
	engine   *engine.Engine
	hud      *hud.State
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) { s.lastSeen = now }

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore is the in-memory registry of live sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session), now: time.Now}
}

// Add registers a new session under a fresh id.
func (st *SessionStore) Add(e *engine.Engine, h *hud.State, seed int64) *Session {
	s := &Session{ID: uuid.NewString(), Seed: seed, engine: e, hud: h, lastSeen: st.now()}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Adopt registers a restored session under its archived id. If the id is
// already live, for example restored by a concurrent request, the live
// session is returned instead.
func (st *SessionStore) Adopt(id string, e *engine.Engine, h *hud.State, seed int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := &Session{ID: id, Seed: seed, engine: e, hud: h, lastSeen: st.now()}
	st.sessions[id] = s
	return s
}

// Get returns the live session with the given id.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// EvictIdle removes sessions not seen since the cutoff and returns how many
// were removed. Sessions busy with a request are skipped.
func (st *SessionStore) EvictIdle(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for id, s := range st.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			evicted++
		}
	}
	return evicted
}
