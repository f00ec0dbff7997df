package session

import (
	"context"
	"strings"
	"sync"
	"time"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

// Store holds live sessions in memory and expires them after an idle TTL.
// It also indexes calls so the worker can reach a call's slots knowing only
// the call id.
type Store struct {
	log *logger.Logger
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	byCall   map[string]string
}

func NewStore(log *logger.Logger, ttl time.Duration) *Store {
	return &Store{
		log:      log.With("component", "SessionStore"),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		byCall:   make(map[string]string),
	}
}

// Get returns the session for id, creating it when absent, and marks it active.
func (st *Store) Get(id string) *Session {
	id = strings.TrimSpace(id)
	now := st.now()
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.touch(now)
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		s.touch(now)
		return s
	}
	s = newSession(id, now)
	st.sessions[id] = s
	return s
}

// Lookup returns an existing session without creating one.
func (st *Store) Lookup(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[strings.TrimSpace(id)]
	return s, ok
}

// BeginCall makes callID the latest call of the session and allocates its slots.
func (st *Store) BeginCall(sessionID, callID string) *Session {
	s := st.Get(sessionID)
	evicted := s.beginCall(callID)

	st.mu.Lock()
	st.byCall[callID] = s.ID
	if evicted != "" {
		delete(st.byCall, evicted)
	}
	st.mu.Unlock()
	return s
}

// ReserveCall allocates the slots of callID so results can land before the
// call is begun. The session's latest call is left unchanged.
func (st *Store) ReserveCall(sessionID, callID string) {
	s := st.Get(sessionID)
	s.reserveCall(callID)

	st.mu.Lock()
	st.byCall[callID] = s.ID
	st.mu.Unlock()
}

// ReleaseCall undoes ReserveCall for a call that will never run.
func (st *Store) ReleaseCall(sessionID, callID string) {
	s, ok := st.Lookup(sessionID)
	if !ok || !s.releaseCall(callID) {
		return
	}
	st.mu.Lock()
	delete(st.byCall, callID)
	st.mu.Unlock()
}

// SlotFor finds the slot of a call's stage through the call index.
func (st *Store) SlotFor(callID string, stage types.Stage) (*Slot, bool) {
	st.mu.RLock()
	sid, ok := st.byCall[callID]
	var s *Session
	if ok {
		s = st.sessions[sid]
	}
	st.mu.RUnlock()
	if s == nil {
		return nil, false
	}
	return s.Slot(callID, stage)
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.idleSince(now) <= st.ttl {
			continue
		}
		for _, callID := range s.callIDs() {
			delete(st.byCall, callID)
		}
		delete(st.sessions, id)
		n++
	}
	return n
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(); n > 0 {
				st.log.Debug("expired idle sessions", "count", n)
			}
		}
	}
}
