package session

import (
	"slices"
	"sync"
	"time"

	types "github.com/yungbote/prompt-battle/internal/domain"
)

// maxCallsPerSession bounds how many calls a session keeps slots for.
const maxCallsPerSession = 8

// Session is the transient per-browser state: output slots per call, the
// latest call, and the grade history.
type Session struct {
	ID string

	mu           sync.Mutex
	calls        map[string]map[types.Stage]*Slot
	callOrder    []string
	latestCallID string
	grades       []types.GradeRecord
	lastSeen     time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		calls:    make(map[string]map[types.Stage]*Slot),
		lastSeen: now,
	}
}

// reserveCall allocates slots for callID without making it the latest call.
func (s *Session) reserveCall(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocLocked(callID)
}

func (s *Session) allocLocked(callID string) {
	if _, ok := s.calls[callID]; ok {
		return
	}
	slots := make(map[types.Stage]*Slot, len(types.AllStages()))
	for _, st := range types.AllStages() {
		slots[st] = NewSlot()
	}
	s.calls[callID] = slots
}

// beginCall registers callID as the latest call and returns the evicted call
// id, if any. Only begun calls count toward the cap.
func (s *Session) beginCall(callID string) (evicted string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestCallID = callID
	s.allocLocked(callID)
	if slices.Contains(s.callOrder, callID) {
		return ""
	}
	s.callOrder = append(s.callOrder, callID)
	if len(s.callOrder) > maxCallsPerSession {
		evicted = s.callOrder[0]
		s.callOrder = s.callOrder[1:]
		delete(s.calls, evicted)
	}
	return evicted
}

// releaseCall drops a reserved call that was never begun.
func (s *Session) releaseCall(callID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.callOrder, callID) {
		return false
	}
	delete(s.calls, callID)
	return true
}

// Slot returns the slot for a call's stage, or false if the call is unknown
// to this session.
func (s *Session) Slot(callID string, stage types.Stage) (*Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, ok := s.calls[callID]
	if !ok {
		return nil, false
	}
	slot, ok := slots[stage]
	return slot, ok
}

func (s *Session) LatestCallID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestCallID
}

// AppendGrade adds rec to the history; it also becomes the latest grade.
func (s *Session) AppendGrade(rec types.GradeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grades = append(s.grades, rec)
}

// Grades returns a copy of the grade history, oldest first.
func (s *Session) Grades() []types.GradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.GradeRecord, len(s.grades))
	copy(out, s.grades)
	return out
}

func (s *Session) LatestGrade() (types.GradeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.grades) == 0 {
		return types.GradeRecord{}, false
	}
	return s.grades[len(s.grades)-1], true
}

func (s *Session) callIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.calls))
	for id := range s.calls {
		ids = append(ids, id)
	}
	return ids
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
