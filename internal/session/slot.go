package session

import (
	"context"
	"sync"
)

// Slot is a single-assignment result for one stage of one call. The first
// Resolve or Reject wins; later calls are ignored.
type Slot struct {
	once   sync.Once
	done   chan struct{}
	output string
	err    error
}

func NewSlot() *Slot {
	return &Slot{done: make(chan struct{})}
}

// Resolve completes the slot with output. Reports whether this call completed it.
func (s *Slot) Resolve(output string) bool {
	return s.complete(output, nil)
}

// Reject completes the slot with err.
func (s *Slot) Reject(err error) bool {
	return s.complete("", err)
}

func (s *Slot) complete(output string, err error) bool {
	won := false
	s.once.Do(func() {
		s.output = output
		s.err = err
		won = true
		close(s.done)
	})
	return won
}

// Done is closed once the slot holds a value or an error.
func (s *Slot) Done() <-chan struct{} {
	return s.done
}

func (s *Slot) Wait(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.done:
		return s.output, s.err
	}
}

// Peek returns the value without blocking; ok is false while pending.
func (s *Slot) Peek() (output string, err error, ok bool) {
	select {
	case <-s.done:
		return s.output, s.err, true
	default:
		return "", nil, false
	}
}
