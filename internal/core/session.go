package core

import (
	"fmt"
	"sync/atomic"
)

// Session is the body's borrow-only view of the acquired resources. Like a
// scope-guard handle, its validity ends with the engine run: a Session
// smuggled out of the body panics on first use.
type Session struct {
	values map[string]any
	closed atomic.Bool
}

func newSession() *Session {
	return &Session{values: make(map[string]any)}
}

func (s *Session) put(id string, value any) {
	s.values[id] = value
}

func (s *Session) close() {
	s.closed.Store(true)
}

// Value returns the acquired value for a resource ID.
func (s *Session) Value(id string) (any, bool) {
	s.check()
	v, ok := s.values[id]
	return v, ok
}

// MustValue is Value but panics for an unknown resource ID.
func (s *Session) MustValue(id string) any {
	s.check()
	v, ok := s.values[id]
	if !ok {
		panic(fmt.Sprintf("core: no acquired resource %q in session", id))
	}
	return v
}

func (s *Session) check() {
	if s.closed.Load() {
		panic("core: session used outside the engine run that issued it")
	}
}
