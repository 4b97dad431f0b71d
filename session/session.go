// Package session records the native toolchain's availability across the
// many incremental compiles of one development build process.
package session

import "sync"

// State is the availability state of the native toolchain.
type State int

// Enumeration of session states
const (
	// Ready is the initial state: native compilation may be attempted.
	Ready State = iota

	// Unavailable is terminal for the life of the session.  It is entered the
	// first time the toolchain's environment check fails.
	Unavailable
)

func (s State) String() string {
	if s == Unavailable {
		return "unavailable"
	}

	return "ready"
}

// Session is the dev-mode session state.  A fresh session is created for
// every build process and passed into every development compile.  It is safe
// for concurrent use: the only transition is idempotent.
type Session struct {
	m       sync.Mutex
	state   State
	message string
}

// New creates a session in the Ready state.
func New() *Session {
	return &Session{}
}

// State returns the current state of the session.
func (s *Session) State() State {
	s.m.Lock()
	defer s.m.Unlock()

	return s.state
}

// Ready reports whether native compilation may still be attempted.
func (s *Session) Ready() bool {
	return s.State() == Ready
}

// Message returns the diagnostic message recorded when the session became
// unavailable.
func (s *Session) Message() string {
	s.m.Lock()
	defer s.m.Unlock()

	return s.message
}

// Check runs check while holding the session, so concurrent callers wait for
// its outcome instead of checking themselves.  check is not run once the
// session is Unavailable.  A failing check moves the session to Unavailable
// with its message; transitioned is true only for that call.
func (s *Session) Check(check func() (ok bool, message string)) (ready, transitioned bool) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.state == Unavailable {
		return false, false
	}

	ok, message := check()
	if ok {
		return true, false
	}

	s.state = Unavailable
	s.message = message
	return false, true
}

// MarkUnavailable moves the session to Unavailable.  It returns true only for
// the call that performed the transition so that the caller can surface the
// diagnostic exactly once; later calls change nothing.
func (s *Session) MarkUnavailable(message string) bool {
	s.m.Lock()
	defer s.m.Unlock()

	if s.state == Unavailable {
		return false
	}

	s.state = Unavailable
	s.message = message
	return true
}
