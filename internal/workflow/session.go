package workflow

import "sync"

// Session tracks the remote connection state. One instance, owned by the
// Orchestrator; transitions happen only through explicit connect and
// disconnect calls fed by the auth collaborator.
type Session struct {
	mu          sync.Mutex
	connected   bool
	authPending bool
}

// Connected reports whether the session currently holds a live connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// AuthPending reports whether a sign-in is currently in flight.
func (s *Session) AuthPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authPending
}

func (s *Session) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

func (s *Session) setAuthPending(v bool) {
	s.mu.Lock()
	s.authPending = v
	s.mu.Unlock()
}

// Disconnect drops the connection state, e.g. after the user clears
// credentials.
func (s *Session) Disconnect() {
	s.setConnected(false)
}
