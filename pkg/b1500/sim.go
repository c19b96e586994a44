package b1500

import (
	"context"
	"fmt"
	"sync"
)

// SimSession is an in-memory analyzer for tests and offline use. Query
// replies come from a canned response table; unmatched queries fail.
type SimSession struct {
	mu        sync.Mutex
	responses map[string][]string
	commands  []string
	closed    bool
}

// NewSimSession creates a simulator with the default identity and an
// empty error queue.
func NewSimSession() *SimSession {
	s := &SimSession{responses: make(map[string][]string)}
	s.Respond("*IDN?", "Keysight Technologies,B1500A,0,A.06.01")
	s.Respond("*STB?", "0")
	s.Respond("*TST?", "0")
	s.Respond("ERRX?", `0,"No Error."`)
	return s
}

// Respond sets the replies for a query. Multiple values are returned in
// order, the last repeating; this scripts sequences like a draining
// error queue.
func (s *SimSession) Respond(cmd string, replies ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[cmd] = replies
}

// Commands returns every command received, writes and queries alike.
func (s *SimSession) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// Write records a command.
func (s *SimSession) Write(_ context.Context, cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.commands = append(s.commands, cmd)
	return nil
}

// Query records a command and serves the scripted reply.
func (s *SimSession) Query(_ context.Context, cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	s.commands = append(s.commands, cmd)

	replies, ok := s.responses[cmd]
	if !ok || len(replies) == 0 {
		return "", fmt.Errorf("no scripted response for %q", cmd)
	}
	reply := replies[0]
	if len(replies) > 1 {
		s.responses[cmd] = replies[1:]
	}
	return reply, nil
}

// Close closes the session.
func (s *SimSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Compile-time interface satisfaction check.
var _ MessageSession = (*SimSession)(nil)
