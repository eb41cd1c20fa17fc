package service

import (
	"context"
	"sync"
)

type clientSessionKey struct{}

// WithClientSession tags ctx with the caller's client session so superseded requests can be detected.
func WithClientSession(ctx context.Context, session string) context.Context {
	if session == "" {
		return ctx
	}
	return context.WithValue(ctx, clientSessionKey{}, session)
}

// ClientSession returns the session stored by WithClientSession.
func ClientSession(ctx context.Context) string {
	session, _ := ctx.Value(clientSessionKey{}).(string)
	return session
}

// RequestTicket identifies one request within a sequenced key. The zero ticket is never stale.
type RequestTicket struct {
	key string
	seq uint64
}

// RequestSequencer implements last-request-wins per key: only the most recently begun request
// for a key may deliver its result.
type RequestSequencer struct {
	mu     sync.Mutex
	next   uint64
	latest map[string]uint64
}

// NewRequestSequencer constructs an empty sequencer.
func NewRequestSequencer() *RequestSequencer {
	return &RequestSequencer{latest: make(map[string]uint64)}
}

// Begin registers a new request for key, superseding any in-flight one. An empty key is not sequenced.
func (s *RequestSequencer) Begin(key string) RequestTicket {
	if s == nil || key == "" {
		return RequestTicket{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.latest[key] = s.next
	return RequestTicket{key: key, seq: s.next}
}

// Current reports whether ticket is still the latest request for its key.
func (s *RequestSequencer) Current(ticket RequestTicket) bool {
	if s == nil || ticket.key == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[ticket.key] == ticket.seq
}

// Finish releases the key once its latest request completes.
func (s *RequestSequencer) Finish(ticket RequestTicket) {
	if s == nil || ticket.key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[ticket.key] == ticket.seq {
		delete(s.latest, ticket.key)
	}
}

// Pending returns the number of keys with an in-flight request.
func (s *RequestSequencer) Pending() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latest)
}
