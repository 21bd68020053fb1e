package audit

import (
	"context"
	"slices"
	"sync"
)

// Session is the caller's unit of work. Stage adds the entry to the pending
// work; committing it is the caller's decision.
type Session interface {
	Stage(ctx context.Context, entry Entry) error
}

// SessionFunc adapts a plain function to Session.
type SessionFunc func(ctx context.Context, entry Entry) error

func (f SessionFunc) Stage(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}

// MemorySession keeps staged entries in memory until Commit or Rollback.
type MemorySession struct {
	mu        sync.Mutex
	pending   []Entry
	committed []Entry
}

func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

func (s *MemorySession) Stage(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, entry)
	return nil
}

// Pending returns the entries staged since the last Commit or Rollback.
func (s *MemorySession) Pending() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pending)
}

// Committed returns every committed entry.
func (s *MemorySession) Committed() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.committed)
}

func (s *MemorySession) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, s.pending...)
	s.pending = nil
}

func (s *MemorySession) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}
