package notifications

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-process Storage for tests and local tooling.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]map[string]Notification
	now   func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: make(map[string]map[string]Notification),
		now:   time.Now,
	}
}

func (s *MemoryStorage) Create(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.items[n.UserID]
	if !ok {
		user = make(map[string]Notification)
		s.items[n.UserID] = user
	}
	user[n.ID] = n
	return nil
}

func (s *MemoryStorage) List(_ context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	all := make([]Notification, 0, len(s.items[userID]))
	for _, n := range s.items[userID] {
		all = append(all, n)
	}
	s.mu.RUnlock()

	return opts.apply(all), nil
}

func (s *MemoryStorage) MarkRead(_ context.Context, userID string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.items[userID]
	for _, id := range ids {
		n, ok := user[id]
		if !ok {
			return ErrNotificationNotFound
		}
		if !n.Read {
			n.MarkAsRead(s.now())
			user[id] = n
		}
	}
	return nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// All returns every stored notification across recipients.
func (s *MemoryStorage) All() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Notification
	for _, user := range s.items {
		for _, n := range user {
			out = append(out, n)
		}
	}
	return ListOptions{}.apply(out)
}
