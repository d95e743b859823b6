package audit

import (
	"context"
	"sync"
)

// DefaultInMemoryCapacity bounds the in-memory store when no capacity is given.
const DefaultInMemoryCapacity = 10000

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAccount(ctx context.Context, accountID string) ([]Event, error)
}

// InMemoryStore keeps the most recent events in a fixed-size ring. Once full,
// each append overwrites the oldest event.
type InMemoryStore struct {
	mu       sync.RWMutex
	capacity int
	events   []Event
	next     int
}

type InMemoryOption func(*InMemoryStore)

func WithCapacity(n int) InMemoryOption {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{capacity: DefaultInMemoryCapacity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) < s.capacity {
		s.events = append(s.events, event)
		return nil
	}
	s.events[s.next] = event
	s.next = (s.next + 1) % s.capacity
	return nil
}

// ListByAccount returns the retained events for accountID, oldest first.
func (s *InMemoryStore) ListByAccount(_ context.Context, accountID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Event{}
	for i := range s.events {
		event := s.events[(s.next+i)%len(s.events)]
		if event.AccountID == accountID {
			out = append(out, event)
		}
	}
	return out, nil
}

// Len reports how many events are retained.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
