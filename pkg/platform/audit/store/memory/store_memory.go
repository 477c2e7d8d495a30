package memory

import (
	"context"
	"sync"

	id "impactledger/pkg/domain"
	audit "impactledger/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process, grouped by delegate.
type InMemoryStore struct {
	mu     sync.RWMutex
	all    []audit.Event
	events map[id.DelegateID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.DelegateID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = nil
	s.events = make(map[id.DelegateID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, event)
	s.events[event.DelegateID] = append(s.events[event.DelegateID], event)
	return nil
}

func (s *InMemoryStore) ListByDelegate(_ context.Context, delegateID id.DelegateID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[delegateID]...), nil
}

// ListRecent returns up to limit events in append order, most recent last.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.all) - limit
	if start < 0 {
		start = 0
	}
	return append([]audit.Event{}, s.all[start:]...), nil
}
