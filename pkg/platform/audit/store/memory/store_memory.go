package memory

import (
	"context"
	"sync"

	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"

	"github.com/google/uuid"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]audit.Event
	order  []uuid.UUID
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[uuid.UUID][]audit.Event)
	s.order = nil
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[uuid.UUID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.RunID]; !ok {
		s.order = append(s.order, event.RunID)
	}
	s.events[event.RunID] = append(s.events[event.RunID], event)
	return nil
}

func (s *InMemoryStore) ListByRun(_ context.Context, runID uuid.UUID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[runID]...), nil
}

// ListAll returns every event, grouped by run in first-seen order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, runID := range s.order {
		all = append(all, s.events[runID]...)
	}
	return all, nil
}

// ListByAction returns the events of one run matching action.
func (s *InMemoryStore) ListByAction(_ context.Context, runID uuid.UUID, action audit.AuditEvent) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Event
	for _, e := range s.events[runID] {
		if e.Action == string(action) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}
