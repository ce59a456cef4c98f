package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

// MockLifecyclePublisher implements ports.LifecycleEventPublisher for relay
// tests.
type MockLifecyclePublisher struct {
	mu sync.RWMutex

	PublishedEvents  []ports.StatusChangedEvent
	PublishError     error
	PublishCallCount int
}

var _ ports.LifecycleEventPublisher = (*MockLifecyclePublisher)(nil)

func NewMockLifecyclePublisher() *MockLifecyclePublisher {
	return &MockLifecyclePublisher{}
}

func (m *MockLifecyclePublisher) PublishStatusChanged(ctx context.Context, evt ports.StatusChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// Events returns a copy of the published events.
func (m *MockLifecyclePublisher) Events() []ports.StatusChangedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ports.StatusChangedEvent, len(m.PublishedEvents))
	copy(out, m.PublishedEvents)
	return out
}
