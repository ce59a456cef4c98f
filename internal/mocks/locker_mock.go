package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

// MockLocker records lock keys without blocking.
type MockLocker struct {
	mu sync.Mutex

	LockCalls    []string
	ReleaseCalls []string
	LockError    error
}

var _ ports.RecordLocker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{}
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockCalls = append(m.LockCalls, key)

	if m.LockError != nil {
		return nil, m.LockError
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.ReleaseCalls = append(m.ReleaseCalls, key)
		})
	}, nil
}
