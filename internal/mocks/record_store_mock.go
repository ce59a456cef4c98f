// Package mocks provides in-memory implementations of the core ports with call
// tracking and error injection, for service and handler tests.
package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

// MockRecordStore implements ports.RecordStore over ordered in-memory slices.
// Saves follow the same version rules as the real stores.
type MockRecordStore struct {
	mu sync.RWMutex

	donors   []domain.Donor
	requests []domain.Request

	// Call tracking
	SaveDonorCalls   []domain.Donor
	SaveRequestCalls []domain.Request
	GetDonorCalls    []string
	GetRequestCalls  []string

	// Error injection
	GetDonorError     error
	GetRequestError   error
	ListDonorsError   error
	ListRequestsError error
	SaveDonorError    error
	SaveRequestError  error
}

var _ ports.RecordStore = (*MockRecordStore)(nil)

func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{}
}

// SeedDonor stores donors as-is, bypassing call tracking.
func (m *MockRecordStore) SeedDonor(donors ...domain.Donor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.donors = append(m.donors, donors...)
}

// SeedRequest stores requests as-is, bypassing call tracking.
func (m *MockRecordStore) SeedRequest(requests ...domain.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, requests...)
}

func (m *MockRecordStore) GetDonor(ctx context.Context, id string) (*domain.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetDonorCalls = append(m.GetDonorCalls, id)

	if m.GetDonorError != nil {
		return nil, m.GetDonorError
	}
	for _, d := range m.donors {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, domain.NotFoundError(domain.EntityDonor, id)
}

func (m *MockRecordStore) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetRequestCalls = append(m.GetRequestCalls, id)

	if m.GetRequestError != nil {
		return nil, m.GetRequestError
	}
	for _, r := range m.requests {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.NotFoundError(domain.EntityRequest, id)
}

func (m *MockRecordStore) ListDonors(ctx context.Context) ([]domain.Donor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListDonorsError != nil {
		return nil, m.ListDonorsError
	}
	out := make([]domain.Donor, len(m.donors))
	copy(out, m.donors)
	return out, nil
}

func (m *MockRecordStore) ListRequests(ctx context.Context) ([]domain.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListRequestsError != nil {
		return nil, m.ListRequestsError
	}
	out := make([]domain.Request, len(m.requests))
	copy(out, m.requests)
	return out, nil
}

func (m *MockRecordStore) SaveDonor(ctx context.Context, donor domain.Donor) (*domain.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveDonorCalls = append(m.SaveDonorCalls, donor)

	if m.SaveDonorError != nil {
		return nil, m.SaveDonorError
	}
	for i, d := range m.donors {
		if d.ID != donor.ID {
			continue
		}
		if d.Version != donor.Version {
			return nil, domain.ErrConflict
		}
		donor.Version++
		m.donors[i] = donor
		return &donor, nil
	}
	donor.Version = 1
	m.donors = append(m.donors, donor)
	return &donor, nil
}

func (m *MockRecordStore) SaveRequest(ctx context.Context, req domain.Request) (*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveRequestCalls = append(m.SaveRequestCalls, req)

	if m.SaveRequestError != nil {
		return nil, m.SaveRequestError
	}
	for i, r := range m.requests {
		if r.ID != req.ID {
			continue
		}
		if r.Version != req.Version {
			return nil, domain.ErrConflict
		}
		req.Version++
		m.requests[i] = req
		return &req, nil
	}
	req.Version = 1
	m.requests = append(m.requests, req)
	return &req, nil
}
