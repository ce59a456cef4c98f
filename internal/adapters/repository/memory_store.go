package repository

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

// MemoryStore is an in-process ports.RecordStore. Lists come back in
// insertion order. Nothing survives a restart.
type MemoryStore struct {
	mu sync.RWMutex

	donors       map[string]domain.Donor
	donorOrder   []string
	requests     map[string]domain.Request
	requestOrder []string
}

var _ ports.RecordStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		donors:   make(map[string]domain.Donor),
		requests: make(map[string]domain.Request),
	}
}

func (s *MemoryStore) GetDonor(_ context.Context, id string) (*domain.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.donors[id]
	if !ok {
		return nil, domain.NotFoundError(domain.EntityDonor, id)
	}
	d.Details = maps.Clone(d.Details)
	return &d, nil
}

func (s *MemoryStore) GetRequest(_ context.Context, id string) (*domain.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, domain.NotFoundError(domain.EntityRequest, id)
	}
	r.Details = maps.Clone(r.Details)
	return &r, nil
}

func (s *MemoryStore) ListDonors(_ context.Context) ([]domain.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Donor, 0, len(s.donorOrder))
	for _, id := range s.donorOrder {
		d := s.donors[id]
		d.Details = maps.Clone(d.Details)
		out = append(out, d)
	}
	return out, nil
}

func (s *MemoryStore) ListRequests(_ context.Context) ([]domain.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Request, 0, len(s.requestOrder))
	for _, id := range s.requestOrder {
		r := s.requests[id]
		r.Details = maps.Clone(r.Details)
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) SaveDonor(_ context.Context, donor domain.Donor) (*domain.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.donors[donor.ID]
	if err := checkVersion(donor.ID, exists, stored.Version, donor.Version); err != nil {
		return nil, err
	}
	if exists {
		donor.RegistrationDate = stored.RegistrationDate
	} else {
		s.donorOrder = append(s.donorOrder, donor.ID)
	}

	donor.Version++
	donor.Details = maps.Clone(donor.Details)
	s.donors[donor.ID] = donor

	out := donor
	out.Details = maps.Clone(donor.Details)
	return &out, nil
}

func (s *MemoryStore) SaveRequest(_ context.Context, req domain.Request) (*domain.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.requests[req.ID]
	if err := checkVersion(req.ID, exists, stored.Version, req.Version); err != nil {
		return nil, err
	}
	if exists {
		req.RequestDate = stored.RequestDate
	} else {
		s.requestOrder = append(s.requestOrder, req.ID)
	}

	req.Version++
	req.Details = maps.Clone(req.Details)
	s.requests[req.ID] = req

	out := req
	out.Details = maps.Clone(req.Details)
	return &out, nil
}

func checkVersion(id string, exists bool, stored, have int64) error {
	switch {
	case !exists && have != 0:
		return fmt.Errorf("%s no longer exists: %w", id, domain.ErrConflict)
	case exists && stored != have:
		return fmt.Errorf("%s at version %d, have %d: %w", id, stored, have, domain.ErrConflict)
	}
	return nil
}
