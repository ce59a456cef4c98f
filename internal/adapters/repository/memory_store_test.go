package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

func TestMemoryStore_DonorRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	registered := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	saved, err := store.SaveDonor(ctx, domain.Donor{
		ID:               "d1",
		FirstName:        "Ana",
		DonationType:     domain.DonationBlood,
		BloodType:        domain.BloodONeg,
		Status:           domain.DonorPending,
		RegistrationDate: registered,
		Details:          map[string]string{"phone": "555-0100"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	got, err := store.GetDonor(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", got.ID)
	assert.Equal(t, "555-0100", got.Details["phone"])
	assert.Equal(t, registered, got.RegistrationDate)

	// Mutating a returned copy must not leak into the store.
	got.Details["phone"] = "changed"
	again, err := store.GetDonor(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "555-0100", again.Details["phone"])
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetDonor(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetRequest(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_VersionConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.SaveRequest(ctx, domain.Request{ID: "r1", Status: domain.RequestPending})
	require.NoError(t, err)

	updated := *first
	updated.Status = domain.RequestRejected
	_, err = store.SaveRequest(ctx, updated)
	require.NoError(t, err)

	// A second writer still holding version 1 loses.
	stale := *first
	stale.Status = domain.RequestMatched
	_, err = store.SaveRequest(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := store.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestMemoryStore_UpdateOfMissingRecordConflicts(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.SaveDonor(context.Background(), domain.Donor{ID: "ghost", Version: 3})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMemoryStore_KeepsCreationDate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	saved, err := store.SaveRequest(ctx, domain.Request{ID: "r1", RequestDate: created})
	require.NoError(t, err)

	saved.RequestDate = time.Now()
	saved.Status = domain.RequestRejected
	updated, err := store.SaveRequest(ctx, *saved)
	require.NoError(t, err)
	assert.Equal(t, created, updated.RequestDate)
}

func TestMemoryStore_ListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, id := range []string{"c", "a", "b"} {
		_, err := store.SaveDonor(ctx, domain.Donor{ID: id})
		require.NoError(t, err)
	}

	donors, err := store.ListDonors(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 3)
	assert.Equal(t, "c", donors[0].ID)
	assert.Equal(t, "a", donors[1].ID)
	assert.Equal(t, "b", donors[2].ID)

	requests, err := store.ListRequests(ctx)
	require.NoError(t, err)
	assert.NotNil(t, requests)
	assert.Empty(t, requests)
}

func TestMemoryStore_ConcurrentWritersOneWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base, err := store.SaveDonor(ctx, domain.Donor{ID: "d1", Status: domain.DonorPending})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := *base
			next.Status = domain.DonorApproved
			_, err := store.SaveDonor(ctx, next)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, conflicts)
}
