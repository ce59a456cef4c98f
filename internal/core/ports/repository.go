package ports

import (
	"context"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

// RecordStore persists donors and requests. Get methods return an error
// matching domain.ErrNotFound for unknown ids. Save methods insert new records
// and update existing ones; an update whose Version does not match the stored
// record fails with domain.ErrConflict. On success the saved record's Version
// is one higher than the one passed in.
type RecordStore interface {
	GetDonor(ctx context.Context, id string) (*domain.Donor, error)
	GetRequest(ctx context.Context, id string) (*domain.Request, error)
	ListDonors(ctx context.Context) ([]domain.Donor, error)
	ListRequests(ctx context.Context) ([]domain.Request, error)
	SaveDonor(ctx context.Context, donor domain.Donor) (*domain.Donor, error)
	SaveRequest(ctx context.Context, req domain.Request) (*domain.Request, error)
}

// RecordLocker serialises writers on a single record key. The returned
// release function is safe to call more than once.
type RecordLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}
