package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/matching"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/metrics"
)

// LifecycleService applies matching rules to stored records. Writers hold a
// per-record lock and re-read the record under it, so a transition is always
// validated against the latest stored state.
type LifecycleService struct {
	store  ports.RecordStore
	locker ports.RecordLocker
	logger *zap.Logger
}

var _ ports.LifecycleService = (*LifecycleService)(nil)

func NewLifecycleService(store ports.RecordStore, locker ports.RecordLocker, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		store:  store,
		locker: locker,
		logger: logger.Named("lifecycle"),
	}
}

func requestLockKey(id string) string { return "request:" + id }
func donorLockKey(id string) string   { return "donor:" + id }

func (s *LifecycleService) GetDonor(ctx context.Context, id string) (*domain.Donor, error) {
	return s.store.GetDonor(ctx, id)
}

func (s *LifecycleService) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	return s.store.GetRequest(ctx, id)
}

func (s *LifecycleService) SearchDonors(ctx context.Context, f matching.DonorFilter) ([]domain.Donor, error) {
	donors, err := s.store.ListDonors(ctx)
	if err != nil {
		return nil, err
	}
	return matching.FilterDonors(donors, f), nil
}

func (s *LifecycleService) SearchRequests(ctx context.Context, f matching.RequestFilter, byUrgency bool) ([]domain.Request, error) {
	requests, err := s.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	requests = matching.FilterRequests(requests, f)
	if byUrgency {
		requests = matching.SortByUrgency(requests)
	}
	return requests, nil
}

// CompatibleDonors returns the stored donors compatible with the request, in
// store order.
func (s *LifecycleService) CompatibleDonors(ctx context.Context, requestID string) ([]domain.Donor, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	donors, err := s.store.ListDonors(ctx)
	if err != nil {
		return nil, err
	}

	compatible := matching.CompatibleDonors(*req, donors)
	metrics.CompatibleDonors.WithLabelValues(string(req.RequestType)).Observe(float64(len(compatible)))
	return compatible, nil
}

// TransitionRequest moves a request to target. donorID is only read when
// target is matched. The donor record itself is left untouched.
func (s *LifecycleService) TransitionRequest(
	ctx context.Context,
	requestID string,
	target domain.RequestStatus,
	donorID string,
) (*domain.Request, error) {
	release, err := s.lock(ctx, requestLockKey(requestID))
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	next, err := s.applyRequest(ctx, *req, target, donorID)
	metrics.ObserveTransition(domain.EntityRequest, string(req.Status), string(target), err)
	if err != nil {
		s.logger.Info("request transition refused",
			zap.String("request_id", requestID),
			zap.String("from", string(req.Status)),
			zap.String("to", string(target)),
			zap.String("donor_id", donorID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("request transitioned",
		zap.String("request_id", next.ID),
		zap.String("from", string(req.Status)),
		zap.String("to", string(next.Status)),
		zap.String("matched_donor_id", next.MatchedDonorID),
	)
	return next, nil
}

func (s *LifecycleService) applyRequest(
	ctx context.Context,
	req domain.Request,
	target domain.RequestStatus,
	donorID string,
) (*domain.Request, error) {
	if !matching.CanTransitionRequest(req.Status, target) {
		_, err := matching.ApplyRequestTransition(req, target, nil)
		return nil, err
	}

	var donor *domain.Donor
	if target == domain.RequestMatched && donorID != "" {
		release, err := s.lock(ctx, donorLockKey(donorID))
		if err != nil {
			return nil, err
		}
		defer release()

		donor, err = s.store.GetDonor(ctx, donorID)
		if err != nil {
			return nil, err
		}
	}

	next, err := matching.ApplyRequestTransition(req, target, donor)
	if err != nil {
		return nil, err
	}

	if donor != nil {
		if err := s.ensureDonorAvailable(ctx, req, donor.ID); err != nil {
			return nil, err
		}
	}

	return s.store.SaveRequest(ctx, next)
}

// ensureDonorAvailable refuses a donor that already backs another matched
// request.
func (s *LifecycleService) ensureDonorAvailable(ctx context.Context, req domain.Request, donorID string) error {
	requests, err := s.store.ListRequests(ctx)
	if err != nil {
		return err
	}
	for _, other := range requests {
		if other.ID != req.ID && other.Active() && other.MatchedDonorID == donorID {
			return &domain.TransitionError{
				Entity: domain.EntityRequest,
				ID:     req.ID,
				From:   string(req.Status),
				To:     string(domain.RequestMatched),
				Err:    fmt.Errorf("request %s: %w", other.ID, domain.ErrDonorUnavailable),
			}
		}
	}
	return nil
}

// TransitionDonor moves a donor to target.
func (s *LifecycleService) TransitionDonor(ctx context.Context, donorID string, target domain.DonorStatus) (*domain.Donor, error) {
	release, err := s.lock(ctx, donorLockKey(donorID))
	if err != nil {
		return nil, err
	}
	defer release()

	donor, err := s.store.GetDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}

	saved, err := s.applyDonor(ctx, *donor, target)
	metrics.ObserveTransition(domain.EntityDonor, string(donor.Status), string(target), err)
	if err != nil {
		s.logger.Info("donor transition refused",
			zap.String("donor_id", donorID),
			zap.String("from", string(donor.Status)),
			zap.String("to", string(target)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("donor transitioned",
		zap.String("donor_id", saved.ID),
		zap.String("from", string(donor.Status)),
		zap.String("to", string(saved.Status)),
	)
	return saved, nil
}

func (s *LifecycleService) applyDonor(ctx context.Context, donor domain.Donor, target domain.DonorStatus) (*domain.Donor, error) {
	next, err := matching.ApplyDonorTransition(donor, target)
	if err != nil {
		return nil, err
	}
	return s.store.SaveDonor(ctx, next)
}

func (s *LifecycleService) Stats(ctx context.Context) (matching.Stats, error) {
	donors, err := s.store.ListDonors(ctx)
	if err != nil {
		return matching.Stats{}, err
	}
	requests, err := s.store.ListRequests(ctx)
	if err != nil {
		return matching.Stats{}, err
	}
	return matching.Summarize(donors, requests), nil
}

func (s *LifecycleService) lock(ctx context.Context, key string) (func(), error) {
	stop := metrics.TrackLockWait()
	release, err := s.locker.Lock(ctx, key)
	stop()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	return release, nil
}
