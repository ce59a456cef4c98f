package matching

import (
	"slices"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

var requestEdges = map[domain.RequestStatus][]domain.RequestStatus{
	domain.RequestPending: {domain.RequestMatched, domain.RequestRejected},
	domain.RequestMatched: {domain.RequestCompleted, domain.RequestRejected},
}

// approved and rejected only reach each other through pending.
var donorEdges = map[domain.DonorStatus][]domain.DonorStatus{
	domain.DonorPending:  {domain.DonorApproved, domain.DonorRejected},
	domain.DonorApproved: {domain.DonorPending},
	domain.DonorRejected: {domain.DonorPending},
}

func CanTransitionRequest(from, to domain.RequestStatus) bool {
	return slices.Contains(requestEdges[from], to)
}

func CanTransitionDonor(from, to domain.DonorStatus) bool {
	return slices.Contains(donorEdges[from], to)
}

// ApplyRequestTransition returns req moved to target. Moving to matched
// requires a donor compatible with req; a nil donor fails the same way as an
// incompatible one. Rejecting a matched request releases its donor reference.
func ApplyRequestTransition(req domain.Request, target domain.RequestStatus, donor *domain.Donor) (domain.Request, error) {
	if !CanTransitionRequest(req.Status, target) {
		return req, requestError(req, target, domain.ErrInvalidTransition)
	}

	switch target {
	case domain.RequestMatched:
		if donor == nil || !IsCompatible(req, *donor) {
			return req, requestError(req, target, domain.ErrIncompatibleDonor)
		}
		req.MatchedDonorID = donor.ID
	case domain.RequestRejected:
		req.MatchedDonorID = ""
	}

	req.Status = target
	return req, nil
}

// ApplyDonorTransition returns donor moved to target.
func ApplyDonorTransition(donor domain.Donor, target domain.DonorStatus) (domain.Donor, error) {
	if !CanTransitionDonor(donor.Status, target) {
		return donor, &domain.TransitionError{
			Entity: domain.EntityDonor,
			ID:     donor.ID,
			From:   string(donor.Status),
			To:     string(target),
			Err:    domain.ErrInvalidTransition,
		}
	}
	donor.Status = target
	return donor, nil
}

func requestError(req domain.Request, target domain.RequestStatus, err error) error {
	return &domain.TransitionError{
		Entity: domain.EntityRequest,
		ID:     req.ID,
		From:   string(req.Status),
		To:     string(target),
		Err:    err,
	}
}
