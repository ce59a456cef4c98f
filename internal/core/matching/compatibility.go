// Package matching decides which donors can serve a request and which status
// changes donors and requests may undergo. Everything here is pure: no I/O, no
// shared state, safe for concurrent use.
package matching

import "github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"

// IsCompatible reports whether donor may be offered against req.
//
// Blood matching is deliberately simplified: exact group equality, or an O-
// donor. An unknown or missing group on either side counts as compatible.
func IsCompatible(req domain.Request, donor domain.Donor) bool {
	if donor.Status != domain.DonorApproved {
		return false
	}

	switch need := req.Need().(type) {
	case domain.BloodNeed:
		switch offer := donor.Offer().(type) {
		case domain.BloodOffer:
			return bloodMatches(need.Blood, offer.Blood)
		case domain.CombinedOffer:
			return bloodMatches(need.Blood, offer.Blood)
		default:
			return false
		}
	case domain.OrganNeed:
		switch offer := donor.Offer().(type) {
		case domain.OrganOffer:
			return organMatches(need.Organ, offer.Organ)
		case domain.CombinedOffer:
			return organMatches(need.Organ, offer.Organ)
		default:
			return false
		}
	default:
		return true
	}
}

func bloodMatches(patient, donor domain.BloodType) bool {
	if !patient.Known() || !donor.Known() {
		return true
	}
	return patient == donor || donor == domain.BloodONeg
}

func organMatches(needed, offered domain.OrganType) bool {
	return needed == "" ||
		offered == "" ||
		needed == offered ||
		offered == domain.OrganMultiple
}
