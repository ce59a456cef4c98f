package matching

import (
	"slices"
	"strings"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

// CompatibleDonors returns every donor compatible with req in input order.
// The result is never nil.
func CompatibleDonors(req domain.Request, donors []domain.Donor) []domain.Donor {
	out := make([]domain.Donor, 0, len(donors))
	for _, d := range donors {
		if IsCompatible(req, d) {
			out = append(out, d)
		}
	}
	return out
}

// DonorFilter narrows a donor listing. Zero fields match everything.
type DonorFilter struct {
	Status       domain.DonorStatus
	DonationType domain.DonationType
	Search       string
}

func (f DonorFilter) Match(d domain.Donor) bool {
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.DonationType != "" {
		// "both" donors show up under either type.
		if d.DonationType != f.DonationType && d.DonationType != domain.DonationBoth {
			return false
		}
	}
	return containsFold(f.Search, d.FirstName, d.LastName, d.Email)
}

// FilterDonors keeps the donors matched by f, preserving order.
func FilterDonors(donors []domain.Donor, f DonorFilter) []domain.Donor {
	out := make([]domain.Donor, 0, len(donors))
	for _, d := range donors {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// RequestFilter narrows a request listing. Zero fields match everything.
type RequestFilter struct {
	Status      domain.RequestStatus
	RequestType domain.RequestType
	Urgency     domain.UrgencyLevel
	Search      string
}

func (f RequestFilter) Match(r domain.Request) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.RequestType != "" && r.RequestType != f.RequestType {
		return false
	}
	if f.Urgency != "" && r.UrgencyLevel != f.Urgency {
		return false
	}
	return containsFold(f.Search, r.PatientFirstName, r.PatientLastName, r.ContactEmail)
}

// FilterRequests keeps the requests matched by f, preserving order.
func FilterRequests(requests []domain.Request, f RequestFilter) []domain.Request {
	out := make([]domain.Request, 0, len(requests))
	for _, r := range requests {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortByUrgency returns a copy of requests ordered most urgent first, then by
// earliest request date. Equal keys keep their input order.
func SortByUrgency(requests []domain.Request) []domain.Request {
	out := slices.Clone(requests)
	slices.SortStableFunc(out, func(a, b domain.Request) int {
		if ra, rb := a.UrgencyLevel.Rank(), b.UrgencyLevel.Rank(); ra != rb {
			return rb - ra
		}
		return a.RequestDate.Compare(b.RequestDate)
	})
	return out
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalDonors     int `json:"totalDonors"`
	PendingDonors   int `json:"pendingDonors"`
	ApprovedDonors  int `json:"approvedDonors"`
	TotalRequests   int `json:"totalRequests"`
	PendingRequests int `json:"pendingRequests"`
	MatchedRequests int `json:"matchedRequests"`
	BloodDonors     int `json:"bloodDonors"`
	OrganDonors     int `json:"organDonors"`
}

func Summarize(donors []domain.Donor, requests []domain.Request) Stats {
	s := Stats{TotalDonors: len(donors), TotalRequests: len(requests)}
	for _, d := range donors {
		switch d.Status {
		case domain.DonorPending:
			s.PendingDonors++
		case domain.DonorApproved:
			s.ApprovedDonors++
		}
		if d.DonatesBlood() {
			s.BloodDonors++
		}
		if d.DonatesOrgan() {
			s.OrganDonors++
		}
	}
	for _, r := range requests {
		switch r.Status {
		case domain.RequestPending:
			s.PendingRequests++
		case domain.RequestMatched:
			s.MatchedRequests++
		}
	}
	return s
}

func containsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
