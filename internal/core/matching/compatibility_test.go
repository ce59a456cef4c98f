package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

var (
	allBloodTypes = []domain.BloodType{
		domain.BloodAPos, domain.BloodANeg, domain.BloodBPos, domain.BloodBNeg,
		domain.BloodABPos, domain.BloodABNeg, domain.BloodOPos, domain.BloodONeg,
		domain.BloodUnknown, "",
	}
	allOrganTypes = []domain.OrganType{
		domain.OrganKidney, domain.OrganLiver, domain.OrganHeart, domain.OrganLung,
		domain.OrganPancreas, domain.OrganCornea, domain.OrganBoneMarrow, domain.OrganTissue,
		domain.OrganMultiple, "",
	}
	allDonationTypes = []domain.DonationType{domain.DonationBlood, domain.DonationOrgan, domain.DonationBoth}
)

func approvedDonor(dt domain.DonationType, blood domain.BloodType, organ domain.OrganType) domain.Donor {
	return domain.Donor{ID: "d1", DonationType: dt, BloodType: blood, OrganType: organ, Status: domain.DonorApproved}
}

func TestIsCompatible_Table(t *testing.T) {
	tests := []struct {
		name  string
		req   domain.Request
		donor domain.Donor
		want  bool
	}{
		{
			name:  "blood exact match",
			req:   domain.Request{RequestType: domain.RequestBlood, PatientBloodType: domain.BloodAPos},
			donor: approvedDonor(domain.DonationBlood, domain.BloodAPos, ""),
			want:  true,
		},
		{
			name:  "blood mismatch",
			req:   domain.Request{RequestType: domain.RequestBlood, PatientBloodType: domain.BloodAPos},
			donor: approvedDonor(domain.DonationBlood, domain.BloodBPos, ""),
			want:  false,
		},
		{
			name:  "O+ is not universal",
			req:   domain.Request{RequestType: domain.RequestBlood, PatientBloodType: domain.BloodABPos},
			donor: approvedDonor(domain.DonationBlood, domain.BloodOPos, ""),
			want:  false,
		},
		{
			name:  "O- patient only takes O-",
			req:   domain.Request{RequestType: domain.RequestBlood, PatientBloodType: domain.BloodONeg},
			donor: approvedDonor(domain.DonationBoth, domain.BloodANeg, domain.OrganKidney),
			want:  false,
		},
		{
			name:  "unknown donor blood type",
			req:   domain.Request{RequestType: domain.RequestBlood, PatientBloodType: domain.BloodAPos},
			donor: approvedDonor(domain.DonationBlood, domain.BloodUnknown, ""),
			want:  true,
		},
		{
			name:  "missing patient blood type",
			req:   domain.Request{RequestType: domain.RequestBlood},
			donor: approvedDonor(domain.DonationBlood, domain.BloodBNeg, ""),
			want:  true,
		},
		{
			name:  "both donor serves blood",
			req:   domain.Request{RequestType: domain.RequestBlood, PatientBloodType: domain.BloodBNeg},
			donor: approvedDonor(domain.DonationBoth, domain.BloodBNeg, domain.OrganLiver),
			want:  true,
		},
		{
			name:  "organ exact match",
			req:   domain.Request{RequestType: domain.RequestOrgan, OrganNeeded: domain.OrganKidney},
			donor: approvedDonor(domain.DonationOrgan, "", domain.OrganKidney),
			want:  true,
		},
		{
			name:  "organ mismatch",
			req:   domain.Request{RequestType: domain.RequestOrgan, OrganNeeded: domain.OrganKidney},
			donor: approvedDonor(domain.DonationOrgan, "", domain.OrganHeart),
			want:  false,
		},
		{
			name:  "organ not specified on request",
			req:   domain.Request{RequestType: domain.RequestOrgan},
			donor: approvedDonor(domain.DonationOrgan, "", domain.OrganHeart),
			want:  true,
		},
		{
			name:  "organ not specified on donor",
			req:   domain.Request{RequestType: domain.RequestOrgan, OrganNeeded: domain.OrganLung},
			donor: approvedDonor(domain.DonationBoth, domain.BloodAPos, ""),
			want:  true,
		},
		{
			name:  "blood donor cannot serve organ request",
			req:   domain.Request{RequestType: domain.RequestOrgan, OrganNeeded: domain.OrganLung},
			donor: approvedDonor(domain.DonationBlood, domain.BloodAPos, domain.OrganLung),
			want:  false,
		},
		{
			name:  "unknown request type is permissive",
			req:   domain.Request{RequestType: "plasma"},
			donor: approvedDonor(domain.DonationBlood, domain.BloodAPos, ""),
			want:  true,
		},
		{
			name:  "unknown request type still needs approval",
			req:   domain.Request{RequestType: "plasma"},
			donor: domain.Donor{DonationType: domain.DonationBlood, Status: domain.DonorPending},
			want:  false,
		},
		{
			name:  "unknown donation type never serves blood",
			req:   domain.Request{RequestType: domain.RequestBlood},
			donor: approvedDonor("plasma", domain.BloodAPos, ""),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompatible(tt.req, tt.donor))
		})
	}
}

func TestIsCompatible_UnapprovedDonorsNeverMatch(t *testing.T) {
	requests := []domain.Request{
		{RequestType: domain.RequestBlood, PatientBloodType: domain.BloodAPos},
		{RequestType: domain.RequestBlood},
		{RequestType: domain.RequestOrgan, OrganNeeded: domain.OrganHeart},
		{RequestType: domain.RequestOrgan},
		{RequestType: "plasma"},
	}

	for _, status := range []domain.DonorStatus{domain.DonorPending, domain.DonorRejected, ""} {
		for _, dt := range allDonationTypes {
			for _, blood := range allBloodTypes {
				for _, organ := range allOrganTypes {
					donor := domain.Donor{DonationType: dt, BloodType: blood, OrganType: organ, Status: status}
					for _, req := range requests {
						assert.False(t, IsCompatible(req, donor), "status=%q donor=%+v req=%+v", status, donor, req)
					}
				}
			}
		}
	}
}

func TestIsCompatible_OrganOnlyDonorsNeverServeBlood(t *testing.T) {
	for _, patient := range allBloodTypes {
		for _, blood := range allBloodTypes {
			req := domain.Request{RequestType: domain.RequestBlood, PatientBloodType: patient}
			donor := approvedDonor(domain.DonationOrgan, blood, domain.OrganKidney)
			assert.False(t, IsCompatible(req, donor), "patient=%q donor=%q", patient, blood)
		}
	}
}

func TestIsCompatible_UniversalDonor(t *testing.T) {
	for _, dt := range []domain.DonationType{domain.DonationBlood, domain.DonationBoth} {
		donor := approvedDonor(dt, domain.BloodONeg, domain.OrganKidney)
		for _, patient := range allBloodTypes {
			req := domain.Request{RequestType: domain.RequestBlood, PatientBloodType: patient}
			assert.True(t, IsCompatible(req, donor), "donation=%q patient=%q", dt, patient)
		}
	}
}

func TestIsCompatible_MultipleOrganDonor(t *testing.T) {
	for _, dt := range []domain.DonationType{domain.DonationOrgan, domain.DonationBoth} {
		donor := approvedDonor(dt, domain.BloodAPos, domain.OrganMultiple)
		for _, organ := range allOrganTypes {
			req := domain.Request{RequestType: domain.RequestOrgan, OrganNeeded: organ}
			assert.True(t, IsCompatible(req, donor), "donation=%q organ=%q", dt, organ)
		}
	}
}

func TestIsCompatible_Deterministic(t *testing.T) {
	req := domain.Request{RequestType: domain.RequestBlood, PatientBloodType: domain.BloodABNeg}
	donor := approvedDonor(domain.DonationBlood, domain.BloodABNeg, "")
	first := IsCompatible(req, donor)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, IsCompatible(req, donor))
	}
}
