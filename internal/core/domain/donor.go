package domain

import "time"

type DonationType string

const (
	DonationBlood DonationType = "blood"
	DonationOrgan DonationType = "organ"
	DonationBoth  DonationType = "both"
)

type BloodType string

const (
	BloodAPos    BloodType = "A+"
	BloodANeg    BloodType = "A-"
	BloodBPos    BloodType = "B+"
	BloodBNeg    BloodType = "B-"
	BloodABPos   BloodType = "AB+"
	BloodABNeg   BloodType = "AB-"
	BloodOPos    BloodType = "O+"
	BloodONeg    BloodType = "O-"
	BloodUnknown BloodType = "unknown"
)

// Known reports whether b names a concrete blood group.
func (b BloodType) Known() bool {
	return b != "" && b != BloodUnknown
}

type OrganType string

const (
	OrganKidney     OrganType = "kidney"
	OrganLiver      OrganType = "liver"
	OrganHeart      OrganType = "heart"
	OrganLung       OrganType = "lung"
	OrganPancreas   OrganType = "pancreas"
	OrganCornea     OrganType = "cornea"
	OrganBoneMarrow OrganType = "bone_marrow"
	OrganTissue     OrganType = "tissue"
	OrganMultiple   OrganType = "multiple"
)

type DonorStatus string

const (
	DonorPending  DonorStatus = "pending"
	DonorApproved DonorStatus = "approved"
	DonorRejected DonorStatus = "rejected"
)

// DonorStatuses lists every donor status in display order.
var DonorStatuses = []DonorStatus{DonorPending, DonorApproved, DonorRejected}

type Donor struct {
	ID               string            `json:"id"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	Email            string            `json:"email"`
	DonationType     DonationType      `json:"donationType"`
	BloodType        BloodType         `json:"bloodType,omitempty"`
	OrganType        OrganType         `json:"organType,omitempty"`
	Status           DonorStatus       `json:"status"`
	RegistrationDate time.Time         `json:"registrationDate"`
	Details          map[string]string `json:"details,omitempty"`
	Version          int64             `json:"version"`
}

// Offer is what a donor can give. It is one of BloodOffer, OrganOffer or
// CombinedOffer.
type Offer interface {
	offer()
}

type BloodOffer struct {
	Blood BloodType
}

type OrganOffer struct {
	Organ OrganType
}

type CombinedOffer struct {
	Blood BloodType
	Organ OrganType
}

func (BloodOffer) offer()    {}
func (OrganOffer) offer()    {}
func (CombinedOffer) offer() {}

// Offer returns the tagged view of the donor's donation fields. Fields that do
// not belong to the donation type are ignored. An unrecognised donation type
// yields nil.
func (d Donor) Offer() Offer {
	switch d.DonationType {
	case DonationBlood:
		return BloodOffer{Blood: d.BloodType}
	case DonationOrgan:
		return OrganOffer{Organ: d.OrganType}
	case DonationBoth:
		return CombinedOffer{Blood: d.BloodType, Organ: d.OrganType}
	default:
		return nil
	}
}

// DonatesBlood reports whether the donor registered for blood donation.
func (d Donor) DonatesBlood() bool {
	return d.DonationType == DonationBlood || d.DonationType == DonationBoth
}

// DonatesOrgan reports whether the donor registered for organ donation.
func (d Donor) DonatesOrgan() bool {
	return d.DonationType == DonationOrgan || d.DonationType == DonationBoth
}
