package ports

import (
	"context"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/matching"
)

// NewDonor is a donor registration. Blood type is required for blood and
// combined donors, organ type for organ and combined donors.
type NewDonor struct {
	FirstName    string              `validate:"required"`
	LastName     string              `validate:"required"`
	Email        string              `validate:"required,email"`
	DonationType domain.DonationType `validate:"required,oneof=blood organ both"`
	BloodType    domain.BloodType    `validate:"required_if=DonationType blood,required_if=DonationType both,bloodtype"`
	OrganType    domain.OrganType    `validate:"required_if=DonationType organ,required_if=DonationType both,organtype"`
	Details      map[string]string
}

// NewRequest is a patient request. An empty urgency level means normal.
type NewRequest struct {
	PatientFirstName string              `validate:"required"`
	PatientLastName  string              `validate:"required"`
	ContactEmail     string              `validate:"required,email"`
	RequestType      domain.RequestType  `validate:"required,oneof=blood organ"`
	PatientBloodType domain.BloodType    `validate:"required_if=RequestType blood,bloodtype"`
	OrganNeeded      domain.OrganType    `validate:"required_if=RequestType organ,organtype"`
	UrgencyLevel     domain.UrgencyLevel `validate:"omitempty,oneof=low normal urgent emergency"`
	Details          map[string]string
}

type RegistrationService interface {
	RegisterDonor(ctx context.Context, in NewDonor) (*domain.Donor, error)
	SubmitRequest(ctx context.Context, in NewRequest) (*domain.Request, error)
}

type LifecycleService interface {
	GetDonor(ctx context.Context, id string) (*domain.Donor, error)
	GetRequest(ctx context.Context, id string) (*domain.Request, error)
	SearchDonors(ctx context.Context, f matching.DonorFilter) ([]domain.Donor, error)
	SearchRequests(ctx context.Context, f matching.RequestFilter, byUrgency bool) ([]domain.Request, error)
	CompatibleDonors(ctx context.Context, requestID string) ([]domain.Donor, error)
	TransitionRequest(ctx context.Context, requestID string, target domain.RequestStatus, donorID string) (*domain.Request, error)
	TransitionDonor(ctx context.Context, donorID string, target domain.DonorStatus) (*domain.Donor, error)
	Stats(ctx context.Context) (matching.Stats, error)
}
