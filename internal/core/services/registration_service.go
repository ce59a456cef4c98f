package services

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

type RegistrationService struct {
	store  ports.RecordStore
	logger *zap.Logger
}

var _ ports.RegistrationService = (*RegistrationService)(nil)

func NewRegistrationService(store ports.RecordStore, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		store:  store,
		logger: logger.Named("registration"),
	}
}

// RegisterDonor stores a new donor awaiting review.
func (s *RegistrationService) RegisterDonor(ctx context.Context, in ports.NewDonor) (*domain.Donor, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	donor := domain.Donor{
		ID:               uuid.NewString(),
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		DonationType:     in.DonationType,
		Status:           domain.DonorPending,
		RegistrationDate: time.Now().UTC(),
		Details:          maps.Clone(in.Details),
	}
	if donor.DonatesBlood() {
		donor.BloodType = in.BloodType
	}
	if donor.DonatesOrgan() {
		donor.OrganType = in.OrganType
	}

	saved, err := s.store.SaveDonor(ctx, donor)
	if err != nil {
		s.logger.Error("failed to save donor", zap.String("donor_id", donor.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("donor registered",
		zap.String("donor_id", saved.ID),
		zap.String("donation_type", string(saved.DonationType)),
	)
	return saved, nil
}

// SubmitRequest stores a new pending request.
func (s *RegistrationService) SubmitRequest(ctx context.Context, in ports.NewRequest) (*domain.Request, error) {
	if in.UrgencyLevel == "" {
		in.UrgencyLevel = domain.UrgencyNormal
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	req := domain.Request{
		ID:               uuid.NewString(),
		PatientFirstName: in.PatientFirstName,
		PatientLastName:  in.PatientLastName,
		ContactEmail:     in.ContactEmail,
		RequestType:      in.RequestType,
		UrgencyLevel:     in.UrgencyLevel,
		Status:           domain.RequestPending,
		RequestDate:      time.Now().UTC(),
		Details:          maps.Clone(in.Details),
	}
	switch in.RequestType {
	case domain.RequestBlood:
		req.PatientBloodType = in.PatientBloodType
	case domain.RequestOrgan:
		req.OrganNeeded = in.OrganNeeded
	}

	saved, err := s.store.SaveRequest(ctx, req)
	if err != nil {
		s.logger.Error("failed to save request", zap.String("request_id", req.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("request submitted",
		zap.String("request_id", saved.ID),
		zap.String("request_type", string(saved.RequestType)),
		zap.String("urgency", string(saved.UrgencyLevel)),
	)
	return saved, nil
}
