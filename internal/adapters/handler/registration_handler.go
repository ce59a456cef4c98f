package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

// RegistrationHandler serves the public donor and patient forms.
type RegistrationHandler struct {
	registrationService ports.RegistrationService
	logger              *zap.Logger
}

func NewRegistrationHandler(registration ports.RegistrationService, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registration,
		logger:              logger.Named("registration_handler"),
	}
}

type DonorRegistrationRequest struct {
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Email        string            `json:"email"`
	DonationType string            `json:"donationType"`
	BloodType    string            `json:"bloodType,omitempty"`
	OrganType    string            `json:"organType,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
}

type PatientRequestSubmission struct {
	PatientFirstName string            `json:"patientFirstName"`
	PatientLastName  string            `json:"patientLastName"`
	ContactEmail     string            `json:"contactEmail"`
	RequestType      string            `json:"requestType"`
	PatientBloodType string            `json:"patientBloodType,omitempty"`
	OrganNeeded      string            `json:"organNeeded,omitempty"`
	UrgencyLevel     string            `json:"urgencyLevel,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
}

// RegisterDonor handles POST /donors.
func (h *RegistrationHandler) RegisterDonor(w http.ResponseWriter, r *http.Request) {
	var req DonorRegistrationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	donor, err := h.registrationService.RegisterDonor(r.Context(), ports.NewDonor{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		DonationType: domain.DonationType(req.DonationType),
		BloodType:    domain.BloodType(req.BloodType),
		OrganType:    domain.OrganType(req.OrganType),
		Details:      req.Details,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, donor)
}

// SubmitRequest handles POST /requests.
func (h *RegistrationHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req PatientRequestSubmission
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	created, err := h.registrationService.SubmitRequest(r.Context(), ports.NewRequest{
		PatientFirstName: req.PatientFirstName,
		PatientLastName:  req.PatientLastName,
		ContactEmail:     req.ContactEmail,
		RequestType:      domain.RequestType(req.RequestType),
		PatientBloodType: domain.BloodType(req.PatientBloodType),
		OrganNeeded:      domain.OrganType(req.OrganNeeded),
		UrgencyLevel:     domain.UrgencyLevel(req.UrgencyLevel),
		Details:          req.Details,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, created)
}
