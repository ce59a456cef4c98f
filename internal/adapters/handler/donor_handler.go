package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/matching"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

// DonorHandler serves the admin donor review pages.
type DonorHandler struct {
	lifecycle ports.LifecycleService
	logger    *zap.Logger
}

func NewDonorHandler(lifecycle ports.LifecycleService, logger *zap.Logger) *DonorHandler {
	return &DonorHandler{
		lifecycle: lifecycle,
		logger:    logger.Named("donor_handler"),
	}
}

type DonorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// List handles GET /donors?status=&donationType=&search=.
func (h *DonorHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	donors, err := h.lifecycle.SearchDonors(r.Context(), matching.DonorFilter{
		Status:       domain.DonorStatus(q.Get("status")),
		DonationType: domain.DonationType(q.Get("donationType")),
		Search:       q.Get("search"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, donors)
}

// Get handles GET /donors/{id}.
func (h *DonorHandler) Get(w http.ResponseWriter, r *http.Request) {
	donor, err := h.lifecycle.GetDonor(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, donor)
}

// SetStatus handles POST /donors/{id}/status.
func (h *DonorHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req DonorStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	donor, err := h.lifecycle.TransitionDonor(r.Context(), r.PathValue("id"), domain.DonorStatus(req.Status))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("donor status set",
		zap.String("donor_id", donor.ID),
		zap.String("status", string(donor.Status)),
		zap.String("admin", middleware.UserID(r.Context())),
	)
	writeJSON(w, h.logger, http.StatusOK, donor)
}
