package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/matching"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

// RequestHandler serves the admin request review and matching pages.
type RequestHandler struct {
	lifecycle ports.LifecycleService
	logger    *zap.Logger
}

func NewRequestHandler(lifecycle ports.LifecycleService, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{
		lifecycle: lifecycle,
		logger:    logger.Named("request_handler"),
	}
}

// RequestStatusRequest moves a request. DonorID is only read when Status is
// matched; leaving it out there is an incompatible donor, not a bad payload.
type RequestStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=pending matched completed rejected"`
	DonorID string `json:"donorId,omitempty"`
}

// List handles GET /requests?status=&requestType=&urgency=&search=&sort=urgency.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := h.lifecycle.SearchRequests(r.Context(), matching.RequestFilter{
		Status:      domain.RequestStatus(q.Get("status")),
		RequestType: domain.RequestType(q.Get("requestType")),
		Urgency:     domain.UrgencyLevel(q.Get("urgency")),
		Search:      q.Get("search"),
	}, q.Get("sort") == "urgency")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, requests)
}

// Get handles GET /requests/{id}.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.lifecycle.GetRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, req)
}

// CompatibleDonors handles GET /requests/{id}/compatible-donors.
func (h *RequestHandler) CompatibleDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.lifecycle.CompatibleDonors(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, donors)
}

// SetStatus handles POST /requests/{id}/status.
func (h *RequestHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body RequestStatusRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	req, err := h.lifecycle.TransitionRequest(r.Context(), r.PathValue("id"), domain.RequestStatus(body.Status), body.DonorID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("request status set",
		zap.String("request_id", req.ID),
		zap.String("status", string(req.Status)),
		zap.String("matched_donor_id", req.MatchedDonorID),
		zap.String("admin", middleware.UserID(r.Context())),
	)
	writeJSON(w, h.logger, http.StatusOK, req)
}

// Stats handles GET /stats.
func (h *RequestHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.lifecycle.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}
