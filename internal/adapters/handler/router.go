package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/middleware"
)

// Router holds everything NewRouter mounts.
type Router struct {
	Registration *RegistrationHandler
	Donors       *DonorHandler
	Requests     *RequestHandler
	Health       *HealthHandler
	Auth         *middleware.AuthMiddleware
}

// NewRouter registers the public and admin routes.
func NewRouter(rt Router) *http.ServeMux {
	mux := http.NewServeMux()
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return rt.Auth.RequireRole([]string{middleware.RoleAdmin}, h)
	}

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("GET /health/ready", rt.Health.Ready)
	mux.HandleFunc("GET /health/live", rt.Health.Live)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Public forms
	mux.HandleFunc("POST /donors", rt.Registration.RegisterDonor)
	mux.HandleFunc("POST /requests", rt.Registration.SubmitRequest)

	// Admin review
	mux.HandleFunc("GET /donors", admin(rt.Donors.List))
	mux.HandleFunc("GET /donors/{id}", admin(rt.Donors.Get))
	mux.HandleFunc("POST /donors/{id}/status", admin(rt.Donors.SetStatus))
	mux.HandleFunc("GET /requests", admin(rt.Requests.List))
	mux.HandleFunc("GET /requests/{id}", admin(rt.Requests.Get))
	mux.HandleFunc("GET /requests/{id}/compatible-donors", admin(rt.Requests.CompatibleDonors))
	mux.HandleFunc("POST /requests/{id}/status", admin(rt.Requests.SetStatus))
	mux.HandleFunc("GET /stats", admin(rt.Requests.Stats))

	return mux
}
