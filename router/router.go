// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/properview/blob"
	"github.com/danielhkuo/properview/cliparse"
	"github.com/danielhkuo/properview/geo"
	"github.com/danielhkuo/properview/handlers"
	"github.com/danielhkuo/properview/middleware"
)

// NewRouter wires every endpoint. geocoder may be nil.
func NewRouter(db *sql.DB, cfg cliparse.Config, images blob.Store, geocoder geo.Geocoder) *http.ServeMux {
	mux := http.NewServeMux()
	metrics := middleware.NewMetrics()

	// Initialize handlers
	agentHandler := handlers.NewAgentHandler(db, cfg)
	listingHandler := handlers.NewListingHandler(db, cfg, images, geocoder)
	inquiryHandler := handlers.NewInquiryHandler(db, cfg)
	imageHandler := handlers.NewImageHandler(db, cfg, images)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(metrics.Wrap(pattern, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Agents and sessions
	handle("POST /agents", agentHandler.CreateAgent)
	handle("GET /agents/{id}", agentHandler.GetAgent)
	handle("POST /auth/login", agentHandler.Login)
	handle("POST /auth/logout", agentHandler.Logout)
	handle("GET /auth/me", agentHandler.Me)

	// Listings page (public)
	handle("GET /listings", listingHandler.ListListings)
	handle("GET /listings/{id}", listingHandler.GetListing)

	// Listing management (owner)
	handle("POST /listings", listingHandler.CreateListing)
	handle("PUT /listings/{id}", listingHandler.UpdateListing)
	handle("PATCH /listings/{id}/status", listingHandler.UpdateStatus)
	handle("DELETE /listings/{id}", listingHandler.DeleteListing)

	// Inquiries
	handle("POST /listings/{id}/inquiries", inquiryHandler.CreateInquiry)
	handle("GET /listings/{id}/inquiries", inquiryHandler.ListForListing)

	// Images
	handle("POST /listings/{id}/images", imageHandler.Upload)
	handle("DELETE /listings/{id}/images/{imageID}", imageHandler.Delete)
	handle("GET /images/{key...}", imageHandler.Serve)

	// Agent dashboard
	handle("GET /dashboard/listings", listingHandler.DashboardListings)
	handle("GET /dashboard/summary", listingHandler.DashboardSummary)
	handle("GET /dashboard/inquiries", inquiryHandler.DashboardInquiries)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("properview API v1"))
	})

	return mux
}
