// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/blob"
	"github.com/danielhkuo/properview/cliparse"
	"github.com/danielhkuo/properview/geo"
	"github.com/danielhkuo/properview/middleware"
	"github.com/danielhkuo/properview/models"
	"github.com/danielhkuo/properview/view"
)

const geocodeTimeout = 5 * time.Second

type ListingHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	images   blob.Store
	geocoder geo.Geocoder // nil disables geocoding
}

func NewListingHandler(db *sql.DB, cfg cliparse.Config, images blob.Store, geocoder geo.Geocoder) *ListingHandler {
	return &ListingHandler{db: db, cfg: cfg, images: images, geocoder: geocoder}
}

// listingSelect reads every listing column plus the first image as cover
const listingSelect = `
	SELECT l.id, l.agent_id, l.title, l.description, l.price, l.address, l.city, l.state,
	       l.postal_code, l.bedrooms, l.bathrooms, l.square_feet, l.status,
	       l.latitude, l.longitude,
	       (SELECT i.blob_key FROM listing_image i
	        WHERE i.listing_id = l.id
	        ORDER BY i.created_at, i.id
	        LIMIT 1),
	       l.created_at, l.updated_at
	FROM listing l`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner, baseURL string) (models.Listing, error) {
	var l models.Listing
	var lat, lng sql.NullFloat64
	var cover sql.NullString
	err := row.Scan(&l.ID, &l.AgentID, &l.Title, &l.Description, &l.Price, &l.Address, &l.City, &l.State,
		&l.PostalCode, &l.Bedrooms, &l.Bathrooms, &l.SquareFeet, &l.Status,
		&lat, &lng, &cover, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return l, err
	}
	if lat.Valid && lng.Valid {
		l.Latitude = &lat.Float64
		l.Longitude = &lng.Float64
	}
	if cover.Valid {
		u := imageURL(baseURL, cover.String)
		l.CoverImage = &u
	}
	l.PriceDisplay = PriceDisplay(l.Price)
	return l, nil
}

func queryListings(ctx context.Context, db *sql.DB, baseURL, where string, args ...any) ([]models.Listing, error) {
	rows, err := db.QueryContext(ctx, listingSelect+" "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows, baseURL)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func loadListing(ctx context.Context, db *sql.DB, baseURL, listingID string) (models.Listing, error) {
	return scanListing(db.QueryRowContext(ctx, listingSelect+" WHERE l.id = $1", listingID), baseURL)
}

// PriceDisplay formats whole dollars as "$1,250,000"
func PriceDisplay(price int64) string {
	return "$" + humanize.Comma(price)
}

func imageURL(baseURL, key string) string {
	return baseURL + "/images/" + key
}

// ownedListing checks the session agent owns listingID.
// Writes 401, 404 or 403 and returns false otherwise.
func ownedListing(w http.ResponseWriter, r *http.Request, db *sql.DB, salt, listingID string) (string, bool) {
	agentID, ok := currentAgent(w, r, db, salt)
	if !ok {
		return "", false
	}

	var ownerID string
	err := db.QueryRowContext(r.Context(), "SELECT agent_id FROM listing WHERE id = $1", listingID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Listing not found")
		return "", false
	}
	if err != nil {
		slog.Error("failed to query listing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}
	if ownerID != agentID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Listing belongs to another agent")
		return "", false
	}
	return agentID, true
}

// geocode fills missing coordinates. Failure leaves the listing unpinned.
func (h *ListingHandler) geocode(ctx context.Context, req *models.ListingRequest) bool {
	if h.geocoder == nil || req.Latitude != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	address := geo.FormatAddress(req.Address, req.City, req.State, req.PostalCode)
	p, err := h.geocoder.Geocode(ctx, address)
	if err != nil {
		slog.Warn("geocoding failed, storing listing without coordinates", "address", address, "error", err)
		return false
	}
	req.Latitude = &p.Lat
	req.Longitude = &p.Lng
	return true
}

// ListListings handles GET /listings.
// The full set is filtered in memory so the response matches what the
// client computes from the same query string.
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	all, err := queryListings(r.Context(), h.db, h.cfg.BaseURL, "ORDER BY l.created_at DESC, l.id")
	if err != nil {
		slog.Error("failed to query listings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	page := view.BuildPage(all, r.URL.Query())
	middleware.JSONResponse(w, http.StatusOK, page)
}

// GetListing handles GET /listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if listingID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "listing_id is required")
		return
	}

	listing, err := loadListing(r.Context(), h.db, h.cfg.BaseURL, listingID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Listing not found")
		return
	}
	if err != nil {
		slog.Error("failed to query listing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	agent, err := loadAgent(r, h.db, listing.AgentID)
	if err != nil {
		slog.Error("failed to query listing agent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	images, err := listImages(r.Context(), h.db, h.cfg.BaseURL, listingID)
	if err != nil {
		slog.Error("failed to query images", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListingDetail{
		Listing: listing,
		Agent:   agent,
		Images:  images,
	})
}

// CreateListing handles POST /listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	agentID, ok := currentAgent(w, r, h.db, h.cfg.SessionSalt)
	if !ok {
		return
	}

	var req models.ListingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := req.Validate(); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	geocoded := h.geocode(r.Context(), &req)

	listingID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate listing ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create listing")
		return
	}

	now := time.Now().UTC()
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO listing (id, agent_id, title, description, price, address, city, state,
		                     postal_code, bedrooms, bathrooms, square_feet, status,
		                     latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, listingID, agentID, req.Title, req.Description, req.Price, req.Address, req.City, req.State,
		req.PostalCode, req.Bedrooms, req.Bathrooms, req.SquareFeet, req.Status,
		req.Latitude, req.Longitude, now, now)
	if err != nil {
		slog.Error("failed to insert listing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create listing")
		return
	}

	slog.Info("listing created", "listing_id", listingID, "agent_id", agentID, "geocoded", geocoded)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateListingResponse{
		ListingID: listingID,
		Geocoded:  geocoded,
	})
}

// UpdateListing handles PUT /listings/{id}. The body replaces every field.
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if _, ok := ownedListing(w, r, h.db, h.cfg.SessionSalt, listingID); !ok {
		return
	}

	var req models.ListingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := req.Validate(); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	h.geocode(r.Context(), &req)

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE listing
		SET title = $1, description = $2, price = $3, address = $4, city = $5, state = $6,
		    postal_code = $7, bedrooms = $8, bathrooms = $9, square_feet = $10, status = $11,
		    latitude = $12, longitude = $13, updated_at = $14
		WHERE id = $15
	`, req.Title, req.Description, req.Price, req.Address, req.City, req.State,
		req.PostalCode, req.Bedrooms, req.Bathrooms, req.SquareFeet, req.Status,
		req.Latitude, req.Longitude, time.Now().UTC(), listingID)
	if err != nil {
		slog.Error("failed to update listing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update listing")
		return
	}

	slog.Info("listing updated", "listing_id", listingID)
	h.respondListing(w, r, listingID)
}

// UpdateStatus handles PATCH /listings/{id}/status
func (h *ListingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if _, ok := ownedListing(w, r, h.db, h.cfg.SessionSalt, listingID); !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !models.ValidStatus(req.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be active, pending or sold")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE listing SET status = $1, updated_at = $2 WHERE id = $3
	`, req.Status, time.Now().UTC(), listingID)
	if err != nil {
		slog.Error("failed to update listing status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update listing")
		return
	}

	slog.Info("listing status changed", "listing_id", listingID, "status", req.Status)
	h.respondListing(w, r, listingID)
}

func (h *ListingHandler) respondListing(w http.ResponseWriter, r *http.Request, listingID string) {
	listing, err := loadListing(r.Context(), h.db, h.cfg.BaseURL, listingID)
	if err != nil {
		slog.Error("failed to reload listing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, listing)
}

// DeleteListing handles DELETE /listings/{id}.
// Rows cascade; image bytes are removed from the blob store afterwards.
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if _, ok := ownedListing(w, r, h.db, h.cfg.SessionSalt, listingID); !ok {
		return
	}

	images, err := listImages(r.Context(), h.db, h.cfg.BaseURL, listingID)
	if err != nil {
		slog.Error("failed to query images", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if _, err := h.db.ExecContext(r.Context(), "DELETE FROM listing WHERE id = $1", listingID); err != nil {
		slog.Error("failed to delete listing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete listing")
		return
	}

	for _, img := range images {
		if _, err := h.images.Delete(r.Context(), img.Key); err != nil {
			slog.Warn("failed to delete image blob", "key", img.Key, "error", err)
		}
	}

	slog.Info("listing deleted", "listing_id", listingID, "images", len(images))
	w.WriteHeader(http.StatusNoContent)
}

// DashboardListings handles GET /dashboard/listings
func (h *ListingHandler) DashboardListings(w http.ResponseWriter, r *http.Request) {
	agentID, ok := currentAgent(w, r, h.db, h.cfg.SessionSalt)
	if !ok {
		return
	}

	listings, err := queryListings(r.Context(), h.db, h.cfg.BaseURL,
		"WHERE l.agent_id = $1 ORDER BY l.created_at DESC, l.id", agentID)
	if err != nil {
		slog.Error("failed to query listings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListingList{Listings: listings})
}

// DashboardSummary handles GET /dashboard/summary
func (h *ListingHandler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	agentID, ok := currentAgent(w, r, h.db, h.cfg.SessionSalt)
	if !ok {
		return
	}

	summary := models.DashboardSummary{
		AgentID: agentID,
		StatusCounts: map[string]int{
			models.StatusActive:  0,
			models.StatusPending: 0,
			models.StatusSold:    0,
		},
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT status, COUNT(*), CAST(COALESCE(SUM(price), 0) AS BIGINT)
		FROM listing
		WHERE agent_id = $1
		GROUP BY status
	`, agentID)
	if err != nil {
		slog.Error("failed to summarize listings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		var value int64
		if err := rows.Scan(&status, &count, &value); err != nil {
			slog.Error("failed to scan summary row", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		summary.StatusCounts[status] = count
		summary.TotalListings += count
		if status == models.StatusActive {
			summary.ActiveValue = value
		}
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read summary rows", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	err = h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*)
		FROM inquiry i
		JOIN listing l ON l.id = i.listing_id
		WHERE l.agent_id = $1
	`, agentID).Scan(&summary.InquiryCount)
	if err != nil {
		slog.Error("failed to count inquiries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	summary.ActiveValueDisplay = PriceDisplay(summary.ActiveValue)
	middleware.JSONResponse(w, http.StatusOK, summary)
}
