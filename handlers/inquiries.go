// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/cliparse"
	"github.com/danielhkuo/properview/middleware"
	"github.com/danielhkuo/properview/models"
)

type InquiryHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewInquiryHandler(db *sql.DB, cfg cliparse.Config) *InquiryHandler {
	return &InquiryHandler{db: db, cfg: cfg}
}

// CreateInquiry handles POST /listings/{id}/inquiries
func (h *InquiryHandler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if listingID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "listing_id is required")
		return
	}

	var req models.CreateInquiryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)
	switch {
	case req.Name == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	case req.Email == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "email is required")
		return
	case !strings.Contains(req.Email, "@"):
		middleware.ErrorResponse(w, http.StatusBadRequest, "email is invalid")
		return
	case req.Message == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	var status string
	err := h.db.QueryRowContext(r.Context(), "SELECT status FROM listing WHERE id = $1", listingID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Listing not found")
		return
	}
	if err != nil {
		slog.Error("failed to query listing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status == models.StatusSold {
		middleware.ErrorResponse(w, http.StatusConflict, "Listing is sold")
		return
	}

	inquiryID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate inquiry ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to send inquiry")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt)

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO inquiry (id, listing_id, name, email, phone, message, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, inquiryID, listingID, req.Name, req.Email, req.Phone, req.Message, ipHash, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert inquiry", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to send inquiry")
		return
	}

	slog.Info("inquiry received", "listing_id", listingID, "inquiry_id", inquiryID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateInquiryResponse{
		InquiryID: inquiryID,
		Message:   "Inquiry sent to the listing agent",
	})
}

const inquirySelect = `
	SELECT i.id, i.listing_id, l.title, i.name, i.email, i.phone, i.message, i.created_at
	FROM inquiry i
	JOIN listing l ON l.id = i.listing_id`

func (h *InquiryHandler) queryInquiries(r *http.Request, where string, args ...any) ([]models.Inquiry, error) {
	rows, err := h.db.QueryContext(r.Context(), inquirySelect+" "+where+" ORDER BY i.created_at DESC, i.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inquiries := []models.Inquiry{}
	for rows.Next() {
		var q models.Inquiry
		if err := rows.Scan(&q.ID, &q.ListingID, &q.ListingTitle, &q.Name, &q.Email, &q.Phone, &q.Message, &q.CreatedAt); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, q)
	}
	return inquiries, rows.Err()
}

// ListForListing handles GET /listings/{id}/inquiries (owner only)
func (h *InquiryHandler) ListForListing(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if _, ok := ownedListing(w, r, h.db, h.cfg.SessionSalt, listingID); !ok {
		return
	}

	inquiries, err := h.queryInquiries(r, "WHERE i.listing_id = $1", listingID)
	if err != nil {
		slog.Error("failed to query inquiries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.InquiryList{Inquiries: inquiries})
}

// DashboardInquiries handles GET /dashboard/inquiries
func (h *InquiryHandler) DashboardInquiries(w http.ResponseWriter, r *http.Request) {
	agentID, ok := currentAgent(w, r, h.db, h.cfg.SessionSalt)
	if !ok {
		return
	}

	inquiries, err := h.queryInquiries(r, "WHERE l.agent_id = $1", agentID)
	if err != nil {
		slog.Error("failed to query inquiries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.InquiryList{Inquiries: inquiries})
}
