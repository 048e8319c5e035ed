package models

import (
	"math"
	"strings"
	"time"
)

// Listing status constants
const (
	StatusActive  = "active"
	StatusPending = "pending"
	StatusSold    = "sold"
)

// ValidStatus reports whether s is one of the listing status values
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusPending, StatusSold:
		return true
	}
	return false
}

// Request types

type CreateAgentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type LoginRequest struct {
	Name string `json:"name"`
}

// ListingRequest is used for both create and full update.
// Latitude/Longitude are optional; missing coordinates trigger geocoding.
type ListingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	PostalCode  string   `json:"postal_code"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   float64  `json:"bathrooms"`
	SquareFeet  int      `json:"square_feet"`
	Status      string   `json:"status"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// Validate trims text fields, defaults an empty status to active, and
// returns a client-facing message for the first invalid field ("" if valid).
// The API and the seed loader share it so both reject the same listings.
func (r *ListingRequest) Validate() string {
	r.Title = strings.TrimSpace(r.Title)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.PostalCode = strings.TrimSpace(r.PostalCode)

	switch {
	case r.Title == "":
		return "title is required"
	case r.Address == "":
		return "address is required"
	case r.Price < 0:
		return "price must not be negative"
	case r.Bedrooms < 0:
		return "bedrooms must not be negative"
	case r.Bathrooms < 0 || math.IsNaN(r.Bathrooms) || math.IsInf(r.Bathrooms, 0):
		return "bathrooms must not be negative"
	case r.SquareFeet < 0:
		return "square_feet must not be negative"
	case (r.Latitude == nil) != (r.Longitude == nil):
		return "latitude and longitude must be given together"
	}
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90 || math.IsNaN(*r.Latitude)) {
		return "latitude must be between -90 and 90"
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180 || math.IsNaN(*r.Longitude)) {
		return "longitude must be between -180 and 180"
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	if !ValidStatus(r.Status) {
		return "status must be active, pending or sold"
	}
	return ""
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateInquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Response types

type CreateAgentResponse struct {
	AgentID string `json:"agent_id"`
}

type LoginResponse struct {
	Agent Agent  `json:"agent"`
	Token string `json:"token"`
}

type CreateListingResponse struct {
	ListingID string `json:"listing_id"`
	Geocoded  bool   `json:"geocoded"`
}

type CreateInquiryResponse struct {
	InquiryID string `json:"inquiry_id"`
	Message   string `json:"message"`
}

type UploadImageResponse struct {
	Image ListingImage `json:"image"`
}

// Domain types

type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type AgentProfile struct {
	Agent          Agent `json:"agent"`
	ActiveListings int   `json:"active_listings"`
}

type Listing struct {
	ID           string    `json:"id"`
	AgentID      string    `json:"agent_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	PriceDisplay string    `json:"price_display"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    float64   `json:"bathrooms"`
	SquareFeet   int       `json:"square_feet"`
	Status       string    `json:"status"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CoverImage   *string   `json:"cover_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasCoordinates reports whether the listing can be pinned on a map
func (l Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

type ListingImage struct {
	ID          string    `json:"id"`
	ListingID   string    `json:"listing_id"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListingDetail struct {
	Listing Listing        `json:"listing"`
	Agent   Agent          `json:"agent"`
	Images  []ListingImage `json:"images"`
}

type Inquiry struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

type InquiryList struct {
	Inquiries []Inquiry `json:"inquiries"`
}

type ListingList struct {
	Listings []Listing `json:"listings"`
}

type DashboardSummary struct {
	AgentID            string         `json:"agent_id"`
	StatusCounts       map[string]int `json:"status_counts"`
	TotalListings      int            `json:"total_listings"`
	InquiryCount       int            `json:"inquiry_count"`
	ActiveValue        int64          `json:"active_value"`
	ActiveValueDisplay string         `json:"active_value_display"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
