// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/cliparse"
	"github.com/danielhkuo/properview/db"
	"github.com/danielhkuo/properview/models"
)

// SetupTestDB opens a fresh SQLite database in a temp dir with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "properview.db")
	conn, err := db.Open(ctx, cliparse.DatabaseSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file::memory:",
		DatabaseType:   cliparse.DatabaseSQLite,
		SessionSalt:    "test-session-salt",
		IPHashSalt:     "test-ip-salt",
		BaseURL:        "http://localhost:3318",
		BlobDriver:     cliparse.BlobMemory,
		MaxUploadBytes: 1 << 20,
	}
}

// CreateTestAgent inserts an agent and returns its ID and session token
func CreateTestAgent(t *testing.T, conn *sql.DB, cfg cliparse.Config, name string) (agentID, token string) {
	t.Helper()

	agentID, _ = auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO agent (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, '555-0100', $4)
	`, agentID, name, name+"@example.com", time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test agent: %v", err)
	}

	return agentID, auth.GenerateAgentToken(agentID, cfg.SessionSalt)
}

// TestListing is the subset of listing columns tests usually vary
type TestListing struct {
	Title     string
	Price     int64
	City      string
	Bedrooms  int
	Bathrooms float64
	Status    string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
}

// CreateTestListing inserts a listing owned by agentID and returns its ID.
// Zero fields get sensible defaults.
func CreateTestListing(t *testing.T, conn *sql.DB, agentID string, l TestListing) string {
	t.Helper()

	if l.Title == "" {
		l.Title = "Test Listing"
	}
	if l.City == "" {
		l.City = "Austin"
	}
	if l.Status == "" {
		l.Status = models.StatusActive
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	listingID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO listing (id, agent_id, title, description, price, address, city, state,
		                     postal_code, bedrooms, bathrooms, square_feet, status,
		                     latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, 'A test listing', $4, '100 Main St', $5, 'TX',
		        '78701', $6, $7, 1500, $8, $9, $10, $11, $12)
	`, listingID, agentID, l.Title, l.Price, l.City, l.Bedrooms, l.Bathrooms, l.Status,
		l.Latitude, l.Longitude, l.CreatedAt, l.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test listing: %v", err)
	}

	return listingID
}

// Float returns a pointer to f
func Float(f float64) *float64 { return &f }

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AgentHeaders returns request headers carrying an agent session token
func AgentHeaders(token string) map[string]string {
	return map[string]string{auth.HeaderToken: token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
