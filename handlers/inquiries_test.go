// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/models"
	"github.com/danielhkuo/properview/testutil"
)

func TestCreateInquiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewInquiryHandler(db, cfg)
	agentID, _ := testutil.CreateTestAgent(t, db, cfg, "Dana Reyes")
	active := testutil.CreateTestListing(t, db, agentID, testutil.TestListing{})
	pending := testutil.CreateTestListing(t, db, agentID, testutil.TestListing{Status: models.StatusPending})
	sold := testutil.CreateTestListing(t, db, agentID, testutil.TestListing{Status: models.StatusSold})

	valid := models.CreateInquiryRequest{
		Name:    "Jordan Buyer",
		Email:   "jordan@example.com",
		Message: "Is the backyard fenced?",
	}

	tests := []struct {
		name           string
		listingID      string
		body           models.CreateInquiryRequest
		expectedStatus int
	}{
		{"active listing", active, valid, http.StatusCreated},
		{"pending listing still accepts", pending, valid, http.StatusCreated},
		{"sold listing", sold, valid, http.StatusConflict},
		{"unknown listing", "missing", valid, http.StatusNotFound},
		{"missing name", active, models.CreateInquiryRequest{Email: "a@b.c", Message: "hi"}, http.StatusBadRequest},
		{"missing email", active, models.CreateInquiryRequest{Name: "A", Message: "hi"}, http.StatusBadRequest},
		{"invalid email", active, models.CreateInquiryRequest{Name: "A", Email: "nope", Message: "hi"}, http.StatusBadRequest},
		{"blank message", active, models.CreateInquiryRequest{Name: "A", Email: "a@b.c", Message: "   "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/listings/"+tt.listingID+"/inquiries", tt.body,
				map[string]string{"X-Forwarded-For": "203.0.113.7"})
			req.SetPathValue("id", tt.listingID)
			w := httptest.NewRecorder()

			handler.CreateInquiry(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.CreateInquiryResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.InquiryID == "" {
					t.Fatal("Expected non-empty inquiry_id")
				}

				var ipHash string
				err := db.QueryRow("SELECT ip_hash FROM inquiry WHERE id = $1", resp.InquiryID).Scan(&ipHash)
				if err != nil {
					t.Fatalf("Failed to query inquiry: %v", err)
				}
				if ipHash != auth.HashIP("203.0.113.7", cfg.IPHashSalt) {
					t.Errorf("Expected hashed client IP, got %q", ipHash)
				}
			}
		})
	}
}

func TestListInquiries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewInquiryHandler(db, cfg)
	agentID, token := testutil.CreateTestAgent(t, db, cfg, "Dana Reyes")
	_, otherToken := testutil.CreateTestAgent(t, db, cfg, "Sam Ortiz")
	first := testutil.CreateTestListing(t, db, agentID, testutil.TestListing{Title: "First"})
	second := testutil.CreateTestListing(t, db, agentID, testutil.TestListing{Title: "Second"})

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, row := range []struct{ id, listingID string }{
		{"q-old", first},
		{"q-mid", second},
		{"q-new", first},
	} {
		_, err := db.Exec(`
			INSERT INTO inquiry (id, listing_id, name, email, message, ip_hash, created_at)
			VALUES ($1, $2, 'Buyer', 'b@example.com', 'hello', 'abc', $3)
		`, row.id, row.listingID, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("Failed to insert inquiry: %v", err)
		}
	}

	t.Run("owner sees listing inquiries newest first", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/listings/"+first+"/inquiries", nil, testutil.AgentHeaders(token))
		req.SetPathValue("id", first)
		w := httptest.NewRecorder()

		handler.ListForListing(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var list models.InquiryList
		testutil.AssertJSON(t, w, &list)
		if len(list.Inquiries) != 2 {
			t.Fatalf("Expected 2 inquiries, got %d", len(list.Inquiries))
		}
		if list.Inquiries[0].ID != "q-new" || list.Inquiries[1].ID != "q-old" {
			t.Errorf("Unexpected order: %s, %s", list.Inquiries[0].ID, list.Inquiries[1].ID)
		}
		if list.Inquiries[0].ListingTitle != "First" {
			t.Errorf("Expected listing title 'First', got '%s'", list.Inquiries[0].ListingTitle)
		}
	})

	t.Run("other agent forbidden", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/listings/"+first+"/inquiries", nil, testutil.AgentHeaders(otherToken))
		req.SetPathValue("id", first)
		w := httptest.NewRecorder()

		handler.ListForListing(w, req)

		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("dashboard spans listings", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/dashboard/inquiries", nil, testutil.AgentHeaders(token))
		w := httptest.NewRecorder()

		handler.DashboardInquiries(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var list models.InquiryList
		testutil.AssertJSON(t, w, &list)
		if len(list.Inquiries) != 3 {
			t.Fatalf("Expected 3 inquiries, got %d", len(list.Inquiries))
		}
		if list.Inquiries[1].ListingTitle != "Second" {
			t.Errorf("Expected middle inquiry on 'Second', got '%s'", list.Inquiries[1].ListingTitle)
		}
	})

	t.Run("dashboard for agent without listings is empty", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/dashboard/inquiries", nil, testutil.AgentHeaders(otherToken))
		w := httptest.NewRecorder()

		handler.DashboardInquiries(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var list models.InquiryList
		testutil.AssertJSON(t, w, &list)
		if list.Inquiries == nil || len(list.Inquiries) != 0 {
			t.Errorf("Expected empty (non-null) list, got %v", list.Inquiries)
		}
	})
}

// TestConcurrentInquiries verifies simultaneous visitors don't lose inquiries
func TestConcurrentInquiries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewInquiryHandler(db, cfg)
	agentID, _ := testutil.CreateTestAgent(t, db, cfg, "Dana Reyes")
	listingID := testutil.CreateTestListing(t, db, agentID, testutil.TestListing{})

	const visitors = 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < visitors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/listings/"+listingID+"/inquiries", models.CreateInquiryRequest{
				Name:    "Visitor " + string(rune('A'+i)),
				Email:   "v@example.com",
				Message: "Interested",
			}, nil)
			req.SetPathValue("id", listingID)
			w := httptest.NewRecorder()

			handler.CreateInquiry(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(successCount.Load()) != visitors {
		t.Errorf("Expected %d successful inquiries, got %d", visitors, successCount.Load())
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM inquiry WHERE listing_id = $1", listingID).Scan(&count); err != nil {
		t.Fatalf("Failed to count inquiries: %v", err)
	}
	if count != visitors {
		t.Errorf("Expected %d inquiries stored, got %d", visitors, count)
	}
}
