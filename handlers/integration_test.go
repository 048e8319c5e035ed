// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/blob"
	"github.com/danielhkuo/properview/geo"
	"github.com/danielhkuo/properview/models"
	"github.com/danielhkuo/properview/testutil"
	"github.com/danielhkuo/properview/view"
)

// TestFullListingWorkflow tests the complete end-to-end workflow:
// 1. Create agent and log in
// 2. Create a listing (geocoded)
// 3. Upload a photo
// 4. Visitor browses the map and selects the listing
// 5. Visitor sends an inquiry
// 6. Agent marks the listing sold
// 7. Sold listing leaves the default page and rejects inquiries
// 8. Dashboard reflects everything
func TestFullListingWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	store := blob.NewMemoryStore()
	gc := &stubGeocoder{point: geo.Point{Lat: 30.2735, Lng: -97.756}}

	agentHandler := NewAgentHandler(db, cfg)
	listingHandler := NewListingHandler(db, cfg, store, gc)
	inquiryHandler := NewInquiryHandler(db, cfg)
	imageHandler := NewImageHandler(db, cfg, store)

	// Step 1: Create agent and log in
	w := httptest.NewRecorder()
	agentHandler.CreateAgent(w, testutil.MakeRequest("POST", "/agents",
		models.CreateAgentRequest{Name: "Dana Reyes", Email: "dana@example.com"}, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create agent failed: %d - %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	agentHandler.Login(w, testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{Name: "dana reyes"}, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 1 - Login failed: %d - %s", w.Code, w.Body.String())
	}
	var login models.LoginResponse
	testutil.AssertJSON(t, w, &login)
	cookie := w.Result().Cookies()[0]
	t.Logf("Step 1 - Logged in as %s", login.Agent.ID)

	// Step 2: Create listing using the cookie session
	req := testutil.MakeRequest("POST", "/listings", validListing(), nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	listingHandler.CreateListing(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Create listing failed: %d - %s", w.Code, w.Body.String())
	}
	var created models.CreateListingResponse
	testutil.AssertJSON(t, w, &created)
	listingID := created.ListingID
	if !created.Geocoded {
		t.Error("Step 2 - Expected listing to be geocoded")
	}

	// Step 3: Upload a photo
	req = httptest.NewRequest("POST", "/listings/"+listingID+"/images", bytes.NewReader([]byte("jpeg")))
	req.SetPathValue("id", listingID)
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set(auth.HeaderToken, login.Token)
	w = httptest.NewRecorder()
	imageHandler.Upload(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 3 - Upload failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 4: Visitor browses the map with the listing selected
	w = httptest.NewRecorder()
	listingHandler.ListListings(w, httptest.NewRequest("GET", "/listings?location=Austin&view=map&selected="+listingID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 4 - List failed: %d - %s", w.Code, w.Body.String())
	}
	var page view.Page
	testutil.AssertJSON(t, w, &page)
	if page.Visible != 1 || len(page.Markers) != 1 || !page.Markers[0].Selected {
		t.Fatalf("Step 4 - Unexpected page: visible=%d markers=%+v", page.Visible, page.Markers)
	}
	if page.Listings[0].CoverImage == nil {
		t.Error("Step 4 - Expected cover image")
	}

	// Step 5: Visitor inquiry
	req = testutil.MakeRequest("POST", "/listings/"+listingID+"/inquiries", models.CreateInquiryRequest{
		Name: "Jordan", Email: "jordan@example.com", Message: "Can I tour Saturday?",
	}, nil)
	req.SetPathValue("id", listingID)
	w = httptest.NewRecorder()
	inquiryHandler.CreateInquiry(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 5 - Inquiry failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 6: Mark sold
	req = testutil.MakeRequest("PATCH", "/listings/"+listingID+"/status",
		models.UpdateStatusRequest{Status: models.StatusSold}, testutil.AgentHeaders(login.Token))
	req.SetPathValue("id", listingID)
	w = httptest.NewRecorder()
	listingHandler.UpdateStatus(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Status update failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 7: Default page hides it and drops the stale selection
	w = httptest.NewRecorder()
	listingHandler.ListListings(w, httptest.NewRequest("GET", "/listings?view=map&selected="+listingID, nil))
	page = view.Page{}
	testutil.AssertJSON(t, w, &page)
	if page.Visible != 0 || !page.SelectionCleared || page.Bounds != nil {
		t.Errorf("Step 7 - Expected empty page with cleared selection, got %+v", page)
	}
	if page.Query != "view=map" {
		t.Errorf("Step 7 - Expected canonical query 'view=map', got %q", page.Query)
	}

	req = testutil.MakeRequest("POST", "/listings/"+listingID+"/inquiries", models.CreateInquiryRequest{
		Name: "Late", Email: "late@example.com", Message: "Still available?",
	}, nil)
	req.SetPathValue("id", listingID)
	w = httptest.NewRecorder()
	inquiryHandler.CreateInquiry(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("Step 7 - Expected 409 for sold listing, got %d", w.Code)
	}

	// Step 8: Dashboard
	w = httptest.NewRecorder()
	listingHandler.DashboardSummary(w, testutil.MakeRequest("GET", "/dashboard/summary", nil, testutil.AgentHeaders(login.Token)))
	var summary models.DashboardSummary
	testutil.AssertJSON(t, w, &summary)
	if summary.StatusCounts[models.StatusSold] != 1 || summary.InquiryCount != 1 || summary.ActiveValue != 0 {
		t.Errorf("Step 8 - Unexpected summary %+v", summary)
	}
}
