// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/properview/blob"
	"github.com/danielhkuo/properview/models"
	"github.com/danielhkuo/properview/router"
	"github.com/danielhkuo/properview/testutil"
	"github.com/danielhkuo/properview/view"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	agentID, _ := testutil.CreateTestAgent(t, conn, cfg, "Dana Reyes")
	id := testutil.CreateTestListing(t, conn, agentID, testutil.TestListing{
		Title:     "Craftsman bungalow",
		Price:     485000,
		City:      "Austin",
		Bedrooms:  3,
		Bathrooms: 2,
		Latitude:  testutil.Float(30.27),
		Longitude: testutil.Float(-97.75),
	})
	testutil.CreateTestListing(t, conn, agentID, testutil.TestListing{
		Title:    "Sold loft",
		Price:    300000,
		City:     "Austin",
		Bedrooms: 1,
		Status:   models.StatusSold,
	})

	srv := httptest.NewServer(router.NewRouter(conn, cfg, blob.NewMemoryStore(), nil))
	t.Cleanup(srv.Close)
	return srv, id
}

func TestNew(t *testing.T) {
	_, err := New("  ")
	require.Error(t, err)

	c, err := New("http://localhost:3318/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3318", c.BaseURL())
}

func TestListings(t *testing.T) {
	srv, id := newTestServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	page, err := c.Listings(context.Background(), "?location=austin&view=map&selected="+id)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Visible)
	assert.Equal(t, view.ModeMap, page.View.Mode)
	assert.Equal(t, id, page.View.Selected)
	require.Len(t, page.Markers, 1)
	assert.True(t, page.Markers[0].Selected)

	page, err = c.Listings(context.Background(), "show_sold=true")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Visible)
}

func TestListing(t *testing.T) {
	srv, id := newTestServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	detail, err := c.Listing(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Craftsman bungalow", detail.Listing.Title)
	assert.Equal(t, "Dana Reyes", detail.Agent.Name)

	_, err = c.Listing(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestLoginAndSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Summary(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	resp, err := c.Login(context.Background(), "dana reyes")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	summary, err := c.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalListings)
	assert.Equal(t, 1, summary.StatusCounts[models.StatusSold])
}

func TestInquire(t *testing.T) {
	srv, id := newTestServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	resp, err := c.Inquire(context.Background(), id, models.CreateInquiryRequest{
		Name: "Jordan", Email: "jordan@example.com", Message: "Tour Saturday?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.InquiryID)

	_, err = c.Inquire(context.Background(), id, models.CreateInquiryRequest{Name: "Jordan"})
	require.ErrorAs(t, err, new(*APIError))
}

func TestAPIError_Message(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Listings(context.Background(), "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "api: 502 Bad Gateway", apiErr.Error())
}
