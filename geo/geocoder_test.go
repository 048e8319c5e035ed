// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	return c, &calls
}

func TestGeocode_Success(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1204 W 9th St, Austin, TX", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `[{"lat":"30.2735","lon":"-97.7560","display_name":"x"}]`)
	})

	p, err := c.Geocode(context.Background(), "1204 W 9th St, Austin, TX")
	require.NoError(t, err)
	assert.InDelta(t, 30.2735, p.Lat, 1e-9)
	assert.InDelta(t, -97.7560, p.Lng, 1e-9)

	// Cached by normalized address
	p2, err := c.Geocode(context.Background(), "  1204 w 9th st,   Austin, tx ")
	require.NoError(t, err)
	assert.Equal(t, p, p2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeocode_NotFoundIsNotRetried(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	_, err := c.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeocode_RetriesServerErrors(t *testing.T) {
	var n atomic.Int32
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[{"lat":"1.5","lon":"2.5"}]`)
	})

	p, err := c.Geocode(context.Background(), "somewhere")
	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 1.5, Lng: 2.5}, p)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeocode_GivesUpAfterAttempts(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.Geocode(context.Background(), "busy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeocode_ClientErrorIsPermanent(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.Geocode(context.Background(), "blocked")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeocode_BadPayload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"lat":"north","lon":"0"}]`)
	})
	_, err := c.Geocode(context.Background(), "odd")
	assert.Error(t, err)
}

func TestGeocode_EmptyAddress(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(0), calls.Load())
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "1 Main St, Austin, TX", FormatAddress("1 Main St", " Austin ", "", "TX"))
	assert.Equal(t, "", FormatAddress("", " "))
}
