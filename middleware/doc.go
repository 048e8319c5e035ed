// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). Every request carries an X-Request-ID; an incoming value is
reused, otherwise a UUID is generated and echoed on the response.

# Metrics

Instrument routes with Prometheus counters and latency histograms:

	metrics := middleware.NewMetrics()
	mux.HandleFunc("GET /listings", metrics.Wrap("GET /listings", handler))
	mux.Handle("GET /metrics", metrics.Handler())

Labels use the route pattern, never the raw path.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins, mux),
	}

Allowed origins get their Origin echoed with Access-Control-Allow-Credentials
so the session cookie is sent. Other origins get no CORS headers and their
preflights are refused with 403. Allows methods GET, POST, PUT, PATCH, DELETE,
OPTIONS with headers Content-Type, Authorization, X-Agent-Token, X-Request-ID.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.ListingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Inquiries store a salted hash of this value, never the raw address.
*/
package middleware
