// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ProperView API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, images, geocoder)

images is the blob store for listing photos. geocoder may be nil, in which
case listings without coordinates are stored unpinned.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Agents and sessions:

	POST /agents       - Create agent
	GET  /agents/{id}  - Public profile
	POST /auth/login   - Name lookup, sets session cookie
	POST /auth/logout  - Expire session cookie
	GET  /auth/me      - Current agent

Listings page (public):

	GET /listings?location=&min_price=&max_price=&beds=&baths=&show_sold=&view=&selected=
	GET /listings/{id}

Listing management (owner, requires session):

	POST   /listings
	PUT    /listings/{id}
	PATCH  /listings/{id}/status
	DELETE /listings/{id}

Inquiries:

	POST /listings/{id}/inquiries - Public
	GET  /listings/{id}/inquiries - Owner

Images:

	POST   /listings/{id}/images           - Owner, raw image body
	DELETE /listings/{id}/images/{imageID} - Owner
	GET    /images/{key...}                - Stream or redirect

Dashboard (requires session):

	GET /dashboard/listings
	GET /dashboard/summary
	GET /dashboard/inquiries

# Middleware

Every API route is wrapped with request logging and Prometheus
instrumentation labelled by its pattern. CORS is applied by the caller
around the whole mux.
*/
package router
