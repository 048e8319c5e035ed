// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ProperView API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AgentHandler: Agent creation, profiles and name-lookup login
  - ListingHandler: Listings page, listing CRUD and the agent dashboard
  - InquiryHandler: Visitor inquiries and the agent inbox
  - ImageHandler: Listing photo upload, delete and serving

Handlers are created via constructor functions:

	listingHandler := handlers.NewListingHandler(db, cfg, images, geocoder)

# Listings Page

GET /listings loads every listing and derives the page in memory with
view.BuildPage, the same derivation the CLI client performs:

	page := view.BuildPage(all, r.URL.Query())

Malformed query values are ignored. The response carries the canonical query
string so clients can normalize their URL.

# Sessions

Agent operations read the session token from the X-Agent-Token header or the
properview_agent cookie. Owner-only routes answer 401 without a session, 404
for an unknown listing and 403 for another agent's listing.

# Listing Status

Listings are active, pending or sold. Sold listings are hidden from the
public page unless show_sold=true and reject new inquiries with 409.

# Images

Uploads are raw bodies with an image/* Content-Type, capped at
MAX_UPLOAD_BYTES. Bytes go to the blob store, metadata to listing_image.
Deleting a listing removes its blobs after the rows cascade.
*/
package handlers
