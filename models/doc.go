// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateAgentRequest: name, email, phone
  - LoginRequest: name
  - ListingRequest: full listing body for create and replace
  - UpdateStatusRequest: status
  - CreateInquiryRequest: name, email, phone, message

# Response Types

Types for JSON responses:

  - CreateAgentResponse: agent_id
  - LoginResponse: agent, token
  - CreateListingResponse: listing_id, geocoded
  - CreateInquiryResponse: inquiry_id, message
  - UploadImageResponse: image metadata and URL
  - ListingDetail: listing with its agent and images
  - DashboardSummary: per-status counts, inquiry count, active value
  - ErrorResponse: error, message

The listings page itself is view.Page.

# Domain Types

  - Agent, AgentProfile: listing agents
  - Listing: one property, with optional coordinates
  - ListingImage: photo metadata; bytes live in the blob store
  - Inquiry: a visitor message about a listing

# Constants

Listing status:

	StatusActive  = "active"
	StatusPending = "pending"
	StatusSold    = "sold"
*/
package models
