// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ProperView API server.

ProperView is a real-estate listings service. Visitors browse listings in a
list or map view, narrowing them with filters that live in the URL query
string, and send inquiries to the listing agent. Agents manage their
listings, photos and inquiries from a dashboard.

# Starting the Server

The server requires environment variables or CLI flags for configuration.
A .env file in the working directory is loaded first if present:

	DATABASE_URL=file:properview.db SESSION_SALT=dev go run .

Or with flags:

	go run . -p 3318 -d "postgres://..." -t postgres -session-salt dev

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - SESSION_SALT (-session-salt): Secret for agent session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default), postgres (lib/pq) or pgx
  - IP_HASH_SALT (-ip-salt): Secret for inquiry IP hashing (default: SESSION_SALT)
  - PUBLIC_BASE_URL (-base-url): Prefix for image URLs; its origin is trusted by CORS
  - CORS_ORIGINS (-cors-origins): Extra comma-separated frontend origins
  - BLOB_DRIVER (-blob): fs (default), memory or s3
  - BLOB_DIR (-blob-dir): Image directory for fs (default: data/images)
  - S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PATH_STYLE: S3 or MinIO settings
  - MAX_UPLOAD_BYTES: Image size cap (default: 10 MiB)
  - GEOCODER_URL (-geocoder): Nominatim-compatible geocoder
  - COOKIE_SECURE: Mark the session cookie Secure

# Architecture

The server uses a handler-based architecture with dependency injection:

  - filter: Listing filter state, query-string codec and the URL-synced store
  - view: List/map mode, selection, markers and page derivation
  - handlers: HTTP request handlers (agents, listings, inquiries, images)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - models: Request/response types
  - auth: Session tokens and IP hashing
  - db: Driver selection, schema and seeding
  - blob: Image byte storage (filesystem, memory, S3)
  - geo: Address geocoding
  - cliparse: Configuration parsing
  - client: API client used by pvctl

The pvctl command in cmd/pvctl seeds the database and browses the API from
a terminal.

See package documentation for each component.
*/
package main
