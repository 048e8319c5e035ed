// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

main loads a .env file (if present) before calling ParseFlags, so values in
.env behave like environment variables.

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type (sqlite, postgres, pgx)
	-base-url      Public base URL for image links
	-cors-origins  Extra origins allowed by CORS (comma-separated)
	-session-salt  Agent session salt
	-ip-salt       Inquiry IP hash salt
	-blob          Image store driver (fs, memory, s3)
	-blob-dir      Image directory for the fs driver
	-geocoder      Geocoder base URL

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p (default 3318)
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t (default sqlite)
	PUBLIC_BASE_URL  → -base-url (default http://localhost:<port>)
	SESSION_SALT     → -session-salt
	IP_HASH_SALT     → -ip-salt (default: session salt)
	BLOB_DRIVER      → -blob (default fs)
	BLOB_DIR         → -blob-dir (default data/images)
	GEOCODER_URL     → -geocoder (empty disables geocoding)
	CORS_ORIGINS     → -cors-origins (the PUBLIC_BASE_URL origin is always allowed)

Environment only:

	COOKIE_SECURE    Set Secure on the session cookie
	S3_BUCKET        Required when BLOB_DRIVER=s3
	S3_REGION        Default us-east-1
	S3_ENDPOINT      Custom endpoint (MinIO)
	S3_PATH_STYLE    Path-style addressing
	MAX_UPLOAD_BYTES Image upload cap (default 10 MiB)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - SESSION_SALT is missing
  - DATABASE_TYPE or BLOB_DRIVER is not a known value
  - BLOB_DRIVER=s3 without S3_BUCKET
  - PUBLIC_BASE_URL is not absolute, or CORS_ORIGINS contains *
*/
package cliparse
