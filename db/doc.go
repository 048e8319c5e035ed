// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation, and seeding.

# Drivers

Open maps the configured type to a database/sql driver and pings it:

	sqlite   → modernc.org/sqlite (default; foreign keys and busy timeout enabled)
	postgres → github.com/lib/pq
	pgx      → github.com/jackc/pgx/v5/stdlib

Queries use $N placeholders, which all three accept.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - agent: People who manage listings (name unique, case-insensitive)
  - listing: Property records with optional coordinates
  - listing_image: Image metadata; bytes live in the blob store
  - inquiry: Visitor messages per listing

# Relationships

	agent 1──* listing
	listing 1──* listing_image
	listing 1──* inquiry

All foreign keys use ON DELETE CASCADE.

# Seeding

LoadSeed reads a YAML file of agents and listings; Seed writes it in one
transaction, reusing agents that already exist by name:

	data, err := db.LoadSeed(f)
	res, err := db.Seed(ctx, conn, data)
*/
package db
