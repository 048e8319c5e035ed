// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

func TestDriverName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"sqlite", "sqlite", false},
		{"", "sqlite", false},
		{"postgres", "postgres", false},
		{"pgx", "pgx", false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		got, err := DriverName(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("DriverName(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWithSQLitePragmas(t *testing.T) {
	if got := withSQLitePragmas("app.db"); got != "app.db?"+sqlitePragmas {
		t.Errorf("unexpected DSN %q", got)
	}
	if got := withSQLitePragmas("file:app.db?mode=rwc"); got != "file:app.db?mode=rwc&"+sqlitePragmas {
		t.Errorf("unexpected DSN %q", got)
	}
	custom := "app.db?_pragma=journal_mode(WAL)"
	if got := withSQLitePragmas(custom); got != custom {
		t.Errorf("explicit pragmas should be left alone, got %q", got)
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	conn := openTestDB(t)
	if err := CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("second CreateSchema failed: %v", err)
	}
}

func TestSchema_AgentNameUniqueIgnoringCase(t *testing.T) {
	conn := openTestDB(t)
	if _, err := conn.Exec(`INSERT INTO agent (id, name) VALUES ('a1', 'Dana Reyes')`); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(`INSERT INTO agent (id, name) VALUES ('a2', 'dana reyes')`); err == nil {
		t.Error("expected unique violation for case-insensitive duplicate name")
	}
}

func TestSchema_CascadeDelete(t *testing.T) {
	conn := openTestDB(t)
	stmts := []string{
		`INSERT INTO agent (id, name) VALUES ('a1', 'Agent')`,
		`INSERT INTO listing (id, agent_id, title, price, address) VALUES ('l1', 'a1', 'House', 100, '1 Main St')`,
		`INSERT INTO inquiry (id, listing_id, name, email, message) VALUES ('i1', 'l1', 'V', 'v@example.com', 'hi')`,
		`DELETE FROM agent WHERE id = 'a1'`,
	}
	for _, s := range stmts {
		if _, err := conn.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM inquiry`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected cascade to remove inquiries, %d left", n)
	}
}

const seedYAML = `
agents:
  - name: Dana Reyes
    email: dana@example.com
    listings:
      - title: Craftsman bungalow
        price: 485000
        address: 1204 W 9th St
        city: Austin
        state: TX
        bedrooms: 3
        bathrooms: 2
        latitude: 30.2735
        longitude: -97.7560
      - title: East side duplex
        price: 615000
        address: 2210 E 12th St
        city: Austin
        state: TX
        status: pending
  - name: Marcus Hale
    listings:
      - title: Lake cabin
        price: 329000
        address: 88 Shoreline Dr
        city: Marble Falls
        status: sold
`

func TestLoadSeed(t *testing.T) {
	data, err := LoadSeed(strings.NewReader(seedYAML))
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	if len(data.Agents) != 2 || len(data.Agents[0].Listings) != 2 {
		t.Fatalf("unexpected seed shape: %+v", data)
	}
	if data.Agents[0].Listings[0].Latitude == nil {
		t.Error("expected latitude to be decoded")
	}
	if data.Agents[0].Listings[1].Latitude != nil {
		t.Error("missing latitude should stay nil")
	}
}

func TestLoadSeed_Errors(t *testing.T) {
	const listing = "agents:\n  - name: A\n    listings:\n      - title: T\n        address: x\n"
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"empty", "", "empty"},
		{"unknown key", "agents:\n  - name: A\n    nickname: B\n", "nickname"},
		{"missing name", "agents:\n  - email: a@example.com\n", "name is required"},
		{"missing title", "agents:\n  - name: A\n    listings:\n      - address: x\n", "title is required"},
		{"blank address", "agents:\n  - name: A\n    listings:\n      - title: T\n        address: '  '\n", "address is required"},
		{"bad status", listing + "        status: rented\n", "status must be"},
		{"negative price", listing + "        price: -1\n", "price must not be negative"},
		{"negative bedrooms", listing + "        bedrooms: -2\n", "bedrooms must not be negative"},
		{"negative bathrooms", listing + "        bathrooms: -1.5\n", "bathrooms must not be negative"},
		{"negative square feet", listing + "        square_feet: -100\n", "square_feet must not be negative"},
		{"latitude out of range", listing + "        latitude: 500\n        longitude: 0\n", "latitude must be between"},
		{"longitude out of range", listing + "        latitude: 30\n        longitude: 200\n", "longitude must be between"},
		{"latitude without longitude", listing + "        latitude: 30.2\n", "given together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err)
			}
		})
	}
}

func TestSeed_RejectsInvalidListing(t *testing.T) {
	conn := openTestDB(t)
	lat := 500.0
	lng := 0.0
	data := SeedData{Agents: []SeedAgent{{
		Name: "Dana Reyes",
		Listings: []SeedListing{
			{Title: "Craftsman bungalow", Address: "1204 W 9th St"},
			{Title: "Nowhere", Address: "1 Off Map Rd", Latitude: &lat, Longitude: &lng},
		},
	}}}

	if _, err := Seed(context.Background(), conn, data); err == nil {
		t.Fatal("expected Seed to reject an out-of-range latitude")
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM listing`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected rollback to leave no listings, got %d", n)
	}
}

func TestSeed(t *testing.T) {
	conn := openTestDB(t)
	data, err := LoadSeed(strings.NewReader(seedYAML))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Seed(context.Background(), conn, data)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if res.AgentsCreated != 2 || res.ListingsCreated != 3 {
		t.Errorf("unexpected result %+v", res)
	}

	var status string
	if err := conn.QueryRow(`SELECT status FROM listing WHERE title = 'Craftsman bungalow'`).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != "active" {
		t.Errorf("default status should be active, got %q", status)
	}

	// Re-running reuses agents by name
	res, err = Seed(context.Background(), conn, data)
	if err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	if res.AgentsCreated != 0 || res.AgentsReused != 2 {
		t.Errorf("expected agents to be reused, got %+v", res)
	}

	var agents, listings int
	conn.QueryRow(`SELECT COUNT(*) FROM agent`).Scan(&agents)
	conn.QueryRow(`SELECT COUNT(*) FROM listing`).Scan(&listings)
	if agents != 2 || listings != 6 {
		t.Errorf("expected 2 agents and 6 listings, got %d and %d", agents, listings)
	}
}
