// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/models"
)

// SeedData is the YAML seed file layout:
//
//	agents:
//	  - name: Dana Reyes
//	    email: dana@example.com
//	    listings:
//	      - title: Craftsman bungalow
//	        price: 485000
//	        address: 1204 W 9th St
//	        city: Austin
//	        ...
type SeedData struct {
	Agents []SeedAgent `yaml:"agents"`
}

type SeedAgent struct {
	Name     string        `yaml:"name"`
	Email    string        `yaml:"email"`
	Phone    string        `yaml:"phone"`
	Listings []SeedListing `yaml:"listings"`
}

type SeedListing struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       int64    `yaml:"price"`
	Address     string   `yaml:"address"`
	City        string   `yaml:"city"`
	State       string   `yaml:"state"`
	PostalCode  string   `yaml:"postal_code"`
	Bedrooms    int      `yaml:"bedrooms"`
	Bathrooms   float64  `yaml:"bathrooms"`
	SquareFeet  int      `yaml:"square_feet"`
	Status      string   `yaml:"status"`
	Latitude    *float64 `yaml:"latitude"`
	Longitude   *float64 `yaml:"longitude"`
}

// request maps a seed entry onto the API body so both go through the same
// validation
func (l SeedListing) request() models.ListingRequest {
	return models.ListingRequest{
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Address:     l.Address,
		City:        l.City,
		State:       l.State,
		PostalCode:  l.PostalCode,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		SquareFeet:  l.SquareFeet,
		Status:      l.Status,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
	}
}

// SeedResult counts what Seed wrote
type SeedResult struct {
	AgentsCreated   int
	AgentsReused    int
	ListingsCreated int
}

// LoadSeed decodes a seed file. Unknown keys are an error so typos surface.
func LoadSeed(r io.Reader) (SeedData, error) {
	var data SeedData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return SeedData{}, errors.New("seed file is empty")
		}
		return SeedData{}, fmt.Errorf("decode seed: %w", err)
	}
	for i, a := range data.Agents {
		if strings.TrimSpace(a.Name) == "" {
			return SeedData{}, fmt.Errorf("agent %d: name is required", i)
		}
		for j, l := range a.Listings {
			req := l.request()
			if msg := req.Validate(); msg != "" {
				return SeedData{}, fmt.Errorf("agent %q listing %d: %s", a.Name, j, msg)
			}
		}
	}
	return data, nil
}

// Seed writes agents and their listings in one transaction.
// Agents are matched by name (case-insensitive) so re-running a seed adds
// listings to existing agents instead of failing.
func Seed(ctx context.Context, conn *sql.DB, data SeedData) (SeedResult, error) {
	var res SeedResult

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, a := range data.Agents {
		name := strings.TrimSpace(a.Name)

		var agentID string
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM agent WHERE LOWER(name) = LOWER($1)
		`, name).Scan(&agentID)
		switch {
		case err == nil:
			res.AgentsReused++
		case errors.Is(err, sql.ErrNoRows):
			agentID, err = auth.GenerateID(16)
			if err != nil {
				return res, err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO agent (id, name, email, phone, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, agentID, name, a.Email, a.Phone, now)
			if err != nil {
				return res, fmt.Errorf("insert agent %q: %w", name, err)
			}
			res.AgentsCreated++
		default:
			return res, fmt.Errorf("lookup agent %q: %w", name, err)
		}

		for j, l := range a.Listings {
			req := l.request()
			if msg := req.Validate(); msg != "" {
				return res, fmt.Errorf("agent %q listing %d: %s", name, j, msg)
			}
			listingID, err := auth.GenerateID(16)
			if err != nil {
				return res, err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO listing (id, agent_id, title, description, price, address, city, state,
				                     postal_code, bedrooms, bathrooms, square_feet, status,
				                     latitude, longitude, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			`, listingID, agentID, req.Title, req.Description, req.Price, req.Address, req.City, req.State,
				req.PostalCode, req.Bedrooms, req.Bathrooms, req.SquareFeet, req.Status,
				req.Latitude, req.Longitude, now, now)
			if err != nil {
				return res, fmt.Errorf("insert listing %q: %w", req.Title, err)
			}
			res.ListingsCreated++
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit seed: %w", err)
	}
	return res, nil
}
