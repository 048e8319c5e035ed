// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/danielhkuo/properview/models"
)

// Query string keys
const (
	KeyLocation = "location"
	KeyMinPrice = "min_price"
	KeyMaxPrice = "max_price"
	KeyBeds     = "beds"
	KeyBaths    = "baths"
	KeyShowSold = "show_sold"
)

// State is the set of user-chosen listing constraints.
// A nil pointer means the constraint is not set.
type State struct {
	Location string   `json:"location,omitempty"`
	MinPrice *int64   `json:"min_price,omitempty"`
	MaxPrice *int64   `json:"max_price,omitempty"`
	MinBeds  *int     `json:"beds,omitempty"`
	MinBaths *float64 `json:"baths,omitempty"`
	ShowSold bool     `json:"show_sold,omitempty"`
}

// Parse reads filter state from query values.
// Malformed values are dropped rather than rejected so a hand-edited URL
// still renders a page.
func Parse(v url.Values) State {
	var s State
	s.Location = strings.TrimSpace(v.Get(KeyLocation))
	s.MinPrice = parseInt64(v.Get(KeyMinPrice))
	s.MaxPrice = parseInt64(v.Get(KeyMaxPrice))
	if n := parseInt64(v.Get(KeyBeds)); n != nil && *n <= math.MaxInt32 {
		beds := int(*n)
		s.MinBeds = &beds
	}
	s.MinBaths = parseFloat(v.Get(KeyBaths))
	if b, err := strconv.ParseBool(strings.TrimSpace(v.Get(KeyShowSold))); err == nil {
		s.ShowSold = b
	}
	return s
}

// ParseQuery parses a raw query string, with or without the leading '?'
func ParseQuery(raw string) State {
	// url.ParseQuery keeps every pair it could decode, so the error is not fatal
	v, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Parse(v)
}

func parseInt64(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parseFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// Values serializes the state. Unset fields are omitted.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Location != "" {
		v.Set(KeyLocation, s.Location)
	}
	if s.MinPrice != nil {
		v.Set(KeyMinPrice, strconv.FormatInt(*s.MinPrice, 10))
	}
	if s.MaxPrice != nil {
		v.Set(KeyMaxPrice, strconv.FormatInt(*s.MaxPrice, 10))
	}
	if s.MinBeds != nil {
		v.Set(KeyBeds, strconv.Itoa(*s.MinBeds))
	}
	if s.MinBaths != nil {
		v.Set(KeyBaths, strconv.FormatFloat(*s.MinBaths, 'f', -1, 64))
	}
	if s.ShowSold {
		v.Set(KeyShowSold, "true")
	}
	return v
}

// Encode returns the canonical query string (sorted keys, no leading '?')
func (s State) Encode() string {
	return s.Values().Encode()
}

// IsZero reports whether no constraint is set
func (s State) IsZero() bool {
	return s.Equal(State{})
}

// Equal compares constraint values, not pointer identity
func (s State) Equal(o State) bool {
	return s.Location == o.Location &&
		eqPtr(s.MinPrice, o.MinPrice) &&
		eqPtr(s.MaxPrice, o.MaxPrice) &&
		eqPtr(s.MinBeds, o.MinBeds) &&
		eqPtr(s.MinBaths, o.MinBaths) &&
		s.ShowSold == o.ShowSold
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Matches reports whether a listing satisfies every active constraint
func (s State) Matches(l models.Listing) bool {
	if !s.ShowSold && l.Status == models.StatusSold {
		return false
	}
	if s.MinPrice != nil && l.Price < *s.MinPrice {
		return false
	}
	if s.MaxPrice != nil && l.Price > *s.MaxPrice {
		return false
	}
	if s.MinBeds != nil && l.Bedrooms < *s.MinBeds {
		return false
	}
	if s.MinBaths != nil && l.Bathrooms < *s.MinBaths {
		return false
	}
	if s.Location != "" && !matchesLocation(l, s.Location) {
		return false
	}
	return true
}

func matchesLocation(l models.Listing, location string) bool {
	needle := strings.ToLower(location)
	for _, field := range []string{l.Address, l.City, l.State, l.PostalCode} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Apply returns the listings that match s, in input order.
// The result is never nil so it encodes as [] rather than null.
func Apply(listings []models.Listing, s State) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if s.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}
