// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package view

import (
	"net/url"

	"github.com/danielhkuo/properview/filter"
	"github.com/danielhkuo/properview/models"
)

// Page is everything the listings page renders for one query
type Page struct {
	Filter           filter.State     `json:"filter"`
	View             State            `json:"view"`
	Query            string           `json:"query"`
	Total            int              `json:"total"`
	Visible          int              `json:"visible"`
	SelectionCleared bool             `json:"selection_cleared,omitempty"`
	Listings         []models.Listing `json:"listings"`
	Markers          []Marker         `json:"markers"`
	Bounds           *Box             `json:"bounds,omitempty"`
}

// Query encodes filter and view state into one canonical query string
func Query(fs filter.State, vs State) string {
	v := fs.Values()
	vs.AddTo(v)
	return v.Encode()
}

// BuildPage derives the page from the full listing set and request query.
// A selection that the filter hides is dropped and reported.
func BuildPage(all []models.Listing, q url.Values) Page {
	fs := filter.Parse(q)
	visible := filter.Apply(all, fs)

	ids := make([]string, len(visible))
	for i, l := range visible {
		ids[i] = l.ID
	}
	ctrl := NewController(ParseState(q))
	cleared := ctrl.SetVisible(ids)
	vs := ctrl.State()

	markers := Markers(visible, vs.Selected)
	page := Page{
		Filter:           fs,
		View:             vs,
		Query:            Query(fs, vs),
		Total:            len(all),
		Visible:          len(visible),
		SelectionCleared: cleared,
		Listings:         visible,
		Markers:          markers,
	}
	if box, ok := Bounds(markers); ok {
		page.Bounds = &box
	}
	return page
}
