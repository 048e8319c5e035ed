// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package view

import "github.com/danielhkuo/properview/models"

// Marker is one map pin
type Marker struct {
	ListingID string  `json:"listing_id"`
	Title     string  `json:"title"`
	Price     int64   `json:"price"`
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Selected  bool    `json:"selected"`
}

// Box is a lat/lng bounding box with its centre
type Box struct {
	North     float64 `json:"north"`
	South     float64 `json:"south"`
	East      float64 `json:"east"`
	West      float64 `json:"west"`
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
}

// Markers builds pins for listings that have coordinates, in input order
func Markers(listings []models.Listing, selected string) []Marker {
	out := make([]Marker, 0, len(listings))
	for _, l := range listings {
		if !l.HasCoordinates() {
			continue
		}
		out = append(out, Marker{
			ListingID: l.ID,
			Title:     l.Title,
			Price:     l.Price,
			Status:    l.Status,
			Latitude:  *l.Latitude,
			Longitude: *l.Longitude,
			Selected:  l.ID == selected,
		})
	}
	return out
}

// Bounds returns the box that fits every marker.
// ok is false when there are no markers.
// Boxes spanning the antimeridian are not special-cased.
func Bounds(markers []Marker) (box Box, ok bool) {
	if len(markers) == 0 {
		return Box{}, false
	}
	box = Box{
		North: markers[0].Latitude,
		South: markers[0].Latitude,
		East:  markers[0].Longitude,
		West:  markers[0].Longitude,
	}
	for _, m := range markers[1:] {
		box.North = max(box.North, m.Latitude)
		box.South = min(box.South, m.Latitude)
		box.East = max(box.East, m.Longitude)
		box.West = min(box.West, m.Longitude)
	}
	box.CenterLat = (box.North + box.South) / 2
	box.CenterLng = (box.East + box.West) / 2
	return box, true
}
