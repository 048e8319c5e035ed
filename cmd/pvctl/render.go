// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/danielhkuo/properview/models"
	"github.com/danielhkuo/properview/view"
)

// renderPage prints the page in its current mode: a card table for list
// mode, a marker table plus the fitted box for map mode.
func renderPage(out io.Writer, page view.Page) {
	fmt.Fprintf(out, "%d of %d listings", page.Visible, page.Total)
	if page.Query != "" {
		fmt.Fprintf(out, "  ?%s", page.Query)
	}
	fmt.Fprintln(out)
	if page.SelectionCleared {
		fmt.Fprintln(out, "selection cleared: listing is filtered out")
	}
	if page.Visible == 0 {
		fmt.Fprintln(out, "no listings match these filters")
		return
	}

	if page.View.Mode == view.ModeMap {
		renderMarkers(out, page)
		return
	}
	renderListings(out, page.Listings, page.View.Selected)
}

func renderListings(out io.Writer, listings []models.Listing, selected string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "", "ID", "Title", "Price", "Beds", "Baths", "City", "Status", "Pin", "Listed"})
	table.SetAutoWrapText(false)
	for i, l := range listings {
		table.Append([]string{
			strconv.Itoa(i + 1),
			mark(l.ID == selected),
			l.ID,
			l.Title,
			price(l),
			strconv.Itoa(l.Bedrooms),
			humanize.Ftoa(l.Bathrooms),
			l.City,
			l.Status,
			mark(l.HasCoordinates()),
			humanize.Time(l.CreatedAt),
		})
	}
	table.Render()
}

func renderMarkers(out io.Writer, page view.Page) {
	if len(page.Markers) == 0 {
		fmt.Fprintln(out, "no listings have map coordinates")
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "", "ID", "Title", "Price", "Lat", "Lng"})
	table.SetAutoWrapText(false)
	for i, m := range page.Markers {
		table.Append([]string{
			strconv.Itoa(i + 1),
			mark(m.Selected),
			m.ListingID,
			m.Title,
			"$" + humanize.Comma(m.Price),
			strconv.FormatFloat(m.Latitude, 'f', 5, 64),
			strconv.FormatFloat(m.Longitude, 'f', 5, 64),
		})
	}
	table.Render()

	if b := page.Bounds; b != nil {
		fmt.Fprintf(out, "bounds N %.5f S %.5f E %.5f W %.5f, centre %.5f,%.5f\n",
			b.North, b.South, b.East, b.West, b.CenterLat, b.CenterLng)
	}
	if unpinned := page.Visible - len(page.Markers); unpinned > 0 {
		fmt.Fprintf(out, "%d listing(s) not shown on the map (no coordinates)\n", unpinned)
	}
}

func renderEffects(out io.Writer, effects []view.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case view.PanToMarker:
			fmt.Fprintf(out, "-> map pans to %s\n", e.ListingID)
		case view.ScrollIntoView:
			fmt.Fprintf(out, "-> list scrolls to %s\n", e.ListingID)
		}
	}
}

func price(l models.Listing) string {
	if l.PriceDisplay != "" {
		return l.PriceDisplay
	}
	return "$" + humanize.Comma(l.Price)
}

func mark(b bool) string {
	if b {
		return "*"
	}
	return ""
}
