// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/properview/filter"
	"github.com/danielhkuo/properview/view"
)

type listingsOptions struct {
	location string
	minPrice int64
	maxPrice int64
	beds     int
	baths    float64
	showSold bool
	mode     string
	selected string
	json     bool
}

func newListingsCmd(root *rootOptions) *cobra.Command {
	opts := &listingsOptions{}

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Show the listings page for a set of filters",
		Example: `  pvctl listings --location austin --min-price 300000 --beds 3
  pvctl listings --view map --show-sold`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListings(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.location, "location", "", "city, state or address text")
	f.Int64Var(&opts.minPrice, "min-price", 0, "minimum price in dollars")
	f.Int64Var(&opts.maxPrice, "max-price", 0, "maximum price in dollars")
	f.IntVar(&opts.beds, "beds", 0, "minimum bedrooms")
	f.Float64Var(&opts.baths, "baths", 0, "minimum bathrooms")
	f.BoolVar(&opts.showSold, "show-sold", false, "include sold listings")
	f.StringVar(&opts.mode, "view", string(view.ModeList), "list or map")
	f.StringVar(&opts.selected, "selected", "", "listing ID to select")
	f.BoolVar(&opts.json, "json", false, "print the raw page as JSON")
	return cmd
}

// filterState maps the flags that were actually set onto a filter state
func (o *listingsOptions) filterState(cmd *cobra.Command) filter.State {
	st := filter.State{Location: o.location, ShowSold: o.showSold}
	f := cmd.Flags()
	if f.Changed("min-price") {
		st.MinPrice = &o.minPrice
	}
	if f.Changed("max-price") {
		st.MaxPrice = &o.maxPrice
	}
	if f.Changed("beds") {
		st.MinBeds = &o.beds
	}
	if f.Changed("baths") {
		st.MinBaths = &o.baths
	}
	return st
}

func runListings(cmd *cobra.Command, root *rootOptions, opts *listingsOptions) error {
	c, err := root.client()
	if err != nil {
		return err
	}

	vs := view.State{Mode: view.ParseMode(opts.mode), Selected: opts.selected}
	page, err := c.Listings(cmd.Context(), view.Query(opts.filterState(cmd), vs))
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}
	renderPage(cmd.OutOrStdout(), page)
	return nil
}
