// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package view coordinates list/map presentation and listing selection.

# Modes

The listings page shows the filtered set either as cards or as map pins:

	view=list (default, omitted from the URL)
	view=map

# Selection

Controller keeps one selected listing id in step between the card list and
the map. Selecting returns the side effects the presentation should run:

	ctrl := view.NewController(view.ParseState(q))
	ctrl.SetVisible(ids)
	effects, err := ctrl.Select(id, view.FromMap) // [{scroll_into_view id}]

Effects by source:

  - Marker click: ScrollIntoView on the card
  - Card click in map mode: PanToMarker
  - Card click in list mode: no effect
  - Toggling mode with a selection keeps it in view

A selection that the current filter hides is cleared by SetVisible.

# Pages

BuildPage is the pure function behind GET /listings. It applies the filter,
reconciles the selection, builds markers and the fit-to-pins box, and returns
the canonical query string the client should mirror into its URL.
*/
package view
