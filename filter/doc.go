// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package filter implements listing filter state and its query-string form.

# Query String

Filter state round-trips through the URL so a filtered page can be shared:

	location=austin&max_price=650000&min_price=300000&beds=3&baths=2&show_sold=true

Parsing is lenient. Empty, malformed, or negative values are ignored:

	st := filter.ParseQuery(r.URL.RawQuery)
	canonical := st.Encode()

Encode emits keys in sorted order and omits unset values, so two equal states
always produce the same string.

# Matching

Apply is a single pass over an in-memory slice:

	visible := filter.Apply(all, st)

Matching rules:

  - Sold listings are hidden unless ShowSold is set
  - Location is a case-insensitive substring match on address, city, state, postal code
  - Price bounds are inclusive; a minimum above the maximum matches nothing
  - Bedrooms and bathrooms are minimums

# Store

Store keeps the current state in sync with the URL:

	nav := filter.NewAsyncNavigator(func(q string) { fetch(q) })
	defer nav.Close()

	store := filter.NewStore(initialQuery, nav)
	store.Update(func(s *filter.State) { s.Location = "austin" }) // navigates
	store.Sync(previousQuery)                                       // history: no navigation

Update only navigates when the canonical query actually changes. Sync adopts
an external query without calling the navigator, which breaks the
state → URL → state loop.

Navigation and listener calls happen in commit order, so the last URL pushed
always matches Query, even when a slow navigator overlaps a newer Update.
*/
package filter
