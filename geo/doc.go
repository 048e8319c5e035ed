// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package geo resolves listing addresses to coordinates so listings created
// without latitude and longitude can still appear on the map.
//
// Client speaks the Nominatim search API. Lookups retry on network errors,
// 429 and 5xx responses, and successful results are kept in an LRU cache
// keyed by the whitespace- and case-normalized address.
package geo
