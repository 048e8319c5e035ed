// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package view

import (
	"errors"
	"net/url"
	"strings"
	"sync"
)

var ErrNotVisible = errors.New("listing is not in the visible set")

// Query string keys
const (
	KeyView     = "view"
	KeySelected = "selected"
)

// Mode is the presentation of the listing set
type Mode string

const (
	ModeList Mode = "list"
	ModeMap  Mode = "map"
)

// ParseMode maps unknown values to ModeList
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeMap {
		return ModeMap
	}
	return ModeList
}

// Toggle returns the other mode
func (m Mode) Toggle() Mode {
	if m == ModeMap {
		return ModeList
	}
	return ModeMap
}

// Source says where a selection came from
type Source int

const (
	FromList Source = iota
	FromMap
)

// EffectKind is a side effect the presentation layer should perform
type EffectKind string

const (
	// ScrollIntoView brings the listing card into the viewport
	ScrollIntoView EffectKind = "scroll_into_view"
	// PanToMarker centres the map on the listing's marker
	PanToMarker EffectKind = "pan_to_marker"
)

type Effect struct {
	Kind      EffectKind `json:"kind"`
	ListingID string     `json:"listing_id"`
}

// State is the serializable part of the controller
type State struct {
	Mode     Mode   `json:"mode"`
	Selected string `json:"selected,omitempty"`
}

// ParseState reads view and selected from query values
func ParseState(v url.Values) State {
	return State{
		Mode:     ParseMode(v.Get(KeyView)),
		Selected: strings.TrimSpace(v.Get(KeySelected)),
	}
}

// AddTo writes non-default values into v
func (s State) AddTo(v url.Values) {
	if s.Mode == ModeMap {
		v.Set(KeyView, string(ModeMap))
	}
	if s.Selected != "" {
		v.Set(KeySelected, s.Selected)
	}
}

// Controller coordinates view mode and the selected listing between the
// card list and the map.
type Controller struct {
	mu       sync.Mutex
	mode     Mode
	selected string
	visible  map[string]struct{}
}

func NewController(st State) *Controller {
	mode := st.Mode
	if mode != ModeMap {
		mode = ModeList
	}
	return &Controller{
		mode:     mode,
		selected: st.Selected,
		visible:  make(map[string]struct{}),
	}
}

// State returns mode and selection
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Mode: c.mode, Selected: c.selected}
}

// Mode returns the current mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Selected returns the selected listing id, or ""
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Toggle flips between list and map.
// Returns the new mode and, when a listing is selected, the effect that keeps
// it in view in the new presentation.
func (c *Controller) Toggle() (Mode, []Effect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = c.mode.Toggle()
	return c.mode, c.keepInViewLocked()
}

// SetMode switches to m. Same-mode calls have no effects.
func (c *Controller) SetMode(m Mode) []Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m != ModeMap {
		m = ModeList
	}
	if m == c.mode {
		return nil
	}
	c.mode = m
	return c.keepInViewLocked()
}

func (c *Controller) keepInViewLocked() []Effect {
	if c.selected == "" {
		return nil
	}
	if c.mode == ModeMap {
		return []Effect{{Kind: PanToMarker, ListingID: c.selected}}
	}
	return []Effect{{Kind: ScrollIntoView, ListingID: c.selected}}
}

// SetVisible replaces the set of listings currently shown.
// Returns true if the selection was cleared because it fell out of the set.
func (c *Controller) SetVisible(ids []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		c.visible[id] = struct{}{}
	}
	if c.selected == "" {
		return false
	}
	if _, ok := c.visible[c.selected]; !ok {
		c.selected = ""
		return true
	}
	return false
}

// Select marks id as selected.
//
// A marker click scrolls the matching card into view. A card click pans the
// map, which only matters while the map is showing. Re-selecting the current
// listing does nothing.
func (c *Controller) Select(id string, from Source) ([]Effect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.visible[id]; !ok {
		return nil, ErrNotVisible
	}
	if id == c.selected {
		return nil, nil
	}
	c.selected = id

	switch from {
	case FromMap:
		return []Effect{{Kind: ScrollIntoView, ListingID: id}}, nil
	default:
		if c.mode == ModeMap {
			return []Effect{{Kind: PanToMarker, ListingID: id}}, nil
		}
		return nil, nil
	}
}

// ClearSelection drops the selection. Returns true if one was set.
func (c *Controller) ClearSelection() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.selected != ""
	c.selected = ""
	return had
}
