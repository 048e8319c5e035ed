// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filter

import "sync"

// Store holds the current filter state and its canonical query string.
//
// Local edits go through Update/Replace and are pushed out through the
// Navigator. Changes that originate outside (history navigation, a pasted
// URL) come in through Sync and are never pushed back out.
//
// Side effects (navigation, listeners) are delivered in commit order by one
// goroutine at a time, so the last navigation and the last notification
// always carry the state Query reports. Navigators and listeners may read the
// store and may call Update or Sync; those nested changes are delivered after
// the current one.
type Store struct {
	mu     sync.Mutex
	state  State
	query  string
	nav    Navigator
	subs   map[int]func(State)
	order  []int
	nextID int

	pending    []change
	delivering bool
}

// change is a committed state waiting for its side effects
type change struct {
	state    State
	query    string
	navigate bool
}

// NewStore creates a store seeded from a raw query string.
// nav may be nil when nothing needs to observe navigation.
func NewStore(initialQuery string, nav Navigator) *Store {
	s := ParseQuery(initialQuery)
	return &Store{
		state: s,
		query: s.Encode(),
		nav:   nav,
		subs:  make(map[int]func(State)),
	}
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Query returns the canonical query string for the current state
func (s *Store) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Update applies fn to a copy of the current state.
// Returns the new state and whether it changed. A change navigates once.
//
// fn runs without the store lock held, so it may read the store. If another
// change commits while fn runs, fn is called again on the newer state.
func (s *Store) Update(fn func(*State)) (State, bool) {
	for {
		s.mu.Lock()
		base := s.state.clone()
		baseQuery := s.query
		s.mu.Unlock()

		next := base.clone()
		fn(&next)
		// Round-trip through the query so the stored state is always one
		// Parse would have produced (trimmed location, negatives dropped).
		next = ParseQuery(next.Encode())
		query := next.Encode()

		s.mu.Lock()
		if s.query != baseQuery {
			s.mu.Unlock()
			continue
		}
		if query == s.query {
			s.mu.Unlock()
			return next, false
		}
		s.commitLocked(next, query, true)
		s.mu.Unlock()

		s.deliver()
		return next, true
	}
}

// Replace swaps in a whole state, navigating if it differs
func (s *Store) Replace(st State) (State, bool) {
	return s.Update(func(cur *State) { *cur = st.clone() })
}

// Sync adopts an externally changed query string.
// Returns true if the local state changed. Never navigates.
func (s *Store) Sync(rawQuery string) bool {
	next := ParseQuery(rawQuery)
	query := next.Encode()

	s.mu.Lock()
	if query == s.query {
		s.mu.Unlock()
		return false
	}
	s.commitLocked(next, query, false)
	s.mu.Unlock()

	s.deliver()
	return true
}

func (s *Store) commitLocked(next State, query string, navigate bool) {
	s.state = next
	s.query = query
	s.pending = append(s.pending, change{state: next.clone(), query: query, navigate: navigate})
}

// deliver drains pending changes in commit order. If another goroutine is
// already draining, it picks up this caller's change instead.
func (s *Store) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	for len(s.pending) > 0 {
		c := s.pending[0]
		s.pending = s.pending[1:]
		nav := s.nav
		listeners := s.listenersLocked()
		s.mu.Unlock()

		if c.navigate && nav != nil {
			nav.Navigate(c.query)
		}
		notify(listeners, c.state)

		s.mu.Lock()
	}
	// Cleared under the same lock as the empty check so no commit is stranded
	s.delivering = false
	s.mu.Unlock()
}

// Subscribe registers fn to run after every effective change.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store) listenersLocked() []func(State) {
	out := make([]func(State), 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.subs[id])
	}
	return out
}

func notify(listeners []func(State), st State) {
	for _, fn := range listeners {
		fn(st.clone())
	}
}

func (s State) clone() State {
	out := s
	out.MinPrice = clonePtr(s.MinPrice)
	out.MaxPrice = clonePtr(s.MaxPrice)
	out.MinBeds = clonePtr(s.MinBeds)
	out.MinBaths = clonePtr(s.MinBaths)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
