// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filter

import "sync"

// Navigator receives canonical query strings after local filter changes.
// Implementations must not block the caller.
type Navigator interface {
	Navigate(query string)
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func(query string)

func (f NavigatorFunc) Navigate(query string) { f(query) }

// AsyncNavigator runs fn on a background goroutine.
// Navigate never blocks; if several queries arrive while fn is busy only the
// latest one is delivered.
type AsyncNavigator struct {
	fn func(string)

	mu      sync.Mutex
	pending string
	has     bool
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewAsyncNavigator starts the delivery goroutine. Call Close to stop it.
func NewAsyncNavigator(fn func(query string)) *AsyncNavigator {
	n := &AsyncNavigator{
		fn:   fn,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go n.run()
	return n
}

// Navigate records query as the latest pending navigation
func (n *AsyncNavigator) Navigate(query string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.pending = query
	n.has = true
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Close delivers any pending query, then stops the goroutine.
// Safe to call more than once.
func (n *AsyncNavigator) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.quit)
	<-n.done
}

func (n *AsyncNavigator) run() {
	defer close(n.done)
	for {
		select {
		case <-n.wake:
			n.deliver()
		case <-n.quit:
			n.deliver()
			return
		}
	}
}

func (n *AsyncNavigator) deliver() {
	n.mu.Lock()
	query, has := n.pending, n.has
	n.has = false
	n.mu.Unlock()
	if has {
		n.fn(query)
	}
}
