// SPDX-License-Identifier: MIT
package pipeline

import "sync"

// Publisher receives every result the worker produces.
type Publisher interface {
	Publish(r *Result)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(r *Result)

// Publish calls f(r).
func (f PublisherFunc) Publish(r *Result) { f(r) }

// Results is the hand-off between the worker and a renderer. It keeps only
// the newest untaken result; older ones are counted and discarded, so a
// consumer that polls slowly always sees the latest state.
type Results struct {
	mu        sync.Mutex
	pending   *Result
	last      *Result
	published uint64
	unread    uint64
	notify    chan struct{}
}

// NewResults returns an empty result channel.
func NewResults() *Results {
	return &Results{notify: make(chan struct{}, 1)}
}

// Publish stores r as the latest result and wakes any waiter.
func (c *Results) Publish(r *Result) {
	c.mu.Lock()
	if c.pending != nil {
		c.unread++
		unreadTotal.Inc()
	}
	c.pending = r
	c.last = r
	c.published++
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// TryLatest takes the newest result without blocking. ok is false when
// nothing was published since the previous take.
func (c *Results) TryLatest() (r *Result, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, c.pending = c.pending, nil
	return r, r != nil
}

// Notify returns a channel that receives after each Publish. Wakeups are
// coalesced; follow with TryLatest.
func (c *Results) Notify() <-chan struct{} {
	return c.notify
}

// Last returns the most recent result whether or not it has been taken.
func (c *Results) Last() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Published returns how many results have been published.
func (c *Results) Published() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published
}

// Unread returns how many results were replaced before being taken.
func (c *Results) Unread() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Fanout publishes to every target in order.
type Fanout []Publisher

// Publish forwards r to each target.
func (f Fanout) Publish(r *Result) {
	for _, p := range f {
		p.Publish(r)
	}
}
