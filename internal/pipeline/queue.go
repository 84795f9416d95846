// SPDX-License-Identifier: MIT
package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"freqlab/internal/spectrum"
)

// Policy decides what happens to requests that have not started yet when a
// new one arrives.
type Policy int

const (
	// FIFO keeps every request; each one is computed in submission order.
	FIFO Policy = iota
	// Latest keeps only the newest pending request.
	Latest
)

func (p Policy) String() string {
	switch p {
	case FIFO:
		return "fifo"
	case Latest:
		return "latest"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts "fifo" or "latest" (case-insensitive) to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo", "":
		return FIFO, nil
	case "latest":
		return Latest, nil
	default:
		return FIFO, fmt.Errorf("unknown queue policy: '%s'", s)
	}
}

// Request is one snapshot awaiting recompute.
type Request struct {
	ID       string
	Seq      uint64
	Snapshot spectrum.Snapshot
	Enqueued time.Time
}

// queue is an unbounded request queue. push never blocks; pop waits on a
// one-slot wake channel instead of spinning.
type queue struct {
	mu     sync.Mutex
	items  []Request
	next   uint64
	policy Policy
	wake   chan struct{}
}

func newQueue(policy Policy) *queue {
	return &queue{policy: policy, wake: make(chan struct{}, 1)}
}

// push numbers r, appends it and returns it along with how many pending
// requests it replaced. Sequence numbers follow queue order.
func (q *queue) push(r Request) (Request, int) {
	q.mu.Lock()
	q.next++
	r.Seq = q.next
	replaced := 0
	if q.policy == Latest {
		replaced = len(q.items)
		clear(q.items)
		q.items = q.items[:0]
	}
	q.items = append(q.items, r)
	depth := len(q.items)
	q.mu.Unlock()

	queueDepth.Set(float64(depth))
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return r, replaced
}

// pop removes the oldest request, blocking until one is available or done
// is closed.
func (q *queue) pop(done <-chan struct{}) (Request, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			r := q.items[0]
			q.items[0] = Request{}
			q.items = q.items[1:]
			depth := len(q.items)
			q.mu.Unlock()
			queueDepth.Set(float64(depth))
			return r, true
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-done:
			return Request{}, false
		}
	}
}

// len returns the number of pending requests.
func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
