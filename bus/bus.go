// Package bus implements the subscription bus that notifies query readers
// of changed cells (spec component I): a multi-producer, multi-consumer
// broadcast where each subscriber has its own bounded channel, and falls
// back to a "stale" flag rather than blocking the publisher on a slow
// reader.
package bus

import (
	"sync"

	"github.com/spatialindex/octree/grid"
)

// defaultCapacity bounds each subscriber's backlog before it is marked
// stale. Chosen generously for a notification channel carrying only cell
// ids, never point data.
const defaultCapacity = 256

// Bus broadcasts grid.Cell change notifications to an open set of
// subscribers.
type Bus struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscription is one reader's view of the bus: a bounded channel of
// changed cells, plus a stale flag set if the reader fell behind.
type Subscription struct {
	bus   *Bus
	ch    chan grid.Cell
	mu    sync.Mutex
	stale bool
}

// Subscribe registers a new subscription. Callers must call Unsubscribe
// when done to stop receiving notifications.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{bus: b, ch: make(chan grid.Cell, defaultCapacity)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unsubscribe removes s from the bus. Subsequent Publish calls will not
// reach it.
func (b *Bus) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Publish notifies every current subscriber that cell changed. A
// subscriber whose channel is full is marked stale instead of blocking the
// publisher — the writer pool must never stall on a slow reader.
func (b *Bus) Publish(cell grid.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		select {
		case s.ch <- cell:
		default:
			s.markStale()
		}
	}
}

func (s *Subscription) markStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Changes returns the channel of changed cells. A reader should drain it
// promptly and check Stale after every receive (or periodically): once
// stale, cells may have been dropped, and the reader must fall back to a
// full resync from the directory rather than trust the channel's contents
// alone.
func (s *Subscription) Changes() <-chan grid.Cell {
	return s.ch
}

// Stale reports whether this subscriber has missed notifications, and
// clears the flag. The caller is expected to perform a full resync
// immediately after observing true.
func (s *Subscription) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasStale := s.stale
	s.stale = false
	return wasStale
}

// Close unsubscribes s from its bus and closes its channel.
func (s *Subscription) Close() {
	s.bus.Unsubscribe(s)
	close(s.ch)
}
