package writer

import (
	"container/heap"
	"sync"
	"time"
)

// taskHeap is a container/heap.Interface over *task, ordered by the active
// priorityFunc's score (highest first) with a (lod, pos, sequence)
// tie-break, mirroring the eviction-heap idiom used for transaction
// eviction in the blob pool: a small binary heap keyed by a pluggable
// scoring function, re-evaluated against the current clock on every pop
// rather than cached at push time.
type taskHeap struct {
	items    []*task
	priority priorityFunc
	now      time.Time
}

func (h *taskHeap) Len() int { return len(h.items) }

func (h *taskHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	pa, pb := h.priority(a, h.now), h.priority(b, h.now)
	if pa != pb {
		return pa > pb // higher score first
	}
	if a.cell.Lod != b.cell.Lod {
		return a.cell.Lod < b.cell.Lod
	}
	if a.cell.X != b.cell.X {
		return a.cell.X < b.cell.X
	}
	if a.cell.Y != b.cell.Y {
		return a.cell.Y < b.cell.Y
	}
	if a.cell.Z != b.cell.Z {
		return a.cell.Z < b.cell.Z
	}
	return a.sequence < b.sequence
}

func (h *taskHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *taskHeap) Push(x any) { h.items = append(h.items, x.(*task)) }

func (h *taskHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return item
}

// queue is a blocking, thread-safe priority queue of tasks. The scoring
// function can be swapped at runtime; setPriorityFunc re-heapifies the
// pending tasks under the new function, so the next pop honors it.
type queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	heap     taskHeap
	sequence uint64
	closed   bool
}

func newQueue(fn priorityFunc) *queue {
	q := &queue{heap: taskHeap{priority: fn}}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) setPriorityFunc(fn priorityFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.heap.priority = fn
	q.heap.now = time.Now()
	heap.Init(&q.heap)
}

// push enqueues t, assigning it a fresh sequence number, and a timestamp if
// it has none yet (re-enqueued tasks keep their original timestamp).
func (q *queue) push(t *task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t.enqueuedAt.IsZero() {
		t.enqueuedAt = time.Now()
	}
	q.sequence++
	t.sequence = q.sequence
	heap.Push(&q.heap, t)
	q.cond.Signal()
}

// pop blocks until a task is available or the queue is closed, returning
// (nil, false) only in the latter case after the backlog has fully drained
// — shutdown is cooperative, not abrupt (spec §4.G "drains its queue before
// releasing").
func (q *queue) pop() (*task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.heap.Len() == 0 {
		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}
	q.heap.now = time.Now()
	t := heap.Pop(&q.heap).(*task)
	return t, true
}

// close unblocks all pop()s once the queue drains; it does not discard
// pending tasks.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}
