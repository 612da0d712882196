package recorder

import "sync"

// growAt is the fill ratio, in percent, at which a Queue doubles.
const growAt = 70

// Queue is a FIFO ring buffer that doubles its capacity instead of
// rejecting writes. Safe for concurrent use.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	n      int
	closed bool

	pushed  int64
	popped  int64
	resizes int
}

// QueueStats is a point-in-time view of a Queue.
type QueueStats struct {
	Len     int
	Cap     int
	Pushed  int64
	Popped  int64
	Resizes int
}

// NewQueue creates a queue with the given initial capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{items: make([]T, capacity)}
}

// Push appends item. Returns false once the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if (q.n+1)*100 >= len(q.items)*growAt {
		q.resize(len(q.items) * 2)
	}

	q.items[(q.head+q.n)%len(q.items)] = item
	q.n++
	q.pushed++
	return true
}

// Drain removes up to max items from the head, or every item when max <= 0.
func (q *Queue[T]) Drain(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.n
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]T, n)
	var zero T
	for i := range out {
		out[i] = q.items[q.head]
		q.items[q.head] = zero
		q.head = (q.head + 1) % len(q.items)
	}
	q.n -= n
	q.popped += int64(n)
	return out
}

// Close rejects further pushes. Items already queued can still be drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:     q.n,
		Cap:     len(q.items),
		Pushed:  q.pushed,
		Popped:  q.popped,
		Resizes: q.resizes,
	}
}

// resize must be called with mu held.
func (q *Queue[T]) resize(capacity int) {
	items := make([]T, capacity)
	for i := 0; i < q.n; i++ {
		items[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = items
	q.head = 0
	q.resizes++
}
