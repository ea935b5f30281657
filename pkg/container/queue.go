// ABOUTME: Generic FIFO queue backed by a growable ring buffer
// ABOUTME: Enqueue/Dequeue are O(1) amortized; empty access reports ok=false

package container

const initialCapacity = 8

// Queue is a first-in first-out sequence. The zero value is ready to use.
type Queue[T any] struct {
	items []T
	head  int // index of the oldest item
	count int
}

// NewQueue creates an empty queue
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue appends an item at the tail
func (q *Queue[T]) Enqueue(item T) {
	if q.count == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.count)%len(q.items)] = item
	q.count++
}

// Dequeue removes and returns the oldest item
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.count == 0 {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero // drop the reference
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return item, true
}

// Peek returns the oldest item without removing it
func (q *Queue[T]) Peek() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	return q.count
}

// IsEmpty reports whether the queue holds no items
func (q *Queue[T]) IsEmpty() bool {
	return q.count == 0
}

// Items returns the queued items oldest first. The slice is a copy.
func (q *Queue[T]) Items() []T {
	out := make([]T, q.count)
	for i := 0; i < q.count; i++ {
		out[i] = q.items[(q.head+i)%len(q.items)]
	}
	return out
}

// grow doubles the buffer and unwraps the ring so head starts at 0
func (q *Queue[T]) grow() {
	capacity := len(q.items) * 2
	if capacity == 0 {
		capacity = initialCapacity
	}

	items := make([]T, capacity)
	for i := 0; i < q.count; i++ {
		items[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = items
	q.head = 0
}
