// ABOUTME: Generic LIFO stack backed by a growable slice
// ABOUTME: Push/Pop are O(1) amortized; empty access reports ok=false

package container

// Stack is a last-in first-out sequence. The zero value is ready to use.
type Stack[T any] struct {
	items []T
}

// NewStack creates an empty stack
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Push places an item on top
func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes and returns the top item
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}

	top := len(s.items) - 1
	item := s.items[top]
	s.items[top] = zero
	s.items = s.items[:top]
	return item, true
}

// Peek returns the top item without removing it
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the stack depth
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// IsEmpty reports whether the stack holds no items
func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns the stacked items top first. The slice is a copy.
func (s *Stack[T]) Items() []T {
	out := make([]T, len(s.items))
	for i := range s.items {
		out[i] = s.items[len(s.items)-1-i]
	}
	return out
}
