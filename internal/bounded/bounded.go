// Package bounded provides fixed-capacity containers. Storage is
// allocated once at construction and never grows; operations that
// would exceed capacity fail instead of reallocating.
package bounded

// Vec is an ordered collection with a fixed capacity.
type Vec[T any] struct {
	items []T
}

// NewVec allocates a Vec that holds at most capacity items.
func NewVec[T any](capacity int) *Vec[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Vec[T]{items: make([]T, 0, capacity)}
}

// Push appends v. It returns false and leaves the Vec unchanged when full.
func (v *Vec[T]) Push(item T) bool {
	if len(v.items) == cap(v.items) {
		return false
	}
	v.items = append(v.items, item)
	return true
}

// Len returns the number of items.
func (v *Vec[T]) Len() int { return len(v.items) }

// Cap returns the fixed capacity.
func (v *Vec[T]) Cap() int { return cap(v.items) }

// Full reports whether another Push would fail.
func (v *Vec[T]) Full() bool { return len(v.items) == cap(v.items) }

// At returns the i-th item. It panics when i is out of range.
func (v *Vec[T]) At(i int) T { return v.items[i] }

// Items returns the stored items. The slice aliases internal storage
// and is valid until the next mutation.
func (v *Vec[T]) Items() []T { return v.items }

// Reset empties the Vec, keeping its storage.
func (v *Vec[T]) Reset() {
	clear(v.items)
	v.items = v.items[:0]
}

// Stack is a LIFO with a fixed capacity.
type Stack[T any] struct {
	vec Vec[T]
}

// NewStack allocates a Stack that holds at most capacity items.
func NewStack[T any](capacity int) *Stack[T] {
	return &Stack[T]{vec: *NewVec[T](capacity)}
}

// Push places item on top. It returns false when the stack is full.
func (s *Stack[T]) Push(item T) bool { return s.vec.Push(item) }

// Pop removes and returns the top item.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	n := len(s.vec.items)
	if n == 0 {
		return zero, false
	}
	item := s.vec.items[n-1]
	s.vec.items[n-1] = zero
	s.vec.items = s.vec.items[:n-1]
	return item, true
}

// Len returns the number of items on the stack.
func (s *Stack[T]) Len() int { return s.vec.Len() }

// Cap returns the fixed capacity.
func (s *Stack[T]) Cap() int { return s.vec.Cap() }
