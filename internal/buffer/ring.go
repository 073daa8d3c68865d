package buffer

// Ring is a ring buffer keeping the last x elements.
type Ring[T any] struct {
	index  int
	count  int
	values []T
}

// NewRing creates a new ring with the given buffer size.
func NewRing[T any](size int) *Ring[T] {
	if size < 1 {
		size = 1
	}
	return &Ring[T]{
		values: make([]T, size),
	}
}

// Size returns the number of elements within the ring.
func (r *Ring[T]) Size() int {
	return r.count
}

// Push adds an element to the ring, evicting the oldest one if the ring is full.
// It returns true if an element was evicted.
func (r *Ring[T]) Push(v T) bool {
	r.values[r.index] = v
	r.index = r.next(r.index)
	if r.count < len(r.values) {
		r.count++
		return false
	}
	return true
}

// Replace overwrites the most recent element.
// It returns false if the ring is empty.
func (r *Ring[T]) Replace(v T) bool {
	if r.count == 0 {
		return false
	}
	r.values[r.prev(r.index)] = v
	return true
}

// Last returns the most recent element.
func (r *Ring[T]) Last() (T, bool) {
	var t T
	if r.count == 0 {
		return t, false
	}
	return r.values[r.prev(r.index)], true
}

func (r *Ring[T]) next(index int) int {
	return (index + 1) % len(r.values)
}

func (r *Ring[T]) prev(index int) int {
	return (index - 1 + len(r.values)) % len(r.values)
}

// Get returns an ordered slice of the ring elements, oldest first.
func (r *Ring[T]) Get() []T {
	v := make([]T, r.count)
	start := r.index - r.count
	if start < 0 {
		start += len(r.values)
	}
	for i := 0; i < r.count; i++ {
		v[i] = r.values[(start+i)%len(r.values)]
	}
	return v
}
