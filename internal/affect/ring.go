package affect

// ring is a fixed-capacity circular buffer. Pushing onto a full ring
// overwrites the oldest entry.
type ring[T any] struct {
	buf  []T
	head int // next write position
	n    int
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

func (r *ring[T]) len() int { return r.n }

func (r *ring[T]) capacity() int { return len(r.buf) }

func (r *ring[T]) full() bool { return r.n == len(r.buf) }

// at returns the i-th element counting from the oldest.
func (r *ring[T]) at(i int) T {
	start := (r.head - r.n + len(r.buf)) % len(r.buf)
	return r.buf[(start+i)%len(r.buf)]
}

// newest returns the most recently pushed element.
func (r *ring[T]) newest() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	return r.at(r.n - 1), true
}

// items copies the contents oldest first.
func (r *ring[T]) items() []T {
	out := make([]T, r.n)
	for i := range out {
		out[i] = r.at(i)
	}
	return out
}

// last copies up to k of the newest elements, oldest first.
func (r *ring[T]) last(k int) []T {
	if k > r.n {
		k = r.n
	}
	if k <= 0 {
		return []T{}
	}
	out := make([]T, k)
	off := r.n - k
	for i := range out {
		out[i] = r.at(off + i)
	}
	return out
}

func (r *ring[T]) reset() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.head = 0
	r.n = 0
}
