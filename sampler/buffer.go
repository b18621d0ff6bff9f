package sampler

import "github.com/GameboyEsc95/VMAS/collectors"

// DefaultBufferSize is the number of recent points kept for charting.
const DefaultBufferSize = 10

// Buffer is a bounded FIFO of recent CPU points. Pushing onto a full buffer
// discards the oldest point.
type Buffer struct {
	points []collectors.Point
	cap    int
}

// NewBuffer creates a Buffer holding at most capacity points. capacity < 1
// means DefaultBufferSize.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultBufferSize
	}
	return &Buffer{
		points: make([]collectors.Point, 0, capacity+1),
		cap:    capacity,
	}
}

// Push appends p and evicts from the head until Len() <= Cap().
func (b *Buffer) Push(p collectors.Point) {
	b.points = append(b.points, p)
	if over := len(b.points) - b.cap; over > 0 {
		// Shift in place so the backing array never grows.
		n := copy(b.points, b.points[over:])
		b.points = b.points[:n]
	}
}

// Len returns the number of points held.
func (b *Buffer) Len() int {
	return len(b.points)
}

// Cap returns the maximum number of points held.
func (b *Buffer) Cap() int {
	return b.cap
}

// Full reports whether the buffer holds Cap() points.
func (b *Buffer) Full() bool {
	return len(b.points) == b.cap
}

// Points returns a copy of the held points, oldest first.
func (b *Buffer) Points() []collectors.Point {
	out := make([]collectors.Point, len(b.points))
	copy(out, b.points)
	return out
}

// Values returns the CPU values, oldest first.
func (b *Buffer) Values() []float64 {
	out := make([]float64, len(b.points))
	for i, p := range b.points {
		out[i] = p.CPU
	}
	return out
}
