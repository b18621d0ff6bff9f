package sampler

import (
	"testing"
	"time"

	"github.com/GameboyEsc95/VMAS/collectors"
)

func point(i int) collectors.Point {
	return collectors.Point{
		Timestamp: time.Unix(int64(i), 0),
		CPU:       float64(i),
	}
}

func TestBufferNeverExceedsCapacity(t *testing.T) {
	b := NewBuffer(3)
	for i := 1; i <= 10; i++ {
		b.Push(point(i))
		if b.Len() > b.Cap() {
			t.Fatalf("after %d pushes Len() = %d > Cap() = %d", i, b.Len(), b.Cap())
		}
	}

	got := b.Values()
	want := []float64{8, 9, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBufferFull(t *testing.T) {
	b := NewBuffer(2)
	if b.Full() {
		t.Error("empty buffer reports full")
	}
	b.Push(point(1))
	if b.Full() {
		t.Error("half buffer reports full")
	}
	b.Push(point(2))
	if !b.Full() {
		t.Error("buffer at capacity not full")
	}
	b.Push(point(3))
	if !b.Full() || b.Len() != 2 {
		t.Errorf("after overflow Full=%v Len=%d", b.Full(), b.Len())
	}
}

func TestBufferOldestEvicted(t *testing.T) {
	b := NewBuffer(DefaultBufferSize)
	for i := 0; i <= DefaultBufferSize; i++ {
		b.Push(point(i))
	}

	pts := b.Points()
	if len(pts) != DefaultBufferSize {
		t.Fatalf("len = %d", len(pts))
	}
	if pts[0].CPU != 1 {
		t.Errorf("oldest = %v, want 1 (0 evicted)", pts[0].CPU)
	}
	if pts[len(pts)-1].CPU != float64(DefaultBufferSize) {
		t.Errorf("newest = %v", pts[len(pts)-1].CPU)
	}
}

func TestBufferPointsIsCopy(t *testing.T) {
	b := NewBuffer(2)
	b.Push(point(1))

	pts := b.Points()
	pts[0].CPU = 99

	if b.Points()[0].CPU != 1 {
		t.Error("mutating Points() result changed the buffer")
	}
}

func TestNewBufferDefaults(t *testing.T) {
	for _, c := range []int{0, -4} {
		if got := NewBuffer(c).Cap(); got != DefaultBufferSize {
			t.Errorf("NewBuffer(%d).Cap() = %d, want %d", c, got, DefaultBufferSize)
		}
	}
	if got := NewBuffer(1).Cap(); got != 1 {
		t.Errorf("NewBuffer(1).Cap() = %d", got)
	}
}
