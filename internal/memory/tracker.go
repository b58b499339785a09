// Package memory tracks the Arrow memory held by the tables of a run.
package memory

import (
	"log/slog"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// TrackingAllocator wraps an Arrow allocator and counts the bytes it holds.
// It is safe for concurrent use, as Arrow requires of allocators.
type TrackingAllocator struct {
	base        memory.Allocator
	current     atomic.Int64
	peak        atomic.Int64
	allocations atomic.Int64
}

var _ memory.Allocator = (*TrackingAllocator)(nil)

// NewTrackingAllocator wraps base. A nil base means the Go allocator.
func NewTrackingAllocator(base memory.Allocator) *TrackingAllocator {
	if base == nil {
		base = memory.NewGoAllocator()
	}
	return &TrackingAllocator{base: base}
}

// Allocate implements memory.Allocator.
func (t *TrackingAllocator) Allocate(size int) []byte {
	b := t.base.Allocate(size)
	t.allocations.Add(1)
	t.grow(int64(len(b)))
	return b
}

// Reallocate implements memory.Allocator.
func (t *TrackingAllocator) Reallocate(size int, b []byte) []byte {
	old := int64(len(b))
	nb := t.base.Reallocate(size, b)
	t.grow(int64(len(nb)) - old)
	return nb
}

// Free implements memory.Allocator.
func (t *TrackingAllocator) Free(b []byte) {
	t.grow(-int64(len(b)))
	t.base.Free(b)
}

func (t *TrackingAllocator) grow(delta int64) {
	cur := t.current.Add(delta)
	for {
		peak := t.peak.Load()
		if cur <= peak || t.peak.CompareAndSwap(peak, cur) {
			return
		}
	}
}

// Current returns the bytes allocated and not yet freed.
func (t *TrackingAllocator) Current() int64 { return t.current.Load() }

// Peak returns the highest value Current has reached.
func (t *TrackingAllocator) Peak() int64 { return t.peak.Load() }

// Allocations returns the number of Allocate calls.
func (t *TrackingAllocator) Allocations() int64 { return t.allocations.Load() }

// LogValue implements slog.LogValuer.
func (t *TrackingAllocator) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("current_bytes", t.Current()),
		slog.Int64("peak_bytes", t.Peak()),
		slog.Int64("allocations", t.Allocations()),
	)
}
