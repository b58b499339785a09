package memory_test

import (
	"testing"

	"github.com/paveg/laureate/internal/memory"
	"github.com/paveg/laureate/internal/series"
	"github.com/stretchr/testify/assert"
)

func TestTrackingAllocator(t *testing.T) {
	mem := memory.NewTrackingAllocator(nil)

	a := mem.Allocate(64)
	b := mem.Allocate(128)
	assert.Len(t, a, 64)
	assert.Equal(t, int64(192), mem.Current())
	assert.Equal(t, int64(2), mem.Allocations())

	a = mem.Reallocate(256, a)
	assert.Equal(t, int64(384), mem.Current())

	mem.Free(b)
	assert.Equal(t, int64(256), mem.Current())
	mem.Free(a)
	assert.Zero(t, mem.Current())
	assert.Equal(t, int64(384), mem.Peak())
}

func TestTrackingAllocatorWithSeries(t *testing.T) {
	mem := memory.NewTrackingAllocator(nil)

	s := series.New("year", []int64{1901, 1903, 2014}, mem)
	defer s.Release()

	assert.Positive(t, mem.Current())
	assert.Positive(t, mem.Allocations())
	assert.GreaterOrEqual(t, mem.Peak(), mem.Current())
}
