package parallel_test

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paveg/laureate/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	tests := []struct {
		name     string
		workers  int
		expected int
	}{
		{"explicit", 4, 4},
		{"zero defaults to CPU count", 0, runtime.NumCPU()},
		{"negative defaults to CPU count", -1, runtime.NumCPU()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := parallel.NewWorkerPool(tt.workers)
			defer pool.Close()
			assert.Equal(t, tt.expected, pool.NumWorkers())
		})
	}
}

func TestProcessIndexed(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	input := []string{"a", "b", "c", "d"}
	results := parallel.ProcessIndexed(pool, input, func(index int, value string) string {
		return value + string(rune('0'+index))
	})

	assert.Equal(t, []string{"a0", "b1", "c2", "d3"}, results)
}

func TestProcessIndexedEmpty(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	results := parallel.ProcessIndexed(pool, []string{}, func(_ int, value string) string {
		return value
	})
	assert.Nil(t, results)
}

func TestProcessIndexedKeepsOrderUnderLoad(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	input := make([]int, 500)
	for i := range input {
		input[i] = i
	}

	results := parallel.ProcessIndexed(pool, input, func(_ int, x int) int {
		return x*x + 1
	})

	require.Len(t, results, len(input))
	for i, r := range results {
		assert.Equal(t, i*i+1, r)
	}
}

func TestProcessIndexedConcurrency(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	var running, peak int64
	input := make([]int, 20)

	parallel.ProcessIndexed(pool, input, func(_ int, x int) int {
		current := atomic.AddInt64(&running, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if current <= p || atomic.CompareAndSwapInt64(&peak, p, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&running, -1)
		return x
	})

	assert.Greater(t, peak, int64(1), "expected some concurrent execution")
	assert.LessOrEqual(t, peak, int64(4))
}

func TestTryProcessIndexed(t *testing.T) {
	pool := parallel.NewWorkerPool(3)
	defer pool.Close()

	t.Run("all succeed", func(t *testing.T) {
		results, err := parallel.TryProcessIndexed(pool, []int{1, 2, 3}, func(_ int, x int) (int, error) {
			return x * 10, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{10, 20, 30}, results)
	})

	t.Run("lowest failing index wins", func(t *testing.T) {
		errTwo, errFour := errors.New("two"), errors.New("four")
		_, err := parallel.TryProcessIndexed(pool, []int{1, 2, 3, 4}, func(_ int, x int) (int, error) {
			switch x {
			case 2:
				time.Sleep(5 * time.Millisecond)
				return 0, errTwo
			case 4:
				return 0, errFour
			}
			return x, nil
		})
		assert.ErrorIs(t, err, errTwo)
	})
}

func TestSingleWorkerRunsInline(t *testing.T) {
	pool := parallel.NewWorkerPool(1)
	defer pool.Close()

	var order []int
	results := parallel.ProcessIndexed(pool, []int{3, 1, 2}, func(i int, x int) int {
		// no synchronization needed on the calling goroutine
		order = append(order, i)
		return x * 2
	})

	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, []int{6, 2, 4}, results)
}

func TestWorkerPoolClose(t *testing.T) {
	pool := parallel.NewWorkerPool(2)

	results := parallel.ProcessIndexed(pool, []int{1, 2, 3}, func(_ int, x int) int { return x })
	assert.Equal(t, []int{1, 2, 3}, results)

	pool.Close()
	assert.NotPanics(t, func() {
		pool.Close()
	})

	// a closed pool starts no work
	results = parallel.ProcessIndexed(pool, []int{1, 2, 3}, func(_ int, x int) int { return x })
	assert.Equal(t, []int{0, 0, 0}, results)
}
