package dataframe

import (
	"fmt"
	"slices"

	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
)

// CountColumn is the name of the frequency column produced by ValueCounts.
const CountColumn = "count"

// Sort returns the rows ordered by a single column. Missing values and NaN sort last in
// both directions; ties keep their original order.
func (df *DataFrame) Sort(column string, ascending bool) (*DataFrame, error) {
	return df.SortBy([]string{column}, []bool{ascending})
}

// SortBy returns the rows ordered by several columns, the first column being the
// primary key. The sort is stable.
func (df *DataFrame) SortBy(columns []string, ascending []bool) (*DataFrame, error) {
	if len(columns) != len(ascending) {
		return nil, dferrors.NewInvalidInputError("SortBy",
			fmt.Sprintf("%d columns but %d directions", len(columns), len(ascending)))
	}
	if err := df.RequireColumns("SortBy", columns...); err != nil {
		return nil, err
	}

	cols := make([]ISeries, len(columns))
	for i, name := range columns {
		cols[i], _ = df.Column(name)
	}

	positions := make([]int, df.Len())
	for i := range positions {
		positions[i] = i
	}
	slices.SortStableFunc(positions, func(a, b int) int {
		for i, col := range cols {
			va, vb := col.At(a), col.At(b)
			c := va.Compare(vb)
			if c == 0 {
				continue
			}
			// Compare already places missing and NaN last; keep them there when descending.
			if !ascending[i] && !va.IsNA() && !vb.IsNA() {
				c = -c
			}
			return c
		}
		return 0
	})

	return df.Take(positions)
}

// NSmallest returns the n rows with the smallest values of column, in ascending
// order. Ties keep their original row order; rows missing column, or holding NaN,
// are excluded.
func (df *DataFrame) NSmallest(n int, column string) (*DataFrame, error) {
	return df.orderStatistic("NSmallest", n, column, false)
}

// NLargest returns the n rows with the largest values of column, in descending
// order. Ties keep their original row order; rows missing column, or holding NaN,
// are excluded.
func (df *DataFrame) NLargest(n int, column string) (*DataFrame, error) {
	return df.orderStatistic("NLargest", n, column, true)
}

func (df *DataFrame) orderStatistic(op string, n int, column string, largest bool) (*DataFrame, error) {
	if n < 0 {
		return nil, dferrors.NewInvalidInputError(op, fmt.Sprintf("n must be non-negative, got %d", n))
	}
	col, ok := df.Column(column)
	if !ok {
		return nil, dferrors.NewColumnNotFoundError(op, column)
	}

	positions := make([]int, 0, df.Len())
	for pos := 0; pos < df.Len(); pos++ {
		if !col.At(pos).IsNA() {
			positions = append(positions, pos)
		}
	}

	slices.SortStableFunc(positions, func(a, b int) int {
		c := col.At(a).Compare(col.At(b))
		if largest {
			return -c
		}
		return c
	})

	if n < len(positions) {
		positions = positions[:n]
	}
	return df.Take(positions)
}

// ValueCountsOptions controls ValueCounts.
type ValueCountsOptions struct {
	// DropMissing leaves rows with a missing value out of the counts.
	DropMissing bool
}

// ValueCounts returns the distinct values of column with their frequencies, as a frame
// with columns (column, "count"), ordered by non-increasing count. Ties keep the order
// of first appearance. Missing values are counted as one entry unless opts says otherwise.
// Counting a column named "count" names the frequency column "count_count".
func (df *DataFrame) ValueCounts(column string, opts ...ValueCountsOptions) (*DataFrame, error) {
	var o ValueCountsOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	src, ok := df.Column(column)
	if !ok {
		return nil, dferrors.NewColumnNotFoundError("ValueCounts", column)
	}

	gb, err := df.GroupBy(column)
	if err != nil {
		return nil, err
	}

	groups := gb.Groups()
	if o.DropMissing {
		groups = slices.DeleteFunc(groups, func(g Group) bool { return g.Key[0].IsMissing() })
	}
	slices.SortStableFunc(groups, func(a, b Group) int {
		return b.Len() - a.Len()
	})

	values := make([]series.Value, len(groups))
	counts := make([]series.Value, len(groups))
	for i, g := range groups {
		values[i] = g.Key[0]
		counts[i] = series.Int64Value(int64(g.Len()))
	}

	mem := df.Allocator()
	valueCol, err := BuildSeries(column, src.Type(), values, mem)
	if err != nil {
		return nil, err
	}
	countName := CountColumn
	if column == CountColumn {
		countName = CountColumn + "_" + CountColumn
	}
	countCol, err := BuildSeries(countName, series.TypeInt64, counts, mem)
	if err != nil {
		valueCol.Release()
		return nil, err
	}
	return New(valueCol, countCol).WithAllocator(df.mem), nil
}
