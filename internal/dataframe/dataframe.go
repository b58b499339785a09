// Package dataframe provides the in-memory record table and its grouped
// aggregations, backed by Apache Arrow columns.
package dataframe

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
)

// DataFrame represents a table of data with typed columns
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
	index   []int    // Row labels; nil means 0..Len()-1
	mem     memory.Allocator
}

// New creates a new DataFrame from a slice of ISeries
func New(series ...ISeries) *DataFrame {
	columns := make(map[string]ISeries)
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		columns[name] = s
		order = append(order, name)
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}
}

// WithAllocator sets the allocator of every column built from df: derived
// columns, views and aggregation results inherit it. It returns df.
func (df *DataFrame) WithAllocator(mem memory.Allocator) *DataFrame {
	df.mem = mem
	return df
}

// Allocator returns the allocator set by WithAllocator, or the Go allocator.
func (df *DataFrame) Allocator() memory.Allocator {
	if df.mem == nil {
		return memory.DefaultAllocator
	}
	return df.mem
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows (all columns have the same length)
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// RequireColumns returns a column-not-found error for the first missing name.
func (df *DataFrame) RequireColumns(op string, names ...string) error {
	for _, name := range names {
		if !df.HasColumn(name) {
			return dferrors.NewColumnNotFoundError(op, name)
		}
	}
	return nil
}

// Index returns the row labels. Frames produced by Take, Filter and the order
// statistics keep the labels of the rows they were selected from.
func (df *DataFrame) Index() []int {
	n := df.Len()
	labels := make([]int, n)
	for i := range labels {
		if df.index != nil {
			labels[i] = df.index[i]
		} else {
			labels[i] = i
		}
	}
	return labels
}

func (df *DataFrame) label(pos int) int {
	if df.index != nil {
		return df.index[pos]
	}
	return pos
}

// Row returns a view of the row at position pos.
func (df *DataFrame) Row(pos int) Row {
	return Row{df: df, pos: pos}
}

// Select returns a new DataFrame with only the specified columns.
// The returned frame shares the columns with df.
func (df *DataFrame) Select(names ...string) *DataFrame {
	newColumns := make(map[string]ISeries)
	newOrder := make([]string, 0, len(names))

	for _, name := range names {
		if series, exists := df.columns[name]; exists {
			newColumns[name] = series
			newOrder = append(newOrder, name)
		}
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
		index:   df.index,
		mem:     df.mem,
	}
}

// SetColumn appends s, or replaces the column of the same name in place keeping its
// position. The previous column is released.
func (df *DataFrame) SetColumn(s ISeries) error {
	if len(df.order) > 0 && s.Len() != df.Len() {
		return dferrors.NewValidationError("SetColumn", s.Name(),
			fmt.Sprintf("column has %d rows, table has %d", s.Len(), df.Len()))
	}

	name := s.Name()
	if old, exists := df.columns[name]; exists {
		if old != s {
			old.Release()
		}
		df.columns[name] = s
		return nil
	}

	df.columns[name] = s
	df.order = append(df.order, name)
	return nil
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}

	for _, name := range df.order {
		series := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s", name, series.DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Head returns the first n rows.
func (df *DataFrame) Head(n int) (*DataFrame, error) {
	return df.Slice(0, n)
}

// Slice creates a new DataFrame containing rows from start (inclusive) to end (exclusive).
// An empty or inverted range yields a frame with the same columns and no rows.
func (df *DataFrame) Slice(start, end int) (*DataFrame, error) {
	length := df.Len()
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}

	var positions []int
	for i := start; i < end; i++ {
		positions = append(positions, i)
	}
	return df.Take(positions)
}

// Take returns a new DataFrame holding the rows at the given positions, in the given
// order, with their row labels.
func (df *DataFrame) Take(positions []int) (*DataFrame, error) {
	length := df.Len()
	mem := df.Allocator()

	idxBuilder := array.NewInt64Builder(mem)
	defer idxBuilder.Release()
	labels := make([]int, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= length {
			return nil, dferrors.NewInvalidInputError("Take",
				fmt.Sprintf("row position %d out of range [0, %d)", pos, length))
		}
		idxBuilder.Append(int64(pos))
		labels[i] = df.label(pos)
	}
	indices := idxBuilder.NewArray()
	defer indices.Release()

	ctx := compute.WithAllocator(context.Background(), mem)
	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		arr := df.columns[name].Array()
		out, err := compute.TakeArray(ctx, arr, indices)
		arr.Release()
		if err != nil {
			releaseAll(taken)
			return nil, dferrors.NewInternalError("Take", err)
		}
		s, err := WrapArray(name, out)
		if err != nil {
			releaseAll(taken)
			return nil, err
		}
		taken = append(taken, s)
	}

	result := New(taken...).WithAllocator(df.mem)
	result.index = labels
	return result, nil
}

// Filter returns the rows for which keep returns true, in their original order.
func (df *DataFrame) Filter(keep RowPredicate) (*DataFrame, error) {
	var positions []int
	for pos := 0; pos < df.Len(); pos++ {
		if keep(df.Row(pos)) {
			positions = append(positions, pos)
		}
	}
	return df.Take(positions)
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	for _, series := range df.columns {
		series.Release()
	}
}

func releaseAll(cols []ISeries) {
	for _, c := range cols {
		c.Release()
	}
}

// columnValues reads a whole column as tagged values.
func columnValues(s ISeries) []series.Value {
	values := make([]series.Value, s.Len())
	for i := range values {
		values[i] = s.At(i)
	}
	return values
}
