//nolint:testpackage // requires internal access to unexported types and functions
package dataframe

import (
	"errors"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPeople(t *testing.T, mem memory.Allocator) *DataFrame {
	t.Helper()
	ages, err := series.NewNullable("age", []int64{30, 25, 0, 41}, []bool{true, true, false, true}, mem)
	require.NoError(t, err)
	return New(
		series.New("name", []string{"Alice", "Bob", "Charlie", "Dana"}, mem),
		ages,
		series.New("active", []bool{true, false, true, true}, mem),
	)
}

func TestNewDataFrame(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	assert.Equal(t, 4, df.Len())
	assert.Equal(t, 3, df.Width())
	assert.Equal(t, []string{"name", "age", "active"}, df.Columns())
	assert.Equal(t, []int{0, 1, 2, 3}, df.Index())
	assert.True(t, df.HasColumn("age"))
	assert.False(t, df.HasColumn("salary"))
}

func TestEmptyDataFrame(t *testing.T) {
	df := New()
	defer df.Release()

	assert.Equal(t, 0, df.Len())
	assert.Equal(t, 0, df.Width())
	assert.Equal(t, []string{}, df.Columns())
	assert.Equal(t, "DataFrame[empty]", df.String())
}

func TestDataFrameString(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	str := df.String()
	assert.Contains(t, str, "DataFrame[4x3]")
	assert.Contains(t, str, "name: utf8")
	assert.Contains(t, str, "age: int64")
}

func TestDataFrameRequireColumns(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	require.NoError(t, df.RequireColumns("test", "name", "age"))

	err := df.RequireColumns("test", "name", "salary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dferrors.ErrColumnNotFound))

	var dfErr *dferrors.DataFrameError
	require.True(t, errors.As(err, &dfErr))
	assert.Equal(t, "salary", dfErr.Column)
}

func TestDataFrameSelect(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	selected := df.Select("active", "name", "missing")
	assert.Equal(t, []string{"active", "name"}, selected.Columns())
	assert.Equal(t, 4, selected.Len())
}

func TestDataFrameSetColumn(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("appends new column", func(t *testing.T) {
		df := newPeople(t, mem)
		defer df.Release()

		require.NoError(t, df.SetColumn(series.New("score", []float64{1, 2, 3, 4}, mem)))
		assert.Equal(t, []string{"name", "age", "active", "score"}, df.Columns())
	})

	t.Run("replaces in place", func(t *testing.T) {
		df := newPeople(t, mem)
		defer df.Release()

		require.NoError(t, df.SetColumn(series.New("age", []string{"a", "b", "c", "d"}, mem)))
		assert.Equal(t, []string{"name", "age", "active"}, df.Columns())

		col, ok := df.Column("age")
		require.True(t, ok)
		assert.Equal(t, series.TypeString, col.Type())
	})

	t.Run("rejects length mismatch", func(t *testing.T) {
		df := newPeople(t, mem)
		defer df.Release()

		short := series.New("score", []float64{1}, mem)
		defer short.Release()

		err := df.SetColumn(short)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "column has 1 rows, table has 4")
		assert.False(t, df.HasColumn("score"))
	})
}

func TestDataFrameHeadAndSlice(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	tests := []struct {
		name     string
		run      func() (*DataFrame, error)
		expected []string
	}{
		{"head 2", func() (*DataFrame, error) { return df.Head(2) }, []string{"Alice", "Bob"}},
		{"head larger than frame", func() (*DataFrame, error) { return df.Head(10) }, []string{"Alice", "Bob", "Charlie", "Dana"}},
		{"head 0", func() (*DataFrame, error) { return df.Head(0) }, []string{}},
		{"slice middle", func() (*DataFrame, error) { return df.Slice(1, 3) }, []string{"Bob", "Charlie"}},
		{"inverted slice", func() (*DataFrame, error) { return df.Slice(3, 1) }, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.run()
			require.NoError(t, err)
			defer result.Release()

			assert.Equal(t, 3, result.Width())
			names, _ := result.Column("name")
			assert.Equal(t, tt.expected, names.(*series.Series[string]).Values())
		})
	}
}

func TestDataFrameTake(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	taken, err := df.Take([]int{3, 1})
	require.NoError(t, err)
	defer taken.Release()

	assert.Equal(t, []int{3, 1}, taken.Index())
	names, _ := taken.Column("name")
	assert.Equal(t, []string{"Dana", "Bob"}, names.(*series.Series[string]).Values())

	// labels survive a second selection
	again, err := taken.Take([]int{1})
	require.NoError(t, err)
	defer again.Release()
	assert.Equal(t, []int{1}, again.Index())

	_, err = df.Take([]int{4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row position 4 out of range")
}

func TestDataFrameTakeKeepsMissing(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	taken, err := df.Take([]int{2, 0})
	require.NoError(t, err)
	defer taken.Release()

	ages, _ := taken.Column("age")
	assert.True(t, ages.IsNull(0))
	assert.Equal(t, series.Int64Value(30), ages.At(1))
}

func TestDataFrameFilter(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	active, err := df.Filter(IsTrue("active"))
	require.NoError(t, err)
	defer active.Release()

	assert.Equal(t, 3, active.Len())
	assert.Equal(t, []int{0, 2, 3}, active.Index())

	bob, err := df.Filter(Equals("name", series.StringValue("Bob")))
	require.NoError(t, err)
	defer bob.Release()
	assert.Equal(t, []int{1}, bob.Index())

	none, err := df.Filter(func(Row) bool { return false })
	require.NoError(t, err)
	defer none.Release()
	assert.Equal(t, 0, none.Len())
	assert.Equal(t, 3, none.Width())
}

func TestRow(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	filtered, err := df.Filter(Equals("name", series.StringValue("Charlie")))
	require.NoError(t, err)
	defer filtered.Release()

	row := filtered.Row(0)
	assert.Equal(t, 0, row.Pos())
	assert.Equal(t, 2, row.Label())
	assert.True(t, row.Has("age"))
	assert.True(t, row.Get("age").IsMissing())
	assert.Equal(t, "Charlie", row.Get("name").Str())
	assert.True(t, row.Get("nope").IsMissing())
}

func TestDataFrameFormat(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newPeople(t, mem)
	defer df.Release()

	view, err := df.Take([]int{2, 3})
	require.NoError(t, err)
	defer view.Release()

	lines := strings.Split(strings.TrimRight(view.Table(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"name", "age", "active"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2", "Charlie", "NaN", "true"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"3", "Dana", "41", "true"}, strings.Fields(lines[2]))
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", truncateCell("short"))

	long := strings.Repeat("x", 50)
	got := truncateCell(long)
	assert.Len(t, got, maxCellWidth)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestBuildSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	s, err := BuildSeries("x", series.TypeFloat64,
		[]series.Value{series.Float64Value(1.5), series.Missing(series.TypeFloat64)}, mem)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.NullN())
	assert.Equal(t, series.Float64Value(1.5), s.At(0))

	_, err = BuildSeries("x", series.TypeInt64, []series.Value{series.StringValue("a")}, mem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0 holds string, column type is int64")
}

func TestDerivedFramesInheritAllocator(t *testing.T) {
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	df := newAges(t, memory.NewGoAllocator()).WithAllocator(checked)
	defer df.Release()
	assert.Same(t, checked, df.Allocator())
	assert.Zero(t, checked.CurrentAlloc())

	grew := func(t *testing.T, before int) int {
		t.Helper()
		now := checked.CurrentAlloc()
		assert.Greater(t, now, before)
		return now
	}

	head, err := df.Head(3)
	require.NoError(t, err)
	defer head.Release()
	assert.Same(t, checked, head.Allocator())
	allocated := grew(t, 0)

	gb, err := df.GroupBy("age")
	require.NoError(t, err)
	counts, err := gb.Count("full_name")
	require.NoError(t, err)
	defer counts.Release()
	allocated = grew(t, allocated)

	freq, err := df.ValueCounts("age")
	require.NoError(t, err)
	defer freq.Release()
	allocated = grew(t, allocated)

	sel := df.Select("age")
	assert.Same(t, checked, sel.Allocator())
	assert.Equal(t, allocated, checked.CurrentAlloc())
}

func TestDefaultAllocator(t *testing.T) {
	df := New(series.New("year", []int64{1901}, memory.NewGoAllocator()))
	defer df.Release()
	assert.NotNil(t, df.Allocator())
}
