package dataframe

import "github.com/paveg/laureate/internal/series"

// Row is a read-only view of one row of a DataFrame.
type Row struct {
	df  *DataFrame
	pos int
}

// RowPredicate selects rows for DataFrame.Filter.
type RowPredicate func(Row) bool

// Pos returns the row position within its frame.
func (r Row) Pos() int { return r.pos }

// Label returns the row label (its position in the frame it was loaded into).
func (r Row) Label() int { return r.df.label(r.pos) }

// Has reports whether the row has the named column.
func (r Row) Has(column string) bool { return r.df.HasColumn(column) }

// Get returns the cell of the named column. Absent columns read as a missing string.
func (r Row) Get(column string) series.Value {
	s, ok := r.df.columns[column]
	if !ok {
		return series.Missing(series.TypeString)
	}
	return s.At(r.pos)
}

// Equals returns a predicate matching rows whose column equals v exactly.
func Equals(column string, v series.Value) RowPredicate {
	return func(r Row) bool {
		return r.Get(column).Equal(v)
	}
}

// IsTrue returns a predicate matching rows whose boolean column is true.
func IsTrue(column string) RowPredicate {
	return func(r Row) bool {
		return r.Get(column).Bool()
	}
}
