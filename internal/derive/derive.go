// Package derive adds computed columns to a DataFrame by evaluating a function
// over every row.
package derive

import (
	"fmt"

	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
)

// Func computes the value of a derived column for one row. Returning a missing
// value of any type marks the cell missing.
type Func func(row dataframe.Row) (series.Value, error)

// Column describes a derived column.
type Column struct {
	Name   string
	Type   series.Type
	Inputs []string // columns Fn reads; all must exist
	Fn     Func
}

// AddColumn evaluates col.Fn for every row and appends the result to df, or
// replaces the existing column of the same name in place. On error df is left
// unchanged.
func AddColumn(df *dataframe.DataFrame, col Column) error {
	for _, input := range col.Inputs {
		if !df.HasColumn(input) {
			return dferrors.NewDerivationError(col.Name, -1, "missing input column",
				dferrors.NewColumnNotFoundError("AddColumn", input))
		}
	}

	values := make([]series.Value, df.Len())
	for pos := range values {
		v, err := col.Fn(df.Row(pos))
		if err != nil {
			return dferrors.NewDerivationError(col.Name, df.Row(pos).Label(), "evaluation failed", err)
		}
		switch {
		case v.IsMissing():
			v = series.Missing(col.Type)
		case v.Type() != col.Type:
			return dferrors.NewDerivationError(col.Name, df.Row(pos).Label(),
				fmt.Sprintf("produced %s, column type is %s", v.Type(), col.Type), nil)
		}
		values[pos] = v
	}

	s, err := dataframe.BuildSeries(col.Name, col.Type, values, df.Allocator())
	if err != nil {
		return dferrors.NewDerivationError(col.Name, -1, "building column failed", err)
	}
	if err := df.SetColumn(s); err != nil {
		s.Release()
		return dferrors.NewDerivationError(col.Name, -1, "attaching column failed", err)
	}
	return nil
}

// Apply adds each column in order, stopping at the first failure. Columns added
// before the failure stay on df.
func Apply(df *dataframe.DataFrame, cols ...Column) error {
	for _, col := range cols {
		if err := AddColumn(df, col); err != nil {
			return err
		}
	}
	return nil
}
