package dataframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
)

// BuildSeries creates a column of the given type from tagged values. Every value
// must be of type typ or missing.
func BuildSeries(name string, typ series.Type, values []series.Value, mem memory.Allocator) (ISeries, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	valid := make([]bool, len(values))
	for i, v := range values {
		if v.Type() != typ {
			return nil, dferrors.NewValidationError("BuildSeries", name,
				fmt.Sprintf("row %d holds %s, column type is %s", i, v.Type(), typ))
		}
		valid[i] = !v.IsMissing()
	}

	switch typ {
	case series.TypeString:
		return buildTyped(name, values, valid, mem, series.Value.Str)
	case series.TypeInt64:
		return buildTyped(name, values, valid, mem, series.Value.Int64)
	case series.TypeFloat64:
		return buildTyped(name, values, valid, mem, series.Value.Float64)
	case series.TypeBool:
		return buildTyped(name, values, valid, mem, series.Value.Bool)
	case series.TypeDate:
		return buildTyped(name, values, valid, mem, func(v series.Value) arrow.Date32 {
			if v.IsMissing() {
				return 0
			}
			return arrow.Date32FromTime(v.Time())
		})
	default:
		return nil, dferrors.NewUnsupportedTypeError("BuildSeries", typ.String())
	}
}

func buildTyped[T any](
	name string, values []series.Value, valid []bool, mem memory.Allocator, get func(series.Value) T,
) (ISeries, error) {
	typed := make([]T, len(values))
	for i, v := range values {
		typed[i] = get(v)
	}
	return series.NewNullable(name, typed, valid, mem)
}

// WrapArray turns an Arrow array into a column, taking over the caller's reference.
func WrapArray(name string, arr arrow.Array) (ISeries, error) {
	switch arr.(type) {
	case *array.String:
		return series.FromArray[string](name, arr), nil
	case *array.Int64:
		return series.FromArray[int64](name, arr), nil
	case *array.Float64:
		return series.FromArray[float64](name, arr), nil
	case *array.Boolean:
		return series.FromArray[bool](name, arr), nil
	case *array.Date32:
		return series.FromArray[arrow.Date32](name, arr), nil
	default:
		dt := arr.DataType().String()
		arr.Release()
		return nil, dferrors.NewUnsupportedTypeError("WrapArray", dt)
	}
}
