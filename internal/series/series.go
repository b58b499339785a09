// Package series provides data structures for column operations
package series

import (
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/laureate/internal/errors"
)

// Series represents a typed data column with Apache Arrow backend.
// Supported element types: string, int64, float64, bool and arrow.Date32.
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values. It panics on unsupported types.
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	s, err := NewNullable(name, values, nil, mem)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// NewSafe creates a new Series, returning an error instead of panicking on
// unsupported element types.
func NewSafe[T any](name string, values []T, mem memory.Allocator) (*Series[T], error) {
	return NewNullable(name, values, nil, mem)
}

// NewNullable creates a Series whose validity is given by valid. A nil valid slice
// marks every value present; valid[i] == false makes row i missing.
func NewNullable[T any](name string, values []T, valid []bool, mem memory.Allocator) (*Series[T], error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if valid != nil && len(valid) != len(values) {
		return nil, dferrors.NewInvalidInputError("series creation",
			fmt.Sprintf("validity length %d does not match %d values", len(valid), len(values)))
	}

	var arr arrow.Array

	// Use type switching to create appropriate Arrow array
	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []arrow.Date32:
		builder := array.NewDate32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	default:
		return nil, dferrors.NewUnsupportedTypeError("series creation", fmt.Sprintf("%T", values))
	}

	return &Series[T]{
		name:  name,
		array: arr,
	}, nil
}

// FromArray wraps an existing Arrow array. The Series takes over the caller's reference.
func FromArray[T any](name string, arr arrow.Array) *Series[T] {
	return &Series[T]{name: name, array: arr}
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// Values returns the data as a Go slice. Missing rows hold the zero value.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())
	for i := range result {
		result[i] = s.Value(i)
	}
	return result
}

// Value returns the value at the given index, or the zero value when the index is
// out of range or the row is missing.
func (s *Series[T]) Value(index int) T {
	var result T
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		if v, ok := any(&result).(*string); ok {
			*v = arr.Value(index)
		}
	case *array.Int64:
		if v, ok := any(&result).(*int64); ok {
			*v = arr.Value(index)
		}
	case *array.Float64:
		if v, ok := any(&result).(*float64); ok {
			*v = arr.Value(index)
		}
	case *array.Boolean:
		if v, ok := any(&result).(*bool); ok {
			*v = arr.Value(index)
		}
	case *array.Date32:
		if v, ok := any(&result).(*arrow.Date32); ok {
			*v = arr.Value(index)
		}
	}

	return result
}

// At returns the cell at index as a tagged Value.
func (s *Series[T]) At(index int) Value {
	return ValueAt(s.array, index)
}

// Type returns the column scalar type.
func (s *Series[T]) Type() Type {
	t, _ := TypeOf(s.array.DataType())
	return t
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull checks if the value at index is null
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// NullN returns the number of missing rows.
func (s *Series[T]) NullN() int {
	return s.array.NullN()
}

// GetAsString formats the value at index for tabular output.
func (s *Series[T]) GetAsString(index int) string {
	return s.At(index).String()
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)",
		reflect.TypeOf(new(T)).Elem().Name(),
		s.name,
		s.Len())
}

// Array returns the underlying Arrow array (retains a reference)
func (s *Series[T]) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}

// ValueAt reads the cell at index of any supported Arrow array.
func ValueAt(arr arrow.Array, index int) Value {
	t, ok := TypeOf(arr.DataType())
	if !ok || index < 0 || index >= arr.Len() {
		return Missing(TypeString)
	}
	if arr.IsNull(index) {
		return Missing(t)
	}

	switch typed := arr.(type) {
	case *array.String:
		return StringValue(typed.Value(index))
	case *array.Int64:
		return Int64Value(typed.Value(index))
	case *array.Float64:
		return Float64Value(typed.Value(index))
	case *array.Boolean:
		return BoolValue(typed.Value(index))
	case *array.Date32:
		return dateValue(typed.Value(index))
	default:
		return Missing(t)
	}
}
