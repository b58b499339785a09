package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/laureate/internal/series"
)

// ISeries provides a type-erased interface for Series of any type
type ISeries interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	Type() series.Type
	IsNull(index int) bool
	NullN() int
	At(index int) series.Value
	String() string
	Array() arrow.Array
	Release()
	GetAsString(index int) string
}
