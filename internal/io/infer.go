package io

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/laureate/internal/dataframe"
	"github.com/paveg/laureate/internal/series"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

// cell is one raw text value; present is false for empty or null input.
type cell struct {
	text    string
	present bool
}

// inferType picks the narrowest of bool, int64, float64 and string that parses every
// present cell. A column with no present cells is a string column.
func inferType(cells []cell) series.Type {
	canBeBool, canBeInt, canBeFloat := true, true, true
	hasValue := false

	for _, c := range cells {
		if !c.present {
			continue
		}
		hasValue = true

		if canBeBool {
			lower := strings.ToLower(c.text)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}
		if canBeInt {
			if _, err := strconv.ParseInt(c.text, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(c.text, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	switch {
	case !hasValue:
		return series.TypeString
	case canBeBool:
		return series.TypeBool
	case canBeInt:
		return series.TypeInt64
	case canBeFloat:
		return series.TypeFloat64
	default:
		return series.TypeString
	}
}

// buildColumn creates a nullable column of the inferred type from raw cells.
func buildColumn(name string, cells []cell, mem memory.Allocator) (dataframe.ISeries, error) {
	valid := make([]bool, len(cells))
	for i, c := range cells {
		valid[i] = c.present
	}

	switch inferType(cells) {
	case series.TypeBool:
		return parseColumn(name, cells, valid, mem, func(s string) (bool, error) {
			return strings.EqualFold(s, trueStr), nil
		})
	case series.TypeInt64:
		return parseColumn(name, cells, valid, mem, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		})
	case series.TypeFloat64:
		return parseColumn(name, cells, valid, mem, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
	default:
		return parseColumn(name, cells, valid, mem, func(s string) (string, error) {
			return s, nil
		})
	}
}

func parseColumn[T any](
	name string, cells []cell, valid []bool, mem memory.Allocator, parse func(string) (T, error),
) (dataframe.ISeries, error) {
	values := make([]T, len(cells))
	for i, c := range cells {
		if !c.present {
			continue
		}
		v, err := parse(c.text)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return series.NewNullable(name, values, valid, mem)
}

// formatCell renders a value for text output; missing values are empty.
func formatCell(v series.Value) string {
	if v.IsMissing() {
		return ""
	}
	if v.Type() == series.TypeFloat64 {
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	}
	return v.String()
}
