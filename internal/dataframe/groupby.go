package dataframe

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
	"golang.org/x/exp/constraints"
)

// AggregationType selects the reduction applied to each group.
type AggregationType int

const (
	// AggCount is the group size.
	AggCount AggregationType = iota
	// AggSum adds the numeric values of the group; booleans count as 0/1.
	AggSum
	// AggMean is the arithmetic mean; for a boolean column it is the proportion of true.
	AggMean
	// AggMin is the smallest value of the group.
	AggMin
	// AggMax is the largest value of the group.
	AggMax
)

func (a AggregationType) String() string {
	switch a {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggMean:
		return "mean"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	default:
		return "unknown"
	}
}

// Group is a maximal set of rows sharing the same key values.
type Group struct {
	Key  []series.Value
	Rows []int // row positions in the grouped frame, ascending
}

// Len returns the number of rows in the group.
func (g Group) Len() int { return len(g.Rows) }

// KeyString formats the key for messages, e.g. "[1900 Physics]".
func (g Group) KeyString() string {
	parts := make([]string, len(g.Key))
	for i, k := range g.Key {
		parts[i] = k.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// GroupPredicate decides whether a group is retained by GroupBy.Filter.
type GroupPredicate interface {
	Keep(g Group) bool
}

// GroupPredicateFunc adapts a function to the GroupPredicate interface.
type GroupPredicateFunc func(g Group) bool

// Keep calls f(g).
func (f GroupPredicateFunc) Keep(g Group) bool { return f(g) }

// MinSize retains groups with at least that many rows.
type MinSize int

// Keep reports whether g has at least m rows.
func (m MinSize) Keep(g Group) bool { return g.Len() >= int(m) }

// GroupBy represents a grouped DataFrame for aggregation operations
type GroupBy struct {
	df          *DataFrame
	groupByCols []string
	groups      []*Group // in order of first appearance
}

// GroupBy partitions the rows by the tuple of key column values. Keys compare by
// exact value equality; a missing key value forms its own group.
func (df *DataFrame) GroupBy(columns ...string) (*GroupBy, error) {
	if len(columns) == 0 {
		return nil, dferrors.NewInvalidInputError("GroupBy", "at least one key column is required")
	}
	if err := df.RequireColumns("GroupBy", columns...); err != nil {
		return nil, err
	}

	return &GroupBy{
		df:          df,
		groupByCols: append([]string(nil), columns...),
		groups:      df.buildGroups(columns),
	}, nil
}

// buildGroups buckets rows by an xxhash of the encoded key, then compares keys exactly.
func (df *DataFrame) buildGroups(columns []string) []*Group {
	keyCols := make([]ISeries, len(columns))
	for i, col := range columns {
		keyCols[i], _ = df.Column(col)
	}

	var groups []*Group
	buckets := make(map[uint64][]int)
	var buf bytes.Buffer

	for rowIdx := 0; rowIdx < df.Len(); rowIdx++ {
		key := make([]series.Value, len(keyCols))
		buf.Reset()
		for i, col := range keyCols {
			key[i] = col.At(rowIdx)
			key[i].AppendKey(&buf)
		}
		hash := xxhash.Sum64(buf.Bytes())

		found := -1
		for _, gi := range buckets[hash] {
			if keysEqual(groups[gi].Key, key) {
				found = gi
				break
			}
		}
		if found < 0 {
			groups = append(groups, &Group{Key: key})
			found = len(groups) - 1
			buckets[hash] = append(buckets[hash], found)
		}
		groups[found].Rows = append(groups[found].Rows, rowIdx)
	}

	return groups
}

func keysEqual(a, b []series.Value) bool {
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Keys returns the key column names.
func (gb *GroupBy) Keys() []string {
	return append([]string(nil), gb.groupByCols...)
}

// Groups returns the groups in order of first appearance.
func (gb *GroupBy) Groups() []Group {
	out := make([]Group, len(gb.groups))
	for i, g := range gb.groups {
		out[i] = *g
	}
	return out
}

// Len returns the number of groups.
func (gb *GroupBy) Len() int {
	return len(gb.groups)
}

// Rows materializes the rows of one group.
func (gb *GroupBy) Rows(g Group) (*DataFrame, error) {
	return gb.df.Take(g.Rows)
}

// Mean reduces column to its per-group mean.
func (gb *GroupBy) Mean(column string) (*DataFrame, error) {
	return gb.Reduce(column, AggMean)
}

// Count reduces to the per-group row count, in a column named after column.
func (gb *GroupBy) Count(column string) (*DataFrame, error) {
	return gb.Reduce(column, AggCount)
}

// Reduce applies agg to column within each group. The result has one row per group,
// in first-appearance order, with the key columns followed by a statistic column
// named after column (suffixed with the aggregation when column is itself a key).
func (gb *GroupBy) Reduce(column string, agg AggregationType) (*DataFrame, error) {
	op := agg.String()
	src, ok := gb.df.Column(column)
	if !ok {
		return nil, dferrors.NewColumnNotFoundError(op, column)
	}

	resultType, err := aggregationResultType(op, column, src.Type(), agg)
	if err != nil {
		return nil, err
	}

	stats := make([]series.Value, len(gb.groups))
	for i, g := range gb.groups {
		if g.Len() == 0 {
			return nil, dferrors.NewEmptyGroupError(op, column, g.KeyString())
		}
		v, err := aggregateGroup(src, g.Rows, agg)
		if err != nil {
			return nil, err
		}
		if v.IsMissing() && agg != AggCount {
			return nil, dferrors.NewEmptyGroupError(op, column, g.KeyString())
		}
		stats[i] = v
	}

	return gb.buildResult(column, agg, resultType, stats)
}

func aggregationResultType(op, column string, in series.Type, agg AggregationType) (series.Type, error) {
	numeric := in == series.TypeInt64 || in == series.TypeFloat64 || in == series.TypeBool
	switch agg {
	case AggCount:
		return series.TypeInt64, nil
	case AggSum, AggMean:
		if !numeric {
			return 0, dferrors.NewValidationError(op, column,
				fmt.Sprintf("%s requires a numeric or boolean column, got %s", op, in))
		}
		return series.TypeFloat64, nil
	case AggMin, AggMax:
		return in, nil
	default:
		return 0, dferrors.NewInvalidInputError(op, fmt.Sprintf("unknown aggregation %d", int(agg)))
	}
}

// aggregateGroup reduces the rows of one group. Missing values are skipped, so a
// group holding only missing values yields a missing result.
func aggregateGroup(src ISeries, rows []int, agg AggregationType) (series.Value, error) {
	if agg == AggCount {
		return series.Int64Value(int64(len(rows))), nil
	}

	if agg == AggMin || agg == AggMax {
		best := series.Missing(src.Type())
		for _, r := range rows {
			v := src.At(r)
			if v.IsMissing() {
				continue
			}
			c := v.Compare(best)
			if best.IsMissing() || (agg == AggMin && c < 0) || (agg == AggMax && c > 0) {
				best = v
			}
		}
		return best, nil
	}

	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := src.At(r).Number(); ok {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return series.Missing(series.TypeFloat64), nil
	}

	if agg == AggSum {
		return series.Float64Value(Sum(values)), nil
	}
	mean, _ := Mean(values)
	return series.Float64Value(mean), nil
}

func (gb *GroupBy) buildResult(
	column string, agg AggregationType, statType series.Type, stats []series.Value,
) (*DataFrame, error) {
	mem := gb.df.Allocator()
	var resultSeries []ISeries

	for k, keyCol := range gb.groupByCols {
		src, _ := gb.df.Column(keyCol)
		keys := make([]series.Value, len(gb.groups))
		for i, g := range gb.groups {
			keys[i] = g.Key[k]
		}
		s, err := BuildSeries(keyCol, src.Type(), keys, mem)
		if err != nil {
			releaseAll(resultSeries)
			return nil, err
		}
		resultSeries = append(resultSeries, s)
	}

	statName := column
	if slices.Contains(gb.groupByCols, column) {
		statName = column + "_" + agg.String()
	}
	s, err := BuildSeries(statName, statType, stats, mem)
	if err != nil {
		releaseAll(resultSeries)
		return nil, err
	}
	resultSeries = append(resultSeries, s)

	return New(resultSeries...).WithAllocator(gb.df.mem), nil
}

// Filter returns every row of the groups retained by pred, in original row order
// and with their original row labels.
func (gb *GroupBy) Filter(pred GroupPredicate) (*DataFrame, error) {
	var positions []int
	for _, g := range gb.groups {
		if pred.Keep(*g) {
			positions = append(positions, g.Rows...)
		}
	}
	slices.Sort(positions)
	return gb.df.Take(positions)
}

// Sum adds numbers of any integer or float type.
func Sum[T constraints.Integer | constraints.Float](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

// Mean returns the arithmetic mean of xs; ok is false when xs is empty.
func Mean[T constraints.Integer | constraints.Float](xs []T) (mean float64, ok bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return float64(Sum(xs)) / float64(len(xs)), true
}
