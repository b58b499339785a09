// Package testutil provides the laureate fixture shared by the package tests:
// the record set as CSV text, the frame loaded from it and table assertions.
package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/laureate/internal/dataframe"
	"github.com/paveg/laureate/internal/io"
	"github.com/paveg/laureate/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LaureateCSV is a small sample of the laureate record set, in source order.
// It holds two organisation rows without birth data, three repeat winners and
// the youngest and oldest winners of the full set.
const LaureateCSV = `year,category,prize_share,laureate_id,laureate_type,full_name,birth_date,birth_city,birth_country,sex
1901,Chemistry,1/1,160,Individual,Jacobus Henricus van 't Hoff,1852-08-30,Rotterdam,Netherlands,Male
1901,Literature,1/1,569,Individual,Sully Prudhomme,1839-03-16,Paris,France,Male
1901,Medicine,1/1,293,Individual,Emil Adolf von Behring,1854-03-15,Hansdorf (Lawice),Prussia (Poland),Male
1901,Peace,1/2,462,Individual,Jean Henry Dunant,1828-05-08,Geneva,Switzerland,Male
1901,Physics,1/1,1,Individual,Wilhelm Conrad Röntgen,1845-03-27,Lennep (Remscheid),Prussia (Germany),Male
1903,Physics,1/4,6,Individual,"Marie Curie, née Sklodowska",1867-11-07,Warsaw,Russian Empire (Poland),Female
1911,Chemistry,1/1,6,Individual,"Marie Curie, née Sklodowska",1867-11-07,Warsaw,Russian Empire (Poland),Female
1917,Peace,1/1,482,Organization,Comité international de la Croix Rouge (International Committee of the Red Cross),,,,
1944,Peace,1/1,482,Organization,Comité international de la Croix Rouge (International Committee of the Red Cross),,,,
1946,Chemistry,1/4,190,Individual,James Batcheller Sumner,1887-11-19,"Canton, MA",United States of America,Male
1956,Physics,1/3,66,Individual,John Bardeen,1908-05-23,"Madison, WI",United States of America,Male
1964,Peace,1/1,534,Individual,Martin Luther King Jr.,1929-01-15,"Atlanta, GA",United States of America,Male
1972,Physics,1/3,66,Individual,John Bardeen,1908-05-23,"Madison, WI",United States of America,Male
1983,Medicine,1/1,411,Individual,Barbara McClintock,1902-06-16,"Hartford, CT",United States of America,Female
2007,Economics,1/3,822,Individual,Leonid Hurwicz,1917-08-21,Moscow,Russia,Male
2014,Peace,1/2,914,Individual,Malala Yousafzai,1997-07-12,Mingora,Pakistan,Female
2015,Literature,1/1,924,Individual,Svetlana Alexievich,1948-05-31,Ivano-Frankivsk,Ukraine,Female
2016,Economics,1/2,935,Individual,Oliver Hart,1948-10-09,London,United Kingdom,Male
`

// LaureateRows is the number of records in LaureateCSV.
const LaureateRows = 18

// FixtureOption configures the laureate fixture.
type FixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	rowCount  int
	drop      map[string]bool
	delimiter rune
}

// WithRowCount keeps n records, repeating the sample when n exceeds it.
func WithRowCount(n int) FixtureOption {
	return func(cfg *fixtureConfig) {
		cfg.rowCount = n
	}
}

// WithoutColumns removes the named columns from the fixture.
func WithoutColumns(names ...string) FixtureOption {
	return func(cfg *fixtureConfig) {
		for _, name := range names {
			cfg.drop[name] = true
		}
	}
}

// WithDelimiter writes the fixture with another field delimiter.
func WithDelimiter(r rune) FixtureOption {
	return func(cfg *fixtureConfig) {
		cfg.delimiter = r
	}
}

// LaureateText returns the fixture as delimited text.
func LaureateText(tb testing.TB, opts ...FixtureOption) string {
	tb.Helper()
	cfg := &fixtureConfig{rowCount: LaureateRows, drop: make(map[string]bool), delimiter: ','}
	for _, opt := range opts {
		opt(cfg)
	}

	records, err := csv.NewReader(strings.NewReader(LaureateCSV)).ReadAll()
	require.NoError(tb, err)
	header, body := records[0], records[1:]

	keep := make([]int, 0, len(header))
	for i, name := range header {
		if !cfg.drop[name] {
			keep = append(keep, i)
		}
	}
	project := func(record []string) []string {
		out := make([]string, len(keep))
		for j, i := range keep {
			out[j] = record[i]
		}
		return out
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Comma = cfg.delimiter
	require.NoError(tb, w.Write(project(header)))
	for i := range cfg.rowCount {
		require.NoError(tb, w.Write(project(body[i%len(body)])))
	}
	w.Flush()
	require.NoError(tb, w.Error())
	return sb.String()
}

// CreateLaureateFrame loads the fixture through the CSV reader.
//
// Example usage:
//
//	df := testutil.CreateLaureateFrame(t, memory.NewGoAllocator())
//	defer df.Release()
func CreateLaureateFrame(tb testing.TB, mem memory.Allocator, opts ...FixtureOption) *dataframe.DataFrame {
	tb.Helper()
	cfg := &fixtureConfig{drop: make(map[string]bool), delimiter: ','}
	for _, opt := range opts {
		opt(cfg)
	}

	options := io.DefaultCSVOptions()
	options.Delimiter = cfg.delimiter
	df, err := io.NewCSVReader(strings.NewReader(LaureateText(tb, opts...)), options, mem).
		WithSource("nobel.csv").
		Read()
	require.NoError(tb, err)
	return df
}

// WriteLaureateCSV writes the fixture to dir/nobel.csv and returns the path.
func WriteLaureateCSV(tb testing.TB, dir string, opts ...FixtureOption) string {
	tb.Helper()
	path := filepath.Join(dir, "nobel.csv")
	require.NoError(tb, os.WriteFile(path, []byte(LaureateText(tb, opts...)), 0o600))
	return path
}

// ColumnValues reads a whole column as tagged values.
func ColumnValues(tb testing.TB, df *dataframe.DataFrame, name string) []series.Value {
	tb.Helper()
	col, ok := df.Column(name)
	require.True(tb, ok, "column %s should exist", name)

	values := make([]series.Value, col.Len())
	for i := range values {
		values[i] = col.At(i)
	}
	return values
}

// AssertDataFrameEqual compares two frames cell by cell, including row labels.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	require.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")
	assert.Equal(t, expected.Index(), actual.Index(), "row labels should match")

	for _, name := range expected.Columns() {
		assert.Equal(t, ColumnValues(t, expected, name), ColumnValues(t, actual, name),
			"column %s data should match", name)
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Len(t, df.Columns(), len(expectedColumns), "column count should match")
	for _, col := range expectedColumns {
		assert.True(t, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}
