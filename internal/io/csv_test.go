package io_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/io"
	"github.com/paveg/laureate/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const laureateCSV = `year,category,full_name,sex,birth_date,birth_country,share
1901,Chemistry,Jacobus Henricus van 't Hoff,Male,1852-08-30,Netherlands,1
1901,Peace,Comité international de la Croix Rouge,,,,1
1903,Physics,"Marie Curie, née Sklodowska",Female,1867-11-07,Russian Empire (Poland),0.25
`

func readCSV(t *testing.T, data string, opts io.CSVOptions) *dataframe.DataFrame {
	t.Helper()
	df, err := io.NewCSVReader(strings.NewReader(data), opts, memory.NewGoAllocator()).Read()
	require.NoError(t, err)
	return df
}

func TestCSVReader(t *testing.T) {
	t.Run("reads simple CSV with headers", func(t *testing.T) {
		df := readCSV(t, laureateCSV, io.DefaultCSVOptions())
		defer df.Release()

		assert.Equal(t, 3, df.Len())
		assert.Equal(t, []string{"year", "category", "full_name", "sex", "birth_date", "birth_country", "share"},
			df.Columns())

		name := df.Row(2).Get("full_name")
		assert.Equal(t, "Marie Curie, née Sklodowska", name.Str())
	})

	t.Run("infers column types", func(t *testing.T) {
		df := readCSV(t, laureateCSV, io.DefaultCSVOptions())
		defer df.Release()

		expected := map[string]series.Type{
			"year":          series.TypeInt64,
			"category":      series.TypeString,
			"birth_date":    series.TypeString,
			"birth_country": series.TypeString,
			"share":         series.TypeFloat64,
		}
		for name, typ := range expected {
			col, ok := df.Column(name)
			require.True(t, ok, name)
			assert.Equal(t, typ, col.Type(), name)
		}
	})

	t.Run("empty cells are missing", func(t *testing.T) {
		df := readCSV(t, laureateCSV, io.DefaultCSVOptions())
		defer df.Release()

		row := df.Row(1)
		assert.True(t, row.Get("sex").IsMissing())
		assert.True(t, row.Get("birth_date").IsMissing())
		assert.True(t, row.Get("birth_country").IsMissing())
		assert.False(t, row.Get("year").IsMissing())
	})

	t.Run("nullable integers and booleans", func(t *testing.T) {
		df := readCSV(t, "n,flag\n1,true\n,FALSE\n3,\n", io.DefaultCSVOptions())
		defer df.Release()

		n, _ := df.Column("n")
		assert.Equal(t, series.TypeInt64, n.Type())
		assert.Equal(t, 1, n.NullN())
		assert.Equal(t, series.Int64Value(3), n.At(2))

		flag, _ := df.Column("flag")
		assert.Equal(t, series.TypeBool, flag.Type())
		assert.Equal(t, series.BoolValue(false), flag.At(1))
		assert.True(t, flag.IsNull(2))
	})

	t.Run("reads CSV without headers", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Header = false
		df := readCSV(t, "Alice,25\nBob,30\n", opts)
		defer df.Release()

		assert.Equal(t, []string{"column_0", "column_1"}, df.Columns())
		assert.Equal(t, 2, df.Len())
	})

	t.Run("custom delimiter", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Delimiter = ';'
		df := readCSV(t, "a;b\n1;x\n", opts)
		defer df.Release()

		assert.Equal(t, []string{"a", "b"}, df.Columns())
	})

	t.Run("header only", func(t *testing.T) {
		df := readCSV(t, "a,b\n", io.DefaultCSVOptions())
		defer df.Release()

		assert.Equal(t, 0, df.Len())
		assert.Equal(t, []string{"a", "b"}, df.Columns())
	})
}

func TestCSVReaderErrors(t *testing.T) {
	mem := memory.NewGoAllocator()

	tests := []struct {
		name    string
		data    string
		message string
	}{
		{"empty input", "", "cannot load nobel.csv"},
		{"ragged row", "a,b\n1,2\n3\n", "cannot load nobel.csv (line 3)"},
		{"bare quote", "a,b\n1,\"x\n", "cannot load nobel.csv (line "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := io.NewCSVReader(strings.NewReader(tt.data), io.DefaultCSVOptions(), mem).
				WithSource("nobel.csv").Read()
			require.Error(t, err)
			assert.True(t, errors.Is(err, dferrors.ErrLoad))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCSVWriter(t *testing.T) {
	df := readCSV(t, laureateCSV, io.DefaultCSVOptions())
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "year,category,full_name,sex,birth_date,birth_country,share", lines[0])
	assert.Equal(t, "1901,Peace,Comité international de la Croix Rouge,,,,1", lines[2])
	assert.Equal(t, `1903,Physics,"Marie Curie, née Sklodowska",Female,1867-11-07,Russian Empire (Poland),0.25`, lines[3])

	// the written text reads back to the same table
	again := readCSV(t, buf.String(), io.DefaultCSVOptions())
	defer again.Release()
	assert.Equal(t, df.Table(), again.Table())
}
