package io_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/io"
	"github.com/paveg/laureate/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONReader(t *testing.T) {
	mem := memory.NewGoAllocator()
	data := `{"full_name": "Marie Curie", "year": 1903, "share": 0.25}
{"year": 1911, "full_name": "Marie Curie", "share": 1, "sex": "Female"}

{"full_name": "Red Cross", "year": 1917, "share": null}
`

	df, err := io.NewJSONReader(strings.NewReader(data), mem).Read()
	require.NoError(t, err)
	defer df.Release()

	assert.Equal(t, []string{"full_name", "year", "share", "sex"}, df.Columns())
	assert.Equal(t, 3, df.Len())

	year, _ := df.Column("year")
	assert.Equal(t, series.TypeInt64, year.Type())

	share, _ := df.Column("share")
	assert.Equal(t, series.TypeFloat64, share.Type())
	assert.True(t, share.IsNull(2))

	sex, _ := df.Column("sex")
	assert.True(t, sex.IsNull(0))
	assert.Equal(t, series.StringValue("Female"), sex.At(1))
	assert.True(t, sex.IsNull(2))
}

func TestJSONReaderErrors(t *testing.T) {
	mem := memory.NewGoAllocator()

	tests := []struct {
		name    string
		data    string
		message string
	}{
		{"malformed line", "{\"a\": 1}\n{\"a\": \n", "(line 2)"},
		{"nested value", "{\"a\": [1, 2]}\n", "nested values are not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := io.NewJSONReader(strings.NewReader(tt.data), mem).WithSource("nobel.jsonl").Read()
			require.Error(t, err)
			assert.True(t, errors.Is(err, dferrors.ErrLoad))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestJSONWriter(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := createParquetTestDataFrame(t, mem)
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewJSONWriter(&buf).Write(df))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t,
		`{"full_name":"Red Cross","year":1901,"share":1,"female_winner":false,"birth_date":null,"age":null}`,
		lines[1])
	assert.JSONEq(t,
		`{"full_name":"Marie Curie","year":1903,"share":0.25,"female_winner":true,"birth_date":"1867-11-07","age":36}`,
		lines[2])

	again, err := io.NewJSONReader(&buf, mem).Read()
	require.NoError(t, err)
	defer again.Release()
	assert.Equal(t, df.Columns(), again.Columns())
}
