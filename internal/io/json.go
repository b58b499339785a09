package io

import (
	"bufio"
	"bytes"
	"fmt"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
)

// maxJSONLine bounds a single JSON Lines record.
const maxJSONLine = 1 << 20

// Read reads JSON Lines and returns a DataFrame. Columns are the union of the
// object keys in order of first appearance; absent keys and nulls are missing
// values. Types are inferred as for CSV.
func (r *JSONReader) Read() (*dataframe.DataFrame, error) {
	scanner := bufio.NewScanner(r.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLine)

	var order []string
	columns := make(map[string][]cell)
	rows := 0
	line := 0

	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		keys, record, err := decodeObject(text)
		if err != nil {
			return nil, dferrors.NewLoadError(r.source, line, err)
		}

		for _, key := range keys {
			if _, seen := columns[key]; !seen {
				order = append(order, key)
				columns[key] = make([]cell, rows)
			}
		}
		for _, key := range order {
			columns[key] = append(columns[key], record[key])
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, dferrors.NewLoadError(r.source, line, err)
	}

	seriesList := make([]dataframe.ISeries, 0, len(order))
	for _, name := range order {
		s, err := buildColumn(name, columns[name], r.mem)
		if err != nil {
			for _, built := range seriesList {
				built.Release()
			}
			return nil, dferrors.NewLoadError(r.source, 0, fmt.Errorf("column %s: %w", name, err))
		}
		seriesList = append(seriesList, s)
	}
	return dataframe.New(seriesList...).WithAllocator(r.mem), nil
}

// decodeObject decodes one JSON object into text cells, returning its keys in
// document order.
func decodeObject(data []byte) ([]string, map[string]cell, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	// map iteration order is random; recover the order keys appear in the line
	slices.SortFunc(keys, func(a, b string) int {
		return keyOffset(data, a) - keyOffset(data, b)
	})

	record := make(map[string]cell, len(raw))
	for key, value := range raw {
		c, err := jsonCell(value)
		if err != nil {
			return nil, nil, fmt.Errorf("field %s: %w", key, err)
		}
		record[key] = c
	}
	return keys, record, nil
}

// keyOffset finds key where it is used as an object key: quoted, not escaped, and
// followed by a colon.
func keyOffset(data []byte, key string) int {
	quoted, _ := json.Marshal(key)
	from := 0
	for {
		i := bytes.Index(data[from:], quoted)
		if i < 0 {
			return len(data)
		}
		at := from + i
		rest := bytes.TrimLeft(data[at+len(quoted):], " \t")
		if (at == 0 || data[at-1] != '\\') && len(rest) > 0 && rest[0] == ':' {
			return at
		}
		from = at + 1
	}
}

func jsonCell(value json.RawMessage) (cell, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return cell{}, err
	}

	switch typed := v.(type) {
	case nil:
		return cell{}, nil
	case string:
		return cell{text: typed, present: typed != ""}, nil
	case bool:
		return cell{text: strconv.FormatBool(typed), present: true}, nil
	case json.Number:
		return cell{text: typed.String(), present: true}, nil
	default:
		return cell{}, fmt.Errorf("nested values are not supported")
	}
}

// Write writes one JSON object per row. Missing values are written as null and
// dates as YYYY-MM-DD strings.
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	bw := bufio.NewWriter(w.writer)
	columns := df.Columns()

	for i := 0; i < df.Len(); i++ {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for j, name := range columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(name)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')

			col, _ := df.Column(name)
			value, err := json.Marshal(jsonValue(col.At(i)))
			if err != nil {
				return fmt.Errorf("encoding row %d column %s: %w", i, name, err)
			}
			buf.Write(value)
		}
		buf.WriteString("}\n")
		if _, err := bw.Write(buf.Bytes()); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func jsonValue(v series.Value) any {
	if v.IsMissing() {
		return nil
	}
	switch v.Type() {
	case series.TypeString:
		return v.Str()
	case series.TypeInt64:
		return v.Int64()
	case series.TypeFloat64:
		return v.Float64()
	case series.TypeBool:
		return v.Bool()
	default:
		return v.String()
	}
}
