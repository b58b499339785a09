package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
)

// Read reads CSV data and returns a DataFrame. Empty cells are missing values.
// Every record must have as many fields as the first one.
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.ReuseRecord = false

	var headers []string
	var columns [][]cell

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, r.loadError(err)
		}

		if columns == nil {
			if r.options.Header {
				headers = record
			} else {
				headers = make([]string, len(record))
				for i := range record {
					headers[i] = fmt.Sprintf("column_%d", i)
				}
			}
			columns = make([][]cell, len(headers))
			if r.options.Header {
				continue
			}
		}

		for i, field := range record {
			columns[i] = append(columns[i], cell{text: field, present: field != ""})
		}
	}

	if headers == nil {
		return nil, dferrors.NewLoadError(r.source, 0, errors.New("no header row"))
	}

	seriesList := make([]dataframe.ISeries, 0, len(headers))
	for i, header := range headers {
		s, err := buildColumn(header, columns[i], r.mem)
		if err != nil {
			for _, built := range seriesList {
				built.Release()
			}
			return nil, dferrors.NewLoadError(r.source, 0, fmt.Errorf("column %s: %w", header, err))
		}
		seriesList = append(seriesList, s)
	}

	return dataframe.New(seriesList...).WithAllocator(r.mem), nil
}

func (r *CSVReader) loadError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return dferrors.NewLoadError(r.source, parseErr.Line, parseErr.Err)
	}
	return dferrors.NewLoadError(r.source, 0, err)
}

// Write writes the DataFrame to CSV format. Missing values are written as empty fields.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	columns := df.Columns()
	if w.options.Header {
		if err := csvWriter.Write(columns); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	row := make([]string, len(columns))
	for i := 0; i < df.Len(); i++ {
		for j, colName := range columns {
			column, _ := df.Column(colName)
			row[j] = formatCell(column.At(i))
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
