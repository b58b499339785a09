// Package io provides I/O operations for reading and writing DataFrame data.
//
// This package includes readers and writers for the record formats the analysis
// accepts, with automatic type inference and schema handling. The primary
// implementation is CSV input; Parquet and JSON Lines are supported for both
// sources and snapshots of derived tables.
//
// Key components:
//   - DataReader/DataWriter interfaces for pluggable I/O backends
//   - CSVReader/CSVWriter for delimited text
//   - ParquetReader/ParquetWriter for columnar files
//   - JSONReader/JSONWriter for JSON Lines
//   - Load/Save choosing a backend by file extension
//
// Memory management: All I/O operations integrate with Apache Arrow's
// memory management system and require proper cleanup with defer patterns.
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/laureate/internal/dataframe"
)

// DefaultBatchSize is the default batch size for Parquet I/O.
const DefaultBatchSize = 1000

// DataReader defines the interface for reading data from various sources
type DataReader interface {
	// Read reads data from the source and returns a DataFrame
	Read() (*dataframe.DataFrame, error)
}

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:        ',',
		Comment:          0,
		Header:           true,
		SkipInitialSpace: false,
	}
}

// CSVReader reads CSV data and converts it to DataFrames
type CSVReader struct {
	reader  io.Reader
	source  string
	options CSVOptions
	mem     memory.Allocator
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	return &CSVReader{
		reader:  reader,
		source:  "csv input",
		options: options,
		mem:     mem,
	}
}

// WithSource names the input in load errors, usually its path.
func (r *CSVReader) WithSource(name string) *CSVReader {
	r.source = name
	return r
}

// CSVWriter writes DataFrames to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetReader reads Parquet data and converts it to DataFrames
type ParquetReader struct {
	reader  io.Reader
	source  string
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions, mem memory.Allocator) *ParquetReader {
	return &ParquetReader{
		reader:  reader,
		source:  "parquet input",
		options: options,
		mem:     mem,
	}
}

// WithSource names the input in load errors, usually its path.
func (r *ParquetReader) WithSource(name string) *ParquetReader {
	r.source = name
	return r
}

// ParquetWriter writes DataFrames to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{
		writer:  writer,
		options: options,
	}
}

// JSONReader reads JSON Lines, one object per line, into DataFrames.
type JSONReader struct {
	reader io.Reader
	source string
	mem    memory.Allocator
}

// NewJSONReader creates a new JSON Lines reader.
func NewJSONReader(reader io.Reader, mem memory.Allocator) *JSONReader {
	return &JSONReader{
		reader: reader,
		source: "json input",
		mem:    mem,
	}
}

// WithSource names the input in load errors, usually its path.
func (r *JSONReader) WithSource(name string) *JSONReader {
	r.source = name
	return r
}

// JSONWriter writes DataFrames as JSON Lines.
type JSONWriter struct {
	writer io.Writer
}

// NewJSONWriter creates a new JSON Lines writer.
func NewJSONWriter(writer io.Writer) *JSONWriter {
	return &JSONWriter{writer: writer}
}
