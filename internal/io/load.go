package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
)

// Format identifies a record file format.
type Format int

const (
	// FormatCSV is delimited text with a header row.
	FormatCSV Format = iota
	// FormatParquet is an Apache Parquet file.
	FormatParquet
	// FormatJSONLines is one JSON object per line.
	FormatJSONLines
)

// FormatOf picks the format from the file extension; anything unrecognised is CSV.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONLines
	default:
		return FormatCSV
	}
}

// Options groups the per-format options used by Load and Save.
type Options struct {
	CSV     CSVOptions
	Parquet ParquetOptions
}

// DefaultOptions returns the default options of every format.
func DefaultOptions() Options {
	return Options{
		CSV:     DefaultCSVOptions(),
		Parquet: DefaultParquetOptions(),
	}
}

// Load reads the record file at path into a DataFrame. Any failure is a load error
// naming the path.
func Load(path string, opts Options, mem memory.Allocator) (*dataframe.DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, dferrors.NewLoadError(path, 0, err)
	}
	defer f.Close()

	return NewReader(f, path, opts, mem).Read()
}

// NewReader returns the reader for the format of path, reading from r.
func NewReader(r io.Reader, path string, opts Options, mem memory.Allocator) DataReader {
	switch FormatOf(path) {
	case FormatParquet:
		return NewParquetReader(r, opts.Parquet, mem).WithSource(path)
	case FormatJSONLines:
		return NewJSONReader(r, mem).WithSource(path)
	default:
		return NewCSVReader(r, opts.CSV, mem).WithSource(path)
	}
}

// NewWriter returns the writer for the format of path, writing to w.
func NewWriter(w io.Writer, path string, opts Options) DataWriter {
	switch FormatOf(path) {
	case FormatParquet:
		return NewParquetWriter(w, opts.Parquet)
	case FormatJSONLines:
		return NewJSONWriter(w)
	default:
		return NewCSVWriter(w, opts.CSV)
	}
}

// Save writes df to path in the format its extension names, creating parent
// directories as needed.
func Save(path string, df *dataframe.DataFrame, opts Options) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	// hide Close so writers that close their sink leave the file to us
	sink := struct{ io.Writer }{f}
	if err := NewWriter(sink, path, opts).Write(df); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
