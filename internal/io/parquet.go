package io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
)

// Read reads Parquet data and returns a DataFrame. Narrow integer and float columns
// are widened to 64 bits; nulls are kept as missing values.
func (r *ParquetReader) Read() (*dataframe.DataFrame, error) {
	// Read all data into memory for Parquet reading
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, dferrors.NewLoadError(r.source, 0, err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, dferrors.NewLoadError(r.source, 0, fmt.Errorf("creating parquet file reader: %w", err))
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{
		BatchSize: int64(r.options.BatchSize),
	}, r.mem)
	if err != nil {
		return nil, dferrors.NewLoadError(r.source, 0, fmt.Errorf("creating arrow file reader: %w", err))
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, dferrors.NewLoadError(r.source, 0, fmt.Errorf("reading table: %w", err))
	}
	defer table.Release()

	return r.tableToDataFrame(table)
}

func (r *ParquetReader) tableToDataFrame(table arrow.Table) (*dataframe.DataFrame, error) {
	ctx := compute.WithAllocator(context.Background(), r.mem)
	seriesList := make([]dataframe.ISeries, 0, table.NumCols())
	fail := func(name string, err error) (*dataframe.DataFrame, error) {
		for _, s := range seriesList {
			s.Release()
		}
		return nil, dferrors.NewLoadError(r.source, 0, fmt.Errorf("column %s: %w", name, err))
	}

	for i := range int(table.NumCols()) {
		column := table.Column(i)
		name := column.Name()

		arr, err := r.flatten(column)
		if err != nil {
			return fail(name, err)
		}
		arr, err = widen(ctx, arr)
		if err != nil {
			return fail(name, err)
		}
		s, err := dataframe.WrapArray(name, arr)
		if err != nil {
			return fail(name, err)
		}
		seriesList = append(seriesList, s)
	}

	return dataframe.New(seriesList...).WithAllocator(r.mem), nil
}

// flatten concatenates the chunks of a column into a single array.
func (r *ParquetReader) flatten(column *arrow.Column) (arrow.Array, error) {
	chunks := column.Data().Chunks()
	switch len(chunks) {
	case 0:
		return array.MakeArrayOfNull(r.mem, column.DataType(), 0), nil
	case 1:
		chunks[0].Retain()
		return chunks[0], nil
	default:
		return array.Concatenate(chunks, r.mem)
	}
}

// widen casts 32-bit numeric columns to their 64-bit counterparts, taking over arr.
func widen(ctx context.Context, arr arrow.Array) (arrow.Array, error) {
	var target arrow.DataType
	//nolint:exhaustive // only narrow numerics are widened
	switch arr.DataType().ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.UINT8, arrow.UINT16, arrow.UINT32:
		target = arrow.PrimitiveTypes.Int64
	case arrow.FLOAT32:
		target = arrow.PrimitiveTypes.Float64
	default:
		return arr, nil
	}
	defer arr.Release()
	return compute.CastToType(ctx, arr, target)
}

// Write writes the DataFrame to Parquet format.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	mem := df.Allocator()

	fields := make([]arrow.Field, 0, df.Width())
	arrays := make([]arrow.Array, 0, df.Width())
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		arr := col.Array()
		arrays = append(arrays, arr)
		fields = append(fields, arrow.Field{Name: name, Type: arr.DataType(), Nullable: true})
	}

	schema := arrow.NewSchema(fields, nil)
	record := array.NewRecord(schema, arrays, int64(df.Len()))
	defer record.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compressionCodec(w.options.Compression)),
		parquet.WithBatchSize(int64(w.options.BatchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem))

	writer, err := pqarrow.NewFileWriter(schema, w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	return nil
}

func compressionCodec(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Codecs.Gzip
	case "lz4":
		return compress.Codecs.Lz4Raw
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}
