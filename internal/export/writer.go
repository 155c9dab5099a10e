package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetConcurrency is the number of goroutines parquet-go uses to encode
// a row group.
const parquetConcurrency = 4

type row interface {
	record() []string
}

type sink interface {
	write(r row) error
	close() error
}

func openSink(path string, format Format, header []string, schema interface{}) (sink, error) {
	switch format {
	case CSV:
		return newCSVSink(path, header)
	case Parquet:
		return newParquetSink(path, schema)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

type csvSink struct {
	file *os.File
	w    *csv.Writer
}

func newCSVSink(path string, header []string) (*csvSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	s := &csvSink{file: file, w: csv.NewWriter(file)}
	if err := s.w.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return s, nil
}

func (s *csvSink) write(r row) error {
	if err := s.w.Write(r.record()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func (s *csvSink) close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return s.file.Close()
}

type parquetSink struct {
	file source.ParquetFile
	w    *writer.ParquetWriter
}

func newParquetSink(path string, schema interface{}) (*parquetSink, error) {
	file, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w, err := writer.NewParquetWriter(file, schema, parquetConcurrency)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	w.CompressionType = parquet.CompressionCodec_SNAPPY

	return &parquetSink{file: file, w: w}, nil
}

func (s *parquetSink) write(r row) error {
	if err := s.w.Write(r); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func (s *parquetSink) close() error {
	if err := s.w.WriteStop(); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return s.file.Close()
}
