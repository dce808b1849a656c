package tablestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"
)

// maxSheetNameLength is the longest sheet name Excel accepts
const maxSheetNameLength = 31

// Dump writes the table to dir as <table><ext><compression> and returns the
// written path. dir is created when missing. Without options the table is
// written as uncompressed CSV.
func (t *Table) Dump(ctx context.Context, dir string, opts ...DumpOptions) (string, error) {
	if err := t.store.checkOpen(); err != nil {
		return "", err
	}
	options := NewDumpOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Format == FormatUnsupported || options.Format.Extension() == "" {
		return "", t.errorContext("dump table").Error(ErrUnsupportedFormat)
	}

	columns, err := t.Columns(ctx)
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", t.errorContext("dump table").WithDetails("table does not exist").Error(ErrEmptyData)
	}
	rows, err := t.Rows(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", t.errorContext("dump table").WithFile(dir).Error(err)
	}
	outputPath := filepath.Join(dir, t.name.String()+options.FileExtension())

	if err := writeTableFile(outputPath, t.name.String(), columns.Names(), rows, options); err != nil {
		return "", t.errorContext("dump table").WithFile(outputPath).Error(err)
	}
	t.store.logger.Info("Table dumped", "table", t.name.String(), "path", outputPath, "rows", len(rows))
	return outputPath, nil
}

// DumpDatabase writes every table of the store to dir, one file per table,
// and returns the written paths in table name order.
//
// Example:
//
//	options := tablestore.NewDumpOptions().
//		WithFormat(tablestore.FormatParquet).
//		WithCompression(tablestore.CompressionZSTD)
//	paths, err := store.DumpDatabase(ctx, "./backup", options)
func (s *Store) DumpDatabase(ctx context.Context, dir string, opts ...DumpOptions) ([]string, error) {
	tableNames, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(tableNames))
	for _, name := range tableNames {
		t, err := s.Table(name)
		if err != nil {
			return paths, err
		}
		path, err := t.Dump(ctx, dir, opts...)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeTableFile writes header and rows to path in the requested format and
// compression
func writeTableFile(path, tableName string, header []string, rows []Row, options DumpOptions) (err error) {
	file, err := os.Create(path) //nolint:gosec // path is built from a validated table name
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	writer, closeWriter, err := newCodec(options.Compression).writer(file)
	if err != nil {
		return err
	}

	var writeErr error
	switch options.Format {
	case FormatCSV:
		writeErr = writeDelimited(writer, header, rows, ',')
	case FormatTSV:
		writeErr = writeDelimited(writer, header, rows, '\t')
	case FormatLTSV:
		writeErr = writeLTSV(writer, header, rows)
	case FormatXLSX:
		writeErr = writeXLSX(writer, tableName, header, rows)
	case FormatParquet:
		writeErr = writeParquet(writer, header, rows)
	default:
		writeErr = fmt.Errorf("%w: %v", ErrUnsupportedFormat, options.Format)
	}
	return errors.Join(writeErr, closeWriter())
}

// writeDelimited writes CSV or TSV with a header row
func writeDelimited(w io.Writer, header []string, rows []Row, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i := range record {
			record[i] = formatCell(cellAt(row, i))
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// writeLTSV writes one label:value line per row
func writeLTSV(w io.Writer, header []string, rows []Row) error {
	pairs := make([]string, len(header))
	for _, row := range rows {
		for i, label := range header {
			pairs[i] = label + ":" + formatCell(cellAt(row, i))
		}
		if _, err := io.WriteString(w, strings.Join(pairs, "\t")+"\n"); err != nil {
			return fmt.Errorf("failed to write LTSV line: %w", err)
		}
	}
	return nil
}

// writeXLSX writes a single-sheet workbook named after the table
func writeXLSX(w io.Writer, tableName string, header []string, rows []Row) error {
	xlsxFile := excelize.NewFile()
	defer func() {
		_ = xlsxFile.Close()
	}()

	sheet := "Sheet1"
	if len(tableName) <= maxSheetNameLength {
		if err := xlsxFile.SetSheetName(sheet, tableName); err == nil {
			sheet = tableName
		}
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := setSheetRow(xlsxFile, sheet, 1, headerCells); err != nil {
		return err
	}

	for r, row := range rows {
		cells := make([]any, len(header))
		for i := range cells {
			cells[i] = xlsxCell(cellAt(row, i))
		}
		if err := setSheetRow(xlsxFile, sheet, r+2, cells); err != nil {
			return err
		}
	}

	if err := xlsxFile.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX data: %w", err)
	}
	return nil
}

// setSheetRow writes cells to row number rowNum (1-based)
func setSheetRow(xlsxFile *excelize.File, sheet string, rowNum int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := xlsxFile.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write XLSX row %d: %w", rowNum, err)
	}
	return nil
}

// xlsxCell converts a database value to something excelize stores natively
func xlsxCell(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}

// parquetKind is the Arrow column type chosen for a dumped column
type parquetKind int

const (
	parquetString parquetKind = iota
	parquetInt64
	parquetFloat64
	parquetBinary
)

// parquetKindOf picks the narrowest Arrow type holding every non-nil value
// of column col. SQLite columns may mix storage classes, so the declared
// type is not enough.
func parquetKindOf(rows []Row, col int) parquetKind {
	var ints, floats, blobs, others int
	for _, row := range rows {
		switch cellAt(row, col).(type) {
		case nil:
		case int64:
			ints++
		case float64:
			floats++
		case []byte:
			blobs++
		default:
			others++
		}
	}

	switch {
	case others > 0:
		return parquetString
	case blobs > 0 && ints+floats == 0:
		return parquetBinary
	case blobs > 0:
		return parquetString
	case floats > 0:
		return parquetFloat64
	case ints > 0:
		return parquetInt64
	default:
		return parquetString
	}
}

// writeParquet writes the rows as one Parquet row group
func writeParquet(w io.Writer, header []string, rows []Row) error {
	kinds := make([]parquetKind, len(header))
	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		kinds[i] = parquetKindOf(rows, i)
		var dt arrow.DataType
		switch kinds[i] {
		case parquetInt64:
			dt = arrow.PrimitiveTypes.Int64
		case parquetFloat64:
			dt = arrow.PrimitiveTypes.Float64
		case parquetBinary:
			dt = arrow.BinaryTypes.Binary
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, row := range rows {
		for i, kind := range kinds {
			appendParquetValue(builder.Field(i), kind, cellAt(row, i))
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer table.Release()

	chunkSize := int64(max(len(rows), 1))
	// The Parquet writer closes its sink; the compression writer must stay
	// open until writeTableFile flushes it.
	sink := struct{ io.Writer }{w}
	if err := pqarrow.WriteTable(table, sink, chunkSize, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("failed to write parquet data: %w", err)
	}
	return nil
}

// appendParquetValue appends v to a field builder of the given kind
func appendParquetValue(fieldBuilder array.Builder, kind parquetKind, v any) {
	if v == nil {
		fieldBuilder.AppendNull()
		return
	}

	switch kind {
	case parquetInt64:
		fieldBuilder.(*array.Int64Builder).Append(v.(int64))
	case parquetFloat64:
		switch val := v.(type) {
		case int64:
			fieldBuilder.(*array.Float64Builder).Append(float64(val))
		case float64:
			fieldBuilder.(*array.Float64Builder).Append(val)
		}
	case parquetBinary:
		fieldBuilder.(*array.BinaryBuilder).Append(v.([]byte))
	default:
		fieldBuilder.(*array.StringBuilder).Append(formatCell(v))
	}
}

// cellAt returns row[i], or nil past the end of row
func cellAt(row Row, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

// formatCell renders a database value as text. nil renders empty.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
