package tablestore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/tablestore/domain/model"
	"github.com/xuri/excelize/v2"
)

// Frame is a loaded tabular file: the table it maps to, the inferred column
// schema and the converted rows in file order.
type Frame struct {
	// Name is the table name derived from the source
	Name string
	// Schema holds one column per header entry
	Schema Schema
	// Rows holds one value per column; empty cells are nil
	Rows []Row
}

// Records returns the rows as records keyed by column name.
func (f *Frame) Records() []Record {
	records := make([]Record, len(f.Rows))
	for i, row := range f.Rows {
		record := make(Record, len(f.Schema))
		for j, col := range f.Schema {
			var value any
			if j < len(row) {
				value = row[j]
			}
			record[j] = model.Field{Name: col.Name, Value: value}
		}
		records[i] = record
	}
	return records
}

// LoadFile reads a CSV, TSV, LTSV, XLSX or Parquet file, optionally compressed
// with gzip, bzip2, xz or zstd. Format and compression come from the file
// extensions and the table name from the base name.
//
// Example:
//
//	frame, err := tablestore.LoadFile(ctx, "testdata/sales.csv.gz")
//	if err != nil {
//		return err
//	}
//	table, err := store.Import(ctx, frame) // creates table "sales"
func LoadFile(ctx context.Context, path string) (*Frame, error) {
	format, compression := DetectFile(path)
	if format == FormatUnsupported {
		return nil, NewErrorContext("load file").WithFile(path).Error(ErrUnsupportedFormat)
	}

	file, err := os.Open(path) //nolint:gosec // path is supplied by the caller
	if err != nil {
		return nil, NewErrorContext("load file").WithFile(path).Error(err)
	}
	defer file.Close()

	frame, err := LoadReader(ctx, file, tableNameFromPath(path), format, compression)
	if err != nil {
		return nil, NewErrorContext("load file").WithFile(path).Error(err)
	}
	return frame, nil
}

// LoadReader reads tabular data of the given format and compression from r.
// name becomes the frame's table name after sanitising.
func LoadReader(ctx context.Context, r io.Reader, name string, format Format, compression Compression) (*Frame, error) {
	reader, closeReader, err := newCodec(compression).reader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = closeReader()
	}()

	tableName := sanitizeName(name, "table")

	switch format {
	case FormatCSV:
		return parseDelimited(reader, tableName, ',')
	case FormatTSV:
		return parseDelimited(reader, tableName, '\t')
	case FormatLTSV:
		return parseLTSV(reader, tableName)
	case FormatXLSX:
		return parseXLSX(reader, tableName)
	case FormatParquet:
		return parseParquet(ctx, reader, tableName)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// sanitizeName turns arbitrary text into a valid identifier
func sanitizeName(name, fallback string) string {
	return model.SanitizeIdentifier(name, fallback)
}

// sanitizeHeader turns header cells into unique column names
func sanitizeHeader(header []string) ([]string, error) {
	names := make([]string, len(header))
	for i, h := range header {
		name := sanitizeName(h, "")
		if name == "" {
			name = fmt.Sprintf("column%d", i+1)
		}
		names[i] = name
	}
	if err := model.ValidateColumnNames(names); err != nil {
		return nil, err
	}
	return names, nil
}

// newTextFrame builds a frame from textual cells, inferring column types
func newTextFrame(name string, header []string, cells [][]string) (*Frame, error) {
	if len(header) == 0 {
		return nil, ErrEmptyData
	}
	names, err := sanitizeHeader(header)
	if err != nil {
		return nil, err
	}

	schema := model.InferSchema(names, cells)
	rows := make([]Row, len(cells))
	for i, cellRow := range cells {
		rows[i] = model.ConvertRow(cellRow, schema)
	}
	return &Frame{Name: name, Schema: schema, Rows: rows}, nil
}

// parseDelimited parses CSV or TSV data with a header row
func parseDelimited(r io.Reader, name string, delimiter rune) (*Frame, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	if delimiter == '\t' {
		csvReader.LazyQuotes = true
	}

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s data: %w", delimiterName(delimiter), err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyData
	}
	return newTextFrame(name, records[0], records[1:])
}

// delimiterName names the format read with delimiter
func delimiterName(delimiter rune) string {
	if delimiter == '\t' {
		return "TSV"
	}
	return "CSV"
}

// parseLTSV parses LTSV data. Columns appear in the order their labels are
// first seen.
func parseLTSV(r io.Reader, name string) (*Frame, error) {
	var (
		header []string
		index  = make(map[string]int)
		lines  []map[string]string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := make(map[string]string)
		for _, pair := range strings.Split(line, "\t") {
			label, value, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			if _, seen := index[label]; !seen {
				index[label] = len(header)
				header = append(header, label)
			}
			fields[label] = value
		}
		if len(fields) > 0 {
			lines = append(lines, fields)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read LTSV data: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyData
	}

	cells := make([][]string, len(lines))
	for i, fields := range lines {
		row := make([]string, len(header))
		for label, value := range fields {
			row[index[label]] = value
		}
		cells[i] = row
	}
	return newTextFrame(name, header, cells)
}

// parseXLSX parses the first sheet of an XLSX workbook. The first row is the
// header.
func parseXLSX(r io.Reader, name string) (*Frame, error) {
	xlsxFile, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX data: %w", err)
	}
	defer func() {
		_ = xlsxFile.Close()
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, ErrEmptyData
	}
	rows, err := xlsxFile.GetRows(sheetNames[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetNames[0], err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyData
	}
	return newTextFrame(name, rows[0], rows[1:])
}

// parseParquet reads a Parquet file. Column types follow the Arrow schema and
// values are extracted natively.
func parseParquet(ctx context.Context, r io.Reader, name string) (*Frame, error) {
	// Parquet needs random access
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer table.Release()

	fields := table.Schema().Fields()
	if len(fields) == 0 {
		return nil, ErrEmptyData
	}
	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = field.Name
	}
	names, err := sanitizeHeader(header)
	if err != nil {
		return nil, err
	}
	schema := make(Schema, len(fields))
	for i, field := range fields {
		schema[i] = model.NewColumn(names[i], columnTypeOfArrow(field.Type))
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	rows := make([]Row, 0, table.NumRows())
	for tableReader.Next() {
		batch := tableReader.Record()
		for i := range int(batch.NumRows()) {
			row := make(Row, batch.NumCols())
			for j, col := range batch.Columns() {
				row[j] = arrowValue(col, i)
			}
			rows = append(rows, row)
		}
	}
	if err := tableReader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet records: %w", err)
	}

	return &Frame{Name: name, Schema: schema, Rows: rows}, nil
}

// columnTypeOfArrow maps an Arrow data type to the declared SQLite type
func columnTypeOfArrow(dt arrow.DataType) ColumnType {
	switch dt.ID() {
	case arrow.BOOL,
		arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return model.TypeInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return model.TypeReal
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return model.TypeBlob
	default:
		return model.TypeText
	}
}

// arrowValue extracts row i of arr as int64, float64, bool, string, []byte
// or nil
func arrowValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}

	switch a := arr.(type) {
	case *array.Boolean:
		return a.Value(i)
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		v := a.Value(i)
		if v > math.MaxInt64 {
			return a.ValueStr(i)
		}
		return int64(v)
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Binary:
		return bytes.Clone(a.Value(i))
	case *array.LargeBinary:
		return bytes.Clone(a.Value(i))
	default:
		return arr.ValueStr(i)
	}
}
