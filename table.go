package tablestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nao1215/tablestore/domain/model"
)

// Table is a handle on one named table of a Store. Handles are cheap and stay
// valid until the store is closed; they do not imply the table exists.
type Table struct {
	store *Store
	name  model.TableName
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name.String()
}

// errorContext starts an error context for op on this table
func (t *Table) errorContext(op string) *ErrorContext {
	return NewErrorContext(op).WithTable(t.name.String())
}

// CreateScalar creates the table as a scalar table (id, list_element) when it
// does not exist yet. An empty elementType means REAL.
func (t *Table) CreateScalar(ctx context.Context, elementType ColumnType) error {
	if elementType == model.TypeNone {
		elementType = model.TypeReal
	}
	return t.createScalar(ctx, elementType)
}

// createScalar creates the scalar table with elementType as given, TypeNone included
func (t *Table) createScalar(ctx context.Context, elementType ColumnType) error {
	if err := t.store.checkOpen(); err != nil {
		return err
	}
	if err := elementType.Validate(); err != nil {
		return t.errorContext("create scalar table").Error(err)
	}

	valueColumn := model.NewColumn(model.ScalarValueColumn, elementType)
	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (%s INTEGER PRIMARY KEY AUTOINCREMENT, %s)`,
		t.name.Quoted(),
		model.QuoteIdentifier(model.ScalarIDColumn),
		valueColumn.Definition(),
	)
	return t.exec(ctx, "create scalar table", query)
}

// CreateForRecord creates the table with the columns record maps to, when it
// does not exist yet, and returns the derived schema.
func (t *Table) CreateForRecord(ctx context.Context, record Record) (Schema, error) {
	if err := t.store.checkOpen(); err != nil {
		return nil, err
	}
	schema, err := record.Schema()
	if err != nil {
		return nil, t.errorContext("create table for record").Error(err)
	}
	if err := t.Create(ctx, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// Create creates the table with schema when it does not exist yet.
func (t *Table) Create(ctx context.Context, schema Schema) error {
	if err := t.store.checkOpen(); err != nil {
		return err
	}
	if err := schema.Validate(); err != nil {
		return t.errorContext("create table").Error(err)
	}

	definitions := make([]string, len(schema))
	for i, col := range schema {
		definitions[i] = col.Definition()
	}
	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (%s)`,
		t.name.Quoted(),
		strings.Join(definitions, ", "),
	)
	return t.exec(ctx, "create table", query)
}

// Drop drops the table. A missing table is not an error.
func (t *Table) Drop(ctx context.Context) error {
	if err := t.store.checkOpen(); err != nil {
		return err
	}
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t.name.Quoted())
	if err := t.exec(ctx, "delete table", query); err != nil {
		return err
	}
	t.store.logger.Info("Table deleted", "table", t.name.String())
	return nil
}

// Exists reports whether the table is present in the database.
func (t *Table) Exists(ctx context.Context) (bool, error) {
	if err := t.store.checkOpen(); err != nil {
		return false, err
	}
	var count int
	err := t.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", t.name.String()).Scan(&count)
	if err != nil {
		return false, t.errorContext("check table").Error(t.store.closedOr(err))
	}
	return count > 0, nil
}

// Columns returns the table's columns as declared, in table order. A
// missing table has no columns.
func (t *Table) Columns(ctx context.Context) (Schema, error) {
	if err := t.store.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := t.store.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", t.name.Quoted()))
	if err != nil {
		return nil, t.errorContext("read columns").Error(t.store.closedOr(err))
	}
	defer rows.Close()

	schema := make(Schema, 0)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, t.errorContext("read columns").Error(err)
		}
		schema = append(schema, model.NewColumn(name, model.ColumnType(colType)))
	}
	if err := rows.Err(); err != nil {
		return nil, t.errorContext("read columns").Error(t.store.closedOr(err))
	}
	return schema, nil
}

// SaveScalarList stores elements in the scalar table, one row per element, in
// a single transaction. The element type is inferred from the first element
// and used to create the table if needed.
func (t *Table) SaveScalarList(ctx context.Context, elements []any) error {
	if err := t.store.checkOpen(); err != nil {
		return err
	}
	if len(elements) == 0 {
		return t.errorContext("save scalar list").Error(ErrEmptyInput)
	}

	elementType, err := model.ColumnTypeOf(elements[0])
	if err != nil {
		return t.errorContext("save scalar list").Error(err)
	}
	if err := t.createScalar(ctx, elementType); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?)`,
		t.name.Quoted(), model.QuoteIdentifier(model.ScalarValueColumn))

	err = t.store.withTx(ctx, func(tx *sql.Tx) error {
		for i, element := range elements {
			if _, err := tx.ExecContext(ctx, query, element); err != nil {
				return fmt.Errorf("failed to insert element %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return t.errorContext("save scalar list").Error(err)
	}
	return nil
}

// SaveRecordBatch creates the table from the first record's shape and
// stores all records positionally in one transaction. Every record must map
// to the same columns in the same order as the first one, and the table must
// have exactly that many columns.
func (t *Table) SaveRecordBatch(ctx context.Context, records []Record) error {
	if err := t.store.checkOpen(); err != nil {
		return err
	}
	if len(records) == 0 {
		return t.errorContext("save record batch").Error(ErrEmptyInput)
	}

	first := records[0]
	for i, record := range records[1:] {
		if !first.SameShape(record) {
			return t.errorContext("save record batch").
				WithDetails(fmt.Sprintf("record %d has columns %v, want %v", i+1, record.ColumnNames(), first.ColumnNames())).
				Error(ErrSchemaMismatch)
		}
	}

	if _, err := t.CreateForRecord(ctx, first); err != nil {
		return err
	}

	rows := make([]Row, len(records))
	for i, record := range records {
		rows[i] = record.Values()
	}
	if err := t.InsertRows(ctx, rows); err != nil {
		return err
	}

	t.store.logger.Info("Records stored", "table", t.name.String(), "count", len(records))
	return nil
}

// InsertRows inserts rows positionally with one prepared statement in a
// single transaction. Each row must have one value per table column.
func (t *Table) InsertRows(ctx context.Context, rows []Row) error {
	if err := t.store.checkOpen(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	columns, err := t.Columns(ctx)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return t.errorContext("insert rows").WithDetails("table does not exist").Error(ErrSchemaMismatch)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return t.errorContext("insert rows").
				WithDetails(fmt.Sprintf("row %d has %d values, table has %d columns", i, len(row), len(columns))).
				Error(ErrSchemaMismatch)
		}
	}

	query := fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, t.name.Quoted(), buildPlaceholders(len(columns)))

	err = t.store.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return t.errorContext("insert rows").Error(err)
	}
	return nil
}

// ScalarColumn returns the list_element values in id order.
func (t *Table) ScalarColumn(ctx context.Context) ([]any, error) {
	if err := t.store.checkOpen(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`,
		model.QuoteIdentifier(model.ScalarValueColumn),
		t.name.Quoted(),
		model.QuoteIdentifier(model.ScalarIDColumn),
	)
	rows, err := t.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, t.errorContext("get scalar column").Error(t.store.closedOr(err))
	}
	defer rows.Close()

	values := make([]any, 0)
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, t.errorContext("get scalar column").Error(err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, t.errorContext("get scalar column").Error(t.store.closedOr(err))
	}
	return values, nil
}

// Rows returns every row of every column in insertion (rowid) order.
func (t *Table) Rows(ctx context.Context) ([]Row, error) {
	if err := t.store.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := t.store.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY rowid`, t.name.Quoted()))
	if err != nil {
		return nil, t.errorContext("get all rows").Error(t.store.closedOr(err))
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, t.errorContext("get all rows").Error(t.store.closedOr(err))
	}
	return result, nil
}

// exec runs a statement outside any transaction
func (t *Table) exec(ctx context.Context, op, query string) error {
	t.store.logger.Debug("Executing statement", "op", op, "query", query)
	if _, err := t.store.db.ExecContext(ctx, query); err != nil {
		return t.errorContext(op).Error(t.store.closedOr(err))
	}
	return nil
}

// scanRows reads all remaining rows into Row values
func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		row := make(Row, len(columns))
		dest := make([]any, len(columns))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// buildPlaceholders creates placeholder string for prepared statements
func buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
