package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nao1215/tablestore/domain/model"
)

// Type aliases for the model package
type (
	// TableName is a validated SQL table name
	TableName = model.TableName
	// ColumnType is a declared SQLite column type
	ColumnType = model.ColumnType
	// Column is a column name with its declared type
	Column = model.Column
	// Schema is an ordered list of columns
	Schema = model.Schema
	// Field is one named value of a record
	Field = model.Field
	// Record is an ordered list of named values
	Record = model.Record
	// Row is one database row in table column order
	Row = model.Row
)

// Re-export constants for easier use
const (
	// TypeNone declares a column without a type
	TypeNone = model.TypeNone
	// TypeText is the SQL TEXT type
	TypeText = model.TypeText
	// TypeInteger is the SQL INTEGER type
	TypeInteger = model.TypeInteger
	// TypeReal is the SQL REAL type
	TypeReal = model.TypeReal
	// TypeBlob is the SQL BLOB type
	TypeBlob = model.TypeBlob
	// TypeNumeric is the SQL NUMERIC type
	TypeNumeric = model.TypeNumeric

	// DefaultTableName is the initial active table
	DefaultTableName = model.DefaultTableName
)

// NewRecord zips names and values into a Record.
func NewRecord(names []string, values []any) (Record, error) {
	return model.NewRecord(names, values)
}

// RecordFromStruct builds a Record from the exported fields of a struct. A
// `db:"name"` tag renames a field and `db:"-"` skips it.
func RecordFromStruct(v any) (Record, error) {
	return model.RecordFromStruct(v)
}

// Store owns one SQLite connection and an active table name. Store-level
// table operations act on the active table; Table handles obtained from
// ActiveTable, Table or the Create methods name their table explicitly.
// A Store and its handles are safe for concurrent use; an operation racing
// with Close fails with ErrClosed.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	active model.TableName
	closed atomic.Bool
}

// Open opens (or creates) the database file at path and makes sure the
// initial scalar table exists with type REAL.
//
// Example usage:
//
//	store, err := tablestore.Open("scores.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.SaveScalarList(ctx, []any{1.5, 2.5}); err != nil {
//		log.Fatal(err)
//	}
func Open(path string, opts ...Option) (*Store, error) {
	return OpenContext(context.Background(), path, opts...)
}

// OpenContext is Open with a context for the initial connection and DDL.
func OpenContext(ctx context.Context, path string, opts ...Option) (*Store, error) {
	builder := NewBuilder().Path(path)
	for _, opt := range opts {
		opt(builder)
	}

	validatedBuilder, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	return validatedBuilder.Open(ctx)
}

// WithStore opens a store, passes it to fn and closes it afterwards, whatever
// fn returns.
func WithStore(ctx context.Context, path string, fn func(*Store) error, opts ...Option) (err error) {
	store, err := OpenContext(ctx, path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(store)
}

// Close releases the connection. Every later call, Close included, fails
// with ErrClosed.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return s.db.Close()
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// checkOpen returns ErrClosed once the store is closed
func (s *Store) checkOpen() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// closedOr reports a database error as ErrClosed when Close ran after the
// operation passed checkOpen. The closed flag is set before the connection
// is released, so any failure caused by the close sees it.
func (s *Store) closedOr(err error) error {
	if err != nil && s.closed.Load() {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return err
}

// SetActiveTable redirects store-level operations to name. It does not touch
// the database and does not check that the table exists.
func (s *Store) SetActiveTable(name string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	tableName, err := model.NewTableName(name)
	if err != nil {
		return NewErrorContext("set active table").Error(err)
	}

	s.mu.Lock()
	s.active = tableName
	s.mu.Unlock()

	s.logger.Info("Active table set", "table", tableName.String())
	return nil
}

// ActiveTable returns a handle for the current active table.
func (s *Store) ActiveTable() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Table{store: s, name: s.active}
}

// Table returns a handle for name without changing the active table.
func (s *Store) Table(name string) (*Table, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	tableName, err := model.NewTableName(name)
	if err != nil {
		return nil, NewErrorContext("open table").Error(err)
	}
	return &Table{store: s, name: tableName}, nil
}

// CreateScalarTable creates the active table as a scalar table
// (id, list_element) when it does not exist yet. An empty elementType
// means REAL.
func (s *Store) CreateScalarTable(ctx context.Context, elementType ColumnType) (*Table, error) {
	t := s.ActiveTable()
	if err := t.CreateScalar(ctx, elementType); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTableForRecord creates the active table with columns derived from
// record when it does not exist yet.
func (s *Store) CreateTableForRecord(ctx context.Context, record Record) (*Table, error) {
	t := s.ActiveTable()
	if _, err := t.CreateForRecord(ctx, record); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTable creates name with an explicit schema when it does not exist
// yet. The active table is left unchanged.
func (s *Store) CreateTable(ctx context.Context, name string, schema Schema) (*Table, error) {
	t, err := s.Table(name)
	if err != nil {
		return nil, err
	}
	if err := t.Create(ctx, schema); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTable drops the active table. A missing table is not an error.
func (s *Store) DeleteTable(ctx context.Context) error {
	return s.ActiveTable().Drop(ctx)
}

// SaveScalarList stores elements in the active scalar table, one row each.
func (s *Store) SaveScalarList(ctx context.Context, elements []any) error {
	return s.ActiveTable().SaveScalarList(ctx, elements)
}

// SaveRecordBatch creates the active table from the first record and stores
// every record in it.
func (s *Store) SaveRecordBatch(ctx context.Context, records []Record) error {
	return s.ActiveTable().SaveRecordBatch(ctx, records)
}

// GetScalarColumn returns the list_element values of the active table in id order.
func (s *Store) GetScalarColumn(ctx context.Context) ([]any, error) {
	return s.ActiveTable().ScalarColumn(ctx)
}

// GetAllRows returns every row of the active table.
func (s *Store) GetAllRows(ctx context.Context) ([]Row, error) {
	return s.ActiveTable().Rows(ctx)
}

// ListTables returns the names of all user tables, sorted.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, NewErrorContext("list tables").Error(s.closedOr(err))
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, NewErrorContext("list tables").Error(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, NewErrorContext("list tables").Error(s.closedOr(err))
	}
	return names, nil
}

// Import creates frame's table from its declared schema and inserts its rows.
func (s *Store) Import(ctx context.Context, frame *Frame) (*Table, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrEmptyInput)
	}
	t, err := s.CreateTable(ctx, frame.Name, frame.Schema)
	if err != nil {
		return nil, err
	}
	if err := t.InsertRows(ctx, frame.Rows); err != nil {
		return nil, err
	}
	s.logger.Info("Imported rows", "table", frame.Name, "rows", len(frame.Rows))
	return t, nil
}

// withTx runs fn in a transaction and commits when fn succeeds
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", s.closedOr(err))
	}
	defer func() {
		// Rollback if we don't commit - ignore errors as they're expected if transaction was committed
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return s.closedOr(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", s.closedOr(err))
	}
	return nil
}
