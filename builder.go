package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/tablestore/domain/model"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DriverName is the database/sql driver used for the store
const DriverName = "sqlite"

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Builder configures and opens a Store.
//
// The typical usage pattern is:
//
//	builder := tablestore.NewBuilder().Path("scores.db").TableName("game_points")
//	validatedBuilder, err := builder.Build(ctx)
//	if err != nil {
//		return err
//	}
//	store, err := validatedBuilder.Open(ctx)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
type Builder struct {
	// path is the database file path or MemoryPath
	path string
	// tableName is the initial active table
	tableName string
	// logger receives the store's log lines
	logger *slog.Logger
	// initialTable is set by Build
	initialTable model.TableName
	// built reports whether Build succeeded
	built bool
}

// Option configures a Store opened with Open or OpenContext.
type Option func(*Builder)

// WithTableName sets the initial active table (default "my_table").
func WithTableName(name string) Option {
	return func(b *Builder) {
		b.TableName(name)
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.Logger(logger)
	}
}

// NewBuilder creates a new store builder.
func NewBuilder() *Builder {
	return &Builder{
		tableName: model.DefaultTableName,
	}
}

// Path sets the database file path. The file is created when missing.
// Returns the builder for method chaining.
func (b *Builder) Path(path string) *Builder {
	b.path = path
	b.built = false
	return b
}

// TableName sets the initial active table.
// Returns the builder for method chaining.
func (b *Builder) TableName(name string) *Builder {
	b.tableName = name
	b.built = false
	return b
}

// Logger sets the logger used by the store.
// Returns the builder for method chaining.
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration. It must be called before Open.
//
// Returns the same builder instance for method chaining, or an error if validation fails.
func (b *Builder) Build(_ context.Context) (*Builder, error) {
	path := strings.TrimSpace(b.path)
	if path == "" {
		return nil, fmt.Errorf("%w: database path is required", ErrConnection)
	}
	if strings.Contains(path, "\x00") {
		return nil, fmt.Errorf("%w: invalid database path", ErrConnection)
	}

	if !isMemoryPath(path) {
		dir := filepath.Dir(path)
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnection, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrConnection, dir)
		}
	}

	tableName, err := model.NewTableName(b.tableName)
	if err != nil {
		return nil, err
	}

	b.path = path
	b.initialTable = tableName
	b.built = true
	return b, nil
}

// Open opens the database and makes sure the initial scalar table exists.
// This method can only be called after Build() has been successfully executed.
//
// The caller is responsible for closing the store; WithStore does it automatically.
func (b *Builder) Open(ctx context.Context) (*Store, error) {
	if !b.built {
		return nil, errors.New("tablestore: builder is not validated, did you call Build()?")
	}

	db, err := sql.Open(DriverName, b.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	// One connection: an in-memory database lives and dies with it, and the
	// store never needs more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("%w: %w", ErrConnection, err), closeErr)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{
		db:     db,
		path:   b.path,
		logger: logger,
		active: b.initialTable,
	}

	if err := store.ActiveTable().CreateScalar(ctx, model.TypeReal); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("%w: %w", ErrConnection, err), closeErr)
	}

	return store, nil
}

// isMemoryPath reports whether path names an in-memory database
func isMemoryPath(path string) bool {
	return path == MemoryPath ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}
