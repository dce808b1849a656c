package tablestore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/tablestore/domain/model"
)

// Standard errors. Compare with errors.Is; returned errors wrap these with
// the operation and table they came from.
var (
	// ErrConnection indicates the database file could not be opened or created
	ErrConnection = errors.New("tablestore: cannot open database")

	// ErrClosed indicates an operation on a store after Close
	ErrClosed = errors.New("tablestore: store is closed")

	// ErrEmptyInput indicates an empty scalar list or record batch
	ErrEmptyInput = errors.New("tablestore: empty input")

	// ErrSchemaMismatch indicates a record whose fields do not line up with
	// the first record of the batch or with the target table
	ErrSchemaMismatch = errors.New("tablestore: schema mismatch")

	// ErrInvalidIdentifier indicates a table name, column name or declared
	// type rejected by the allow-list
	ErrInvalidIdentifier = model.ErrInvalidIdentifier

	// ErrDuplicateColumnName indicates that a file header repeats a column name
	ErrDuplicateColumnName = model.ErrDuplicateColumnName

	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = errors.New("tablestore: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("tablestore: unsupported file format")

	// ErrDuplicateTableName indicates that two different files map to the
	// same table name
	ErrDuplicateTableName = errors.New("tablestore: duplicate table name")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
	}
}

// WithFile adds file context to the error
func (ec *ErrorContext) WithFile(filePath string) *ErrorContext {
	ec.FilePath = filePath
	return ec
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("tablestore: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
