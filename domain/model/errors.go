// Package model provides the domain model for tablestore: table names,
// column types, schemas, records and the validation that guards every piece
// of text that ends up inside generated SQL.
package model

import "errors"

var (
	// ErrDuplicateColumnName is returned when a schema or file header repeats a column name
	ErrDuplicateColumnName = errors.New("duplicate column name")

	// ErrInvalidIdentifier is returned when a table name, column name or
	// declared column type is rejected by the allow-list
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")

	// ErrTooManyColumns is returned when a schema has too many columns
	ErrTooManyColumns = errors.New("too many columns")
)
