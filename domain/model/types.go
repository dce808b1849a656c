package model

import (
	"fmt"
	"strings"
)

// DefaultTableName is the table a store targets when no name is given.
const DefaultTableName = "my_table"

// Scalar table layout
const (
	// ScalarIDColumn is the surrogate key column of a scalar table
	ScalarIDColumn = "id"
	// ScalarValueColumn is the value column of a scalar table
	ScalarValueColumn = "list_element"
)

// TableName represents a validated SQL table name.
type TableName struct {
	value string
}

// NewTableName validates name and returns it as a TableName.
func NewTableName(name string) (TableName, error) {
	name = strings.TrimSpace(name)
	if err := ValidateIdentifier(name); err != nil {
		return TableName{}, fmt.Errorf("table name %q: %w", name, err)
	}
	return TableName{value: name}, nil
}

// MustTableName is like NewTableName but panics on an invalid name.
// It is intended for names known at compile time.
func MustTableName(name string) TableName {
	tn, err := NewTableName(name)
	if err != nil {
		panic(err)
	}
	return tn
}

// String returns the string representation of TableName
func (tn TableName) String() string {
	return tn.value
}

// Equal compares two table names
func (tn TableName) Equal(other TableName) bool {
	return tn.value == other.value
}

// IsZero reports whether the table name was never set.
func (tn TableName) IsZero() bool {
	return tn.value == ""
}

// Quoted returns the name quoted for use in SQL text.
func (tn TableName) Quoted() string {
	return QuoteIdentifier(tn.value)
}

// ColumnType is a declared SQLite column type such as TEXT or VARCHAR(20).
// SQLite accepts any type name and derives the column affinity from it, so
// ColumnType is a string rather than a closed enum. Values that did not come
// from the constants below must pass Validate before reaching DDL.
type ColumnType string

const (
	// TypeNone declares a column without a type (BLOB affinity)
	TypeNone ColumnType = ""
	// TypeText is the SQL TEXT type
	TypeText ColumnType = "TEXT"
	// TypeInteger is the SQL INTEGER type
	TypeInteger ColumnType = "INTEGER"
	// TypeReal is the SQL REAL type
	TypeReal ColumnType = "REAL"
	// TypeBlob is the SQL BLOB type
	TypeBlob ColumnType = "BLOB"
	// TypeNumeric is the SQL NUMERIC type
	TypeNumeric ColumnType = "NUMERIC"
)

// String returns the declared type text.
func (ct ColumnType) String() string {
	return string(ct)
}

// Validate checks the declared type against the type allow-list.
func (ct ColumnType) Validate() error {
	return ValidateColumnType(string(ct))
}

// Column is a column name with its declared type.
type Column struct {
	Name string
	Type ColumnType
}

// NewColumn creates a Column.
func NewColumn(name string, colType ColumnType) Column {
	return Column{Name: name, Type: colType}
}

// Definition returns the column definition used in CREATE TABLE.
func (c Column) Definition() string {
	if c.Type == TypeNone {
		return QuoteIdentifier(c.Name)
	}
	return QuoteIdentifier(c.Name) + " " + c.Type.String()
}

// Schema is an ordered list of columns.
type Schema []Column

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Validate checks every column name and type and rejects duplicates.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: schema has no columns", ErrInvalidIdentifier)
	}
	for _, c := range s {
		if err := ValidateIdentifier(c.Name); err != nil {
			return fmt.Errorf("column %q: %w", c.Name, err)
		}
		if err := c.Type.Validate(); err != nil {
			return fmt.Errorf("column %q type %q: %w", c.Name, c.Type, err)
		}
	}
	return ValidateColumnNames(s.Names())
}

// Equal compares two schemas column by column.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i, c := range s {
		if c != other[i] {
			return false
		}
	}
	return true
}

// Row is one database row with values in table column order.
type Row []any
