package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// ReservedFieldPrefix marks record fields that never become columns.
const ReservedFieldPrefix = "__"

// structTag is the struct tag consulted by RecordFromStruct.
const structTag = "db"

// Field is one named value of a record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered list of named values. It is the unit of schema
// inference (CreateTableForRecord) and of batch insertion.
type Record []Field

// NewRecord zips names and values into a Record.
func NewRecord(names []string, values []any) (Record, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("record has %d names but %d values", len(names), len(values))
	}
	r := make(Record, len(names))
	for i, name := range names {
		r[i] = Field{Name: name, Value: values[i]}
	}
	return r, nil
}

// RecordFromStruct builds a Record from the exported fields of a struct (or
// pointer to struct), in declaration order. A `db:"name"` tag renames a
// field and `db:"-"` skips it.
func RecordFromStruct(v any) (Record, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.New("record source is a nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record source must be a struct, got %s", rv.Kind())
	}

	rt := rv.Type()
	r := make(Record, 0, rt.NumField())
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup(structTag); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		r = append(r, Field{Name: name, Value: rv.Field(i).Interface()})
	}
	return r, nil
}

// Names returns every field name, including ones that are not columns.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Columns returns the fields that map to table columns: function values and
// names starting with ReservedFieldPrefix are left out.
func (r Record) Columns() Record {
	cols := make(Record, 0, len(r))
	for _, f := range r {
		if strings.HasPrefix(f.Name, ReservedFieldPrefix) || isCallable(f.Value) {
			continue
		}
		cols = append(cols, f)
	}
	return cols
}

// Values returns the column values in column order.
func (r Record) Values() []any {
	cols := r.Columns()
	values := make([]any, len(cols))
	for i, f := range cols {
		values[i] = f.Value
	}
	return values
}

// ColumnNames returns the upper-cased column names the record maps to.
func (r Record) ColumnNames() []string {
	cols := r.Columns()
	names := make([]string, len(cols))
	for i, f := range cols {
		names[i] = strings.ToUpper(f.Name)
	}
	return names
}

// Schema derives the table schema for the record: upper-cased column names
// with types taken from the runtime type of each value.
func (r Record) Schema() (Schema, error) {
	cols := r.Columns()
	schema := make(Schema, 0, len(cols))
	for _, f := range cols {
		colType, err := ColumnTypeOf(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		schema = append(schema, NewColumn(strings.ToUpper(f.Name), colType))
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// SameShape reports whether other maps to the same columns in the same order.
func (r Record) SameShape(other Record) bool {
	a, b := r.ColumnNames(), other.ColumnNames()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// runtimeTypeNames maps Go runtime type names to column types.
var runtimeTypeNames = map[string]ColumnType{
	"string":  TypeText,
	"int64":   TypeInteger,
	"float64": TypeReal,
}

// ColumnTypeOf maps the runtime type of v to a column type. string, int64
// and float64 map to TEXT, INTEGER and REAL; the other integer, float,
// []byte and time.Time values map to their natural SQLite type; nil has no
// declared type. Any other type name is passed through upper-cased when the
// result is an acceptable type name.
func ColumnTypeOf(v any) (ColumnType, error) {
	if v == nil {
		return TypeNone, nil
	}

	rt := reflect.TypeOf(v)
	if colType, ok := runtimeTypeNames[rt.String()]; ok {
		return colType, nil
	}

	switch v.(type) {
	case []byte:
		return TypeBlob, nil
	case time.Time:
		return TypeText, nil
	}

	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger, nil
	case reflect.Float32, reflect.Float64:
		return TypeReal, nil
	case reflect.String:
		return TypeText, nil
	}

	name := rt.Name()
	if name == "" {
		name = rt.String()
	}
	colType := ColumnType(strings.ToUpper(name))
	if err := colType.Validate(); err != nil {
		return TypeNone, fmt.Errorf("unsupported value type %s: %w", rt, err)
	}
	return colType, nil
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}
