package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.000"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "01/02/2006"},
	},
	// Time only
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"15:04:05", "15:04:05.000", "3:04:05"},
	},
}

// IsDatetime checks if a string value represents a datetime
func IsDatetime(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	for _, dp := range datetimePatterns {
		if dp.pattern.MatchString(value) {
			for _, format := range dp.formats {
				if _, err := time.Parse(format, value); err == nil {
					return true
				}
			}
		}
	}

	return false
}

// InferColumnType infers the column type of textual cell values, as read from
// CSV, TSV, LTSV or XLSX. Datetimes are stored as TEXT in ISO8601 form.
func InferColumnType(values []string) ColumnType {
	if len(values) == 0 {
		return TypeText
	}

	hasReal := false
	hasInteger := false

	for _, value := range values {
		// Skip empty values for type inference
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		// Datetimes win over numbers: "2024" alone is a number, "2024-01-02" is text
		if IsDatetime(value) {
			return TypeText
		}

		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}

		if _, err := strconv.ParseFloat(value, 64); err == nil {
			hasReal = true
			continue
		}

		// If any value is text, the whole column is text
		return TypeText
	}

	// Priority: TEXT > REAL > INTEGER
	if hasReal {
		return TypeReal
	}
	if hasInteger {
		return TypeInteger
	}
	return TypeText
}

// InferSchema infers one column per header entry from the column's values.
func InferSchema(header []string, rows [][]string) Schema {
	schema := make(Schema, len(header))
	for i, name := range header {
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			if i < len(row) {
				values = append(values, row[i])
			}
		}
		schema[i] = NewColumn(name, InferColumnType(values))
	}
	return schema
}

// ConvertValue converts a textual cell to the Go value stored for colType.
// Empty cells become nil. Values that do not parse are kept as text.
func ConvertValue(value string, colType ColumnType) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}

	switch colType {
	case TypeInteger:
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return i
		}
	case TypeReal:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	}
	return value
}

// ConvertRow converts a row of textual cells according to schema. Short rows
// are padded with nil.
func ConvertRow(cells []string, schema Schema) []any {
	values := make([]any, len(schema))
	for i, col := range schema {
		if i < len(cells) {
			values[i] = ConvertValue(cells[i], col.Type)
		}
	}
	return values
}
