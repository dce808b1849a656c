package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferColumnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []string
		expected ColumnType
	}{
		{
			name:     "all integers",
			values:   []string{"123", "456", "789"},
			expected: TypeInteger,
		},
		{
			name:     "mixed integers and floats",
			values:   []string{"123", "45.6", "789"},
			expected: TypeReal,
		},
		{
			name:     "mixed numbers and text",
			values:   []string{"123", "hello", "789"},
			expected: TypeText,
		},
		{
			name:     "empty values",
			values:   []string{"", "", ""},
			expected: TypeText,
		},
		{
			name:     "no values",
			values:   nil,
			expected: TypeText,
		},
		{
			name:     "integers with empty values",
			values:   []string{"123", "", "789"},
			expected: TypeInteger,
		},
		{
			name:     "negative floats",
			values:   []string{"-12.3", "45.6", "-78.9"},
			expected: TypeReal,
		},
		{
			name:     "scientific notation",
			values:   []string{"1e10", "2.5e-3", "3.14e2"},
			expected: TypeReal,
		},
		{
			name:     "ISO8601 dates are stored as text",
			values:   []string{"2023-01-15", "2023-02-20"},
			expected: TypeText,
		},
		{
			name:     "US date format",
			values:   []string{"1/15/2023", "2/20/2023"},
			expected: TypeText,
		},
		{
			name:     "time only",
			values:   []string{"10:30:00", "14:45:30"},
			expected: TypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, InferColumnType(tt.values))
		})
	}
}

func TestIsDatetime(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDatetime("2023-01-15T10:30:00Z"))
	assert.True(t, IsDatetime("2023-01-15 10:30:00"))
	assert.False(t, IsDatetime("2023-13-45"))
	assert.False(t, IsDatetime("hello"))
	assert.False(t, IsDatetime("  "))
}

func TestInferSchema(t *testing.T) {
	t.Parallel()

	header := []string{"id", "name", "score", "joined"}
	rows := [][]string{
		{"1", "Alice", "9.5", "2023-01-15"},
		{"2", "Bob", "7", "2023-02-20"},
		{"3", "Carol"},
	}

	got := InferSchema(header, rows)
	want := Schema{
		{Name: "id", Type: TypeInteger},
		{Name: "name", Type: TypeText},
		{Name: "score", Type: TypeReal},
		{Name: "joined", Type: TypeText},
	}
	assert.Equal(t, want, got)
}

func TestConvertRow(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "id", Type: TypeInteger},
		{Name: "score", Type: TypeReal},
		{Name: "name", Type: TypeText},
		{Name: "extra", Type: TypeText},
	}

	got := ConvertRow([]string{"42", "1.5", "Alice"}, schema)
	assert.Equal(t, []any{int64(42), 1.5, "Alice", nil}, got)

	got = ConvertRow([]string{"", "n/a", " spaced "}, schema)
	assert.Equal(t, []any{nil, "n/a", " spaced ", nil}, got)
}
