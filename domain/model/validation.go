package model

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxIdentifierLength limits table and column names
const MaxIdentifierLength = 128

// MaxColumnCount defines the maximum number of columns allowed in a table
const MaxColumnCount = 2000

var (
	// identifierPattern is the allow-list for table and column names
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// columnTypePattern is the allow-list for declared column types, e.g.
	// "TEXT", "DOUBLE PRECISION", "VARCHAR(255)", "DECIMAL(10, 2)"
	columnTypePattern = regexp.MustCompile(
		`^[A-Za-z][A-Za-z0-9_]*( [A-Za-z][A-Za-z0-9_]*)*(\(\s*[+-]?\d+\s*(,\s*[+-]?\d+\s*)?\))?$`)
)

// Character validation constants
const (
	firstDigitChar = '0'
	lastDigitChar  = '9'
	firstLowerChar = 'a'
	lastLowerChar  = 'z'
	firstUpperChar = 'A'
	lastUpperChar  = 'Z'
	underscoreChar = '_'
)

// ValidateIdentifier checks that name can be placed in SQL text as a table or
// column name.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidIdentifier, MaxIdentifierLength)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	if strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		return fmt.Errorf("%w: %q uses the reserved sqlite_ prefix", ErrInvalidIdentifier, name)
	}
	return nil
}

// ValidateColumnType checks a declared column type. The empty type is valid.
func ValidateColumnType(colType string) error {
	if colType == "" {
		return nil
	}
	if len(colType) > MaxIdentifierLength || !columnTypePattern.MatchString(colType) {
		return fmt.Errorf("%w: column type %q", ErrInvalidIdentifier, colType)
	}
	return nil
}

// ValidateColumnNames checks for duplicate column names and returns error if found.
// SQLite compares column names case-insensitively, so this does too.
func ValidateColumnNames(columns []string) error {
	if len(columns) > MaxColumnCount {
		return fmt.Errorf("%w: %d columns", ErrTooManyColumns, len(columns))
	}
	columnsSeen := make(map[string]bool, len(columns))
	for _, col := range columns {
		key := strings.ToLower(strings.TrimSpace(col))
		if columnsSeen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, col)
		}
		columnsSeen[key] = true
	}
	return nil
}

// QuoteIdentifier quotes a validated identifier for SQL text.
func QuoteIdentifier(name string) string {
	return "[" + name + "]"
}

// SanitizeIdentifier turns arbitrary text (a file name, a header cell) into
// a name accepted by ValidateIdentifier. fallback is used when nothing usable
// remains.
func SanitizeIdentifier(name, fallback string) string {
	result := strings.TrimSpace(name)
	result = strings.ReplaceAll(result, " ", "_")
	result = strings.ReplaceAll(result, "-", "_")
	result = strings.ReplaceAll(result, ".", "_")

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= firstLowerChar && r <= lastLowerChar) ||
			(r >= firstUpperChar && r <= lastUpperChar) ||
			(r >= firstDigitChar && r <= lastDigitChar) ||
			r == underscoreChar {
			sanitized.WriteRune(r)
		}
	}

	finalResult := sanitized.String()
	if finalResult == "" {
		return fallback
	}

	// Must not start with a digit
	if finalResult[0] >= firstDigitChar && finalResult[0] <= lastDigitChar {
		finalResult = fallback + "_" + finalResult
	}

	if strings.HasPrefix(strings.ToLower(finalResult), "sqlite_") {
		finalResult = fallback + "_" + finalResult
	}

	if len(finalResult) > MaxIdentifierLength {
		finalResult = finalResult[:MaxIdentifierLength]
	}
	return finalResult
}
