package tablestore

import (
	"path/filepath"
	"strings"
)

// File extensions
const (
	extCSV     = ".csv"
	extTSV     = ".tsv"
	extLTSV    = ".ltsv"
	extParquet = ".parquet"
	extXLSX    = ".xlsx"
	extGZ      = ".gz"
	extBZ2     = ".bz2"
	extXZ      = ".xz"
	extZSTD    = ".zst"
)

// Format is a tabular file format used for loading and dumping tables.
type Format int

const (
	// FormatCSV represents comma-separated values
	FormatCSV Format = iota
	// FormatTSV represents tab-separated values
	FormatTSV
	// FormatLTSV represents labeled tab-separated values
	FormatLTSV
	// FormatParquet represents Apache Parquet
	FormatParquet
	// FormatXLSX represents Excel XLSX (first sheet only)
	FormatXLSX
	// FormatUnsupported represents anything else
	FormatUnsupported
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatLTSV:
		return "ltsv"
	case FormatParquet:
		return "parquet"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unsupported"
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return extCSV
	case FormatTSV:
		return extTSV
	case FormatLTSV:
		return extLTSV
	case FormatParquet:
		return extParquet
	case FormatXLSX:
		return extXLSX
	default:
		return ""
	}
}

// ParseFormat parses a format name such as "csv" or ".tsv".
func ParseFormat(name string) (Format, error) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	for _, f := range []Format{FormatCSV, FormatTSV, FormatLTSV, FormatParquet, FormatXLSX} {
		if f.String() == name {
			return f, nil
		}
	}
	return FormatUnsupported, NewErrorContext("parse format").WithDetails(name).Error(ErrUnsupportedFormat)
}

// Compression represents the compression applied to a file
type Compression int

const (
	// CompressionNone represents no compression
	CompressionNone Compression = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression (reading only)
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of Compression
func (c Compression) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c Compression) Extension() string {
	switch c {
	case CompressionGZ:
		return extGZ
	case CompressionBZ2:
		return extBZ2
	case CompressionXZ:
		return extXZ
	case CompressionZSTD:
		return extZSTD
	default:
		return ""
	}
}

// ParseCompression parses a compression name such as "gz", "zstd" or "none".
func ParseCompression(name string) (Compression, error) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "gz", "gzip":
		return CompressionGZ, nil
	case "bz2", "bzip2":
		return CompressionBZ2, nil
	case "xz":
		return CompressionXZ, nil
	case "zst", "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, NewErrorContext("parse compression").WithDetails(name).Error(ErrUnsupportedFormat)
	}
}

// DetectFile returns the format and compression of path from its extensions,
// e.g. "scores.csv.gz" is CSV compressed with gzip.
func DetectFile(path string) (Format, Compression) {
	base := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	for _, c := range []Compression{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD} {
		if strings.HasSuffix(base, c.Extension()) {
			compression = c
			base = strings.TrimSuffix(base, c.Extension())
			break
		}
	}

	format, err := ParseFormat(filepath.Ext(base))
	if err != nil {
		return FormatUnsupported, compression
	}
	return format, compression
}

// tableNameFromPath derives a table name from a file path: the base name
// without compression and format extensions, sanitised to an identifier.
func tableNameFromPath(path string) string {
	fileName := filepath.Base(path)
	lower := strings.ToLower(fileName)
	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(lower, ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	fileName = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return sanitizeName(fileName, "table")
}

// DumpOptions configures how tables are exported to files.
//
// Example:
//
//	options := NewDumpOptions().
//		WithFormat(FormatTSV).
//		WithCompression(CompressionGZ)
//
//	paths, err := store.DumpDatabase(ctx, "./output", options)
type DumpOptions struct {
	// Format specifies the output file format
	Format Format
	// Compression specifies the compression type
	Compression Compression
}

// NewDumpOptions creates default export options (CSV, no compression).
func NewDumpOptions() DumpOptions {
	return DumpOptions{
		Format:      FormatCSV,
		Compression: CompressionNone,
	}
}

// WithFormat sets the output file format.
func (o DumpOptions) WithFormat(format Format) DumpOptions {
	o.Format = format
	return o
}

// WithCompression adds compression to output files.
//
// Options:
//   - CompressionNone: No compression (default)
//   - CompressionGZ: Gzip compression (.gz)
//   - CompressionXZ: XZ compression (.xz)
//   - CompressionZSTD: Zstandard compression (.zst)
//
// CompressionBZ2 is accepted for reading only.
func (o DumpOptions) WithCompression(compression Compression) DumpOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o DumpOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}
