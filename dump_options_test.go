package tablestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		options := NewDumpOptions()
		assert.Equal(t, FormatCSV, options.Format)
		assert.Equal(t, CompressionNone, options.Compression)
		assert.Equal(t, ".csv", options.FileExtension())
	})

	t.Run("chained options do not modify the original", func(t *testing.T) {
		t.Parallel()
		base := NewDumpOptions()
		options := base.WithFormat(FormatParquet).WithCompression(CompressionZSTD)
		assert.Equal(t, ".parquet.zst", options.FileExtension())
		assert.Equal(t, ".csv", base.FileExtension())
	})

	t.Run("file extensions", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			format      Format
			compression Compression
			want        string
		}{
			{FormatTSV, CompressionGZ, ".tsv.gz"},
			{FormatLTSV, CompressionXZ, ".ltsv.xz"},
			{FormatXLSX, CompressionNone, ".xlsx"},
			{FormatCSV, CompressionBZ2, ".csv.bz2"},
		}
		for _, tt := range tests {
			options := NewDumpOptions().WithFormat(tt.format).WithCompression(tt.compression)
			assert.Equal(t, tt.want, options.FileExtension())
		}
	})
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "csv", want: FormatCSV},
		{input: ".TSV", want: FormatTSV},
		{input: " ltsv ", want: FormatLTSV},
		{input: "parquet", want: FormatParquet},
		{input: "xlsx", want: FormatXLSX},
		{input: "json", want: FormatUnsupported, wantErr: true},
		{input: "", want: FormatUnsupported, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.input)
		} else {
			require.NoError(t, err, tt.input)
		}
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestParseCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Compression
		wantErr bool
	}{
		{input: "", want: CompressionNone},
		{input: "none", want: CompressionNone},
		{input: "gzip", want: CompressionGZ},
		{input: ".gz", want: CompressionGZ},
		{input: "bz2", want: CompressionBZ2},
		{input: "XZ", want: CompressionXZ},
		{input: "zst", want: CompressionZSTD},
		{input: "zstd", want: CompressionZSTD},
		{input: "lz4", want: CompressionNone, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.input)
		} else {
			require.NoError(t, err, tt.input)
		}
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestDetectFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path            string
		wantFormat      Format
		wantCompression Compression
		wantTable       string
	}{
		{"data/users.csv", FormatCSV, CompressionNone, "users"},
		{"logs/Access.LTSV.GZ", FormatLTSV, CompressionGZ, "Access"},
		{"report.xlsx.zst", FormatXLSX, CompressionZSTD, "report"},
		{"metrics.parquet.xz", FormatParquet, CompressionXZ, "metrics"},
		{"archive.tsv.bz2", FormatTSV, CompressionBZ2, "archive"},
		{"my-data.v2.csv", FormatCSV, CompressionNone, "my_data_v2"},
		{"notes.txt", FormatUnsupported, CompressionNone, "notes"},
	}
	for _, tt := range tests {
		format, compression := DetectFile(tt.path)
		assert.Equal(t, tt.wantFormat, format, tt.path)
		assert.Equal(t, tt.wantCompression, compression, tt.path)
		assert.Equal(t, tt.wantTable, tableNameFromPath(tt.path), tt.path)
	}
}
