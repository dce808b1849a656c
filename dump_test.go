package tablestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// seedSales creates a "sales" table with mixed column types
func seedSales(t *testing.T, store *Store) *Table {
	t.Helper()
	ctx := context.Background()

	table, err := store.CreateTable(ctx, "sales", Schema{
		{Name: "ID", Type: TypeInteger},
		{Name: "ITEM", Type: TypeText},
		{Name: "PRICE", Type: TypeReal},
	})
	require.NoError(t, err)
	require.NoError(t, table.InsertRows(ctx, []Row{
		{int64(1), "apple", 1.25},
		{int64(2), "banana, ripe", nil},
		{int64(3), "cherry", 9.5},
	}))
	return table
}

func TestTable_Dump(t *testing.T) {
	t.Parallel()

	t.Run("default CSV", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)
		table := seedSales(t, store)

		dir := filepath.Join(t.TempDir(), "out")
		path, err := table.Dump(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "sales.csv"), path)

		content, err := os.ReadFile(path) //nolint:gosec // test file
		require.NoError(t, err)
		assert.Equal(t, "ID,ITEM,PRICE\n1,apple,1.25\n2,\"banana, ripe\",\n3,cherry,9.5\n", string(content))
	})

	t.Run("LTSV lines", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)
		table := seedSales(t, store)

		path, err := table.Dump(ctx, t.TempDir(), NewDumpOptions().WithFormat(FormatLTSV))
		require.NoError(t, err)

		content, err := os.ReadFile(path) //nolint:gosec // test file
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "ID:1\tITEM:apple\tPRICE:1.25", lines[0])
	})

	t.Run("XLSX sheet is named after the table", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)
		table := seedSales(t, store)

		path, err := table.Dump(ctx, t.TempDir(), NewDumpOptions().WithFormat(FormatXLSX))
		require.NoError(t, err)

		xlsxFile, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer xlsxFile.Close()

		assert.Equal(t, []string{"sales"}, xlsxFile.GetSheetList())
		rows, err := xlsxFile.GetRows("sales")
		require.NoError(t, err)
		assert.Equal(t, []string{"ID", "ITEM", "PRICE"}, rows[0])
		assert.Equal(t, []string{"3", "cherry", "9.5"}, rows[3])
	})

	t.Run("bzip2 output is unsupported", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)
		table := seedSales(t, store)

		_, err := table.Dump(ctx, t.TempDir(), NewDumpOptions().WithCompression(CompressionBZ2))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)
		table := seedSales(t, store)

		_, err := table.Dump(ctx, t.TempDir(), NewDumpOptions().WithFormat(FormatUnsupported))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing table", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)

		table, err := store.Table("absent")
		require.NoError(t, err)
		_, err = table.Dump(ctx, t.TempDir())
		assert.ErrorIs(t, err, ErrEmptyData)
	})
}

func TestDumpLoadRoundTrip(t *testing.T) {
	t.Parallel()

	formats := []Format{FormatCSV, FormatTSV, FormatLTSV, FormatXLSX, FormatParquet}
	compressions := []Compression{CompressionNone, CompressionGZ, CompressionXZ, CompressionZSTD}

	for _, format := range formats {
		for _, compression := range compressions {
			t.Run(format.String()+"_"+compression.String(), func(t *testing.T) {
				t.Parallel()
				ctx := context.Background()
				store := newTestStore(t)
				table := seedSales(t, store)

				options := NewDumpOptions().WithFormat(format).WithCompression(compression)
				path, err := table.Dump(ctx, t.TempDir(), options)
				require.NoError(t, err)
				assert.True(t, strings.HasSuffix(path, "sales"+options.FileExtension()))

				frame, err := LoadFile(ctx, path)
				require.NoError(t, err)
				assert.Equal(t, "sales", frame.Name)
				assert.Equal(t, []string{"ID", "ITEM", "PRICE"}, frame.Schema.Names())

				want := []Row{
					{int64(1), "apple", 1.25},
					{int64(2), "banana, ripe", nil},
					{int64(3), "cherry", 9.5},
				}
				assert.Equal(t, want, frame.Rows)

				// the loaded frame imports into a second store unchanged
				other := newTestStore(t)
				imported, err := other.Import(ctx, frame)
				require.NoError(t, err)
				rows, err := imported.Rows(ctx)
				require.NoError(t, err)
				assert.Equal(t, want, rows)
			})
		}
	}
}

func TestStore_DumpDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	seedSales(t, store)
	require.NoError(t, store.SaveScalarList(ctx, []any{0.5, 1.5}))

	dir := t.TempDir()
	paths, err := store.DumpDatabase(ctx, dir, NewDumpOptions().WithFormat(FormatTSV).WithCompression(CompressionGZ))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "my_table.tsv.gz"),
		filepath.Join(dir, "sales.tsv.gz"),
	}, paths)

	frame, err := LoadFile(ctx, paths[0])
	require.NoError(t, err)
	assert.Equal(t, []Row{{int64(1), 0.5}, {int64(2), 1.5}}, frame.Rows)
}
