// Command tablestore stores lists and tabular files in a SQLite database and
// dumps them back out.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/nao1215/tablestore"
	"github.com/nao1215/tablestore/domain/model"
	"github.com/nao1215/tablestore/internal/config"
)

// CLI represents the complete command structure for the tablestore command
type CLI struct {
	// Global flags, overriding config file and environment
	DB       string `help:"Path to the SQLite database file (default tablestore.db)" name:"db"`
	Table    string `help:"Active table name (default my_table)"`
	Config   string `help:"Path to a YAML config file"`
	LogLevel string `help:"Log level: debug, info, warn or error" name:"log-level"`

	Import   ImportCmd   `cmd:"" help:"Load CSV, TSV, LTSV, XLSX or Parquet files (or directories of them) into tables named after them"`
	SaveList SaveListCmd `cmd:"" name:"save-list" help:"Append values to the active scalar table"`
	List     ListCmd     `cmd:"" help:"Print the values of the active scalar table"`
	Rows     RowsCmd     `cmd:"" help:"Print every row of the active table"`
	Tables   TablesCmd   `cmd:"" help:"List tables"`
	Drop     DropCmd     `cmd:"" help:"Drop the active table"`
	Dump     DumpCmd     `cmd:"" help:"Export the active table, or all tables, to files"`
}

// ImportCmd represents the import command
type ImportCmd struct {
	Paths []string `arg:"" help:"Files or directories to import"`
}

// SaveListCmd represents the save-list command
type SaveListCmd struct {
	Type   string   `help:"Declared element type when the table is created (default inferred)"`
	Values []string `arg:"" help:"Values to store"`
}

// ListCmd represents the list command
type ListCmd struct{}

// RowsCmd represents the rows command
type RowsCmd struct{}

// TablesCmd represents the tables command
type TablesCmd struct{}

// DropCmd represents the drop command
type DropCmd struct{}

// DumpCmd represents the dump command
type DumpCmd struct {
	Dir         string `arg:"" help:"Output directory"`
	Format      string `help:"Output format: csv, tsv, ltsv, xlsx or parquet" default:"csv"`
	Compression string `help:"Output compression: none, gz, xz or zstd" default:"none"`
	All         bool   `help:"Dump every table instead of the active one"`
}

// appContext is bound to every command's Run method
type appContext struct {
	ctx    context.Context
	store  *tablestore.Store
	out    io.Writer
	logger *slog.Logger
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "tablestore:", err)
		os.Exit(1)
	}
}

// run parses args, opens the configured store and runs the selected command
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("tablestore"),
		kong.Description("Store lists and tabular files in a SQLite database."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	applyFlags(cfg, &cli)

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(humanlog.NewHandler(stderr, &humanlog.Options{
		Level: level,
	}))

	return tablestore.WithStore(ctx, cfg.DatabasePath, func(store *tablestore.Store) error {
		return kctx.Run(&appContext{
			ctx:    ctx,
			store:  store,
			out:    stdout,
			logger: logger,
		})
	}, tablestore.WithTableName(cfg.TableName), tablestore.WithLogger(logger))
}

// applyFlags lets explicit global flags override the loaded configuration
func applyFlags(cfg *config.Config, cli *CLI) {
	if cli.DB != "" {
		cfg.DatabasePath = cli.DB
	}
	if cli.Table != "" {
		cfg.TableName = cli.Table
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
}

// Run imports each file into its own table
func (c *ImportCmd) Run(app *appContext) error {
	files, err := tablestore.CollectFiles(c.Paths...)
	if err != nil {
		return err
	}
	for _, path := range files {
		app.logger.Debug("Loading file", "path", path)
		frame, err := tablestore.LoadFile(app.ctx, path)
		if err != nil {
			return err
		}
		table, err := app.store.Import(app.ctx, frame)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "imported %s (%d rows)\n", table.Name(), len(frame.Rows))
	}
	return nil
}

// Run stores the values, typed the way file cells are
func (c *SaveListCmd) Run(app *appContext) error {
	table := app.store.ActiveTable()
	if c.Type != "" {
		if err := table.CreateScalar(app.ctx, tablestore.ColumnType(strings.ToUpper(c.Type))); err != nil {
			return err
		}
	}

	colType := model.InferColumnType(c.Values)
	values := make([]any, len(c.Values))
	for i, v := range c.Values {
		values[i] = model.ConvertValue(v, colType)
	}
	if err := table.SaveScalarList(app.ctx, values); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "saved %d values to %s\n", len(values), table.Name())
	return nil
}

// Run prints one scalar value per line
func (c *ListCmd) Run(app *appContext) error {
	values, err := app.store.GetScalarColumn(app.ctx)
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Fprintln(app.out, formatValue(v))
	}
	return nil
}

// Run prints a tab-separated header and rows
func (c *RowsCmd) Run(app *appContext) error {
	table := app.store.ActiveTable()
	columns, err := table.Columns(app.ctx)
	if err != nil {
		return err
	}
	rows, err := table.Rows(app.ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.out, strings.Join(columns.Names(), "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(app.out, strings.Join(cells, "\t"))
	}
	return nil
}

// Run prints one table name per line
func (c *TablesCmd) Run(app *appContext) error {
	names, err := app.store.ListTables(app.ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(app.out, name)
	}
	return nil
}

// Run drops the active table
func (c *DropCmd) Run(app *appContext) error {
	if err := app.store.DeleteTable(app.ctx); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "dropped %s\n", app.store.ActiveTable().Name())
	return nil
}

// Run writes the dump files and prints their paths
func (c *DumpCmd) Run(app *appContext) error {
	format, err := tablestore.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	compression, err := tablestore.ParseCompression(c.Compression)
	if err != nil {
		return err
	}
	options := tablestore.NewDumpOptions().WithFormat(format).WithCompression(compression)

	var paths []string
	if c.All {
		paths, err = app.store.DumpDatabase(app.ctx, c.Dir, options)
	} else {
		var path string
		path, err = app.store.ActiveTable().Dump(app.ctx, c.Dir, options)
		paths = []string{path}
	}
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintln(app.out, path)
	}
	return nil
}

// formatValue renders a database value for terminal output
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
