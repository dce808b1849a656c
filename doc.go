// Package tablestore persists in-memory tabular data in a local SQLite
// database file.
//
// A Store owns one connection and an active table name (initially
// "my_table"). Two kinds of data are stored:
//
//   - scalar lists, in a table with columns (id INTEGER PRIMARY KEY
//     AUTOINCREMENT, list_element <type>), where the element type is
//     inferred from the first element
//   - record batches, where each record's fields become upper-cased columns
//     typed from the first record's Go values
//
// Every table name, column name and declared type is checked against an
// allow-list before it reaches SQL text; anything else fails with
// ErrInvalidIdentifier.
//
// # Features
//
//   - Scalar list and record batch storage, one transaction per batch
//   - Explicit Table handles alongside the active-table API
//   - Scoped stores with WithStore
//   - Loading CSV, TSV, LTSV, Parquet and Excel (XLSX) files, optionally
//     compressed with gzip, bzip2, xz or zstandard
//   - Dumping tables to the same formats with gzip, xz or zstandard
//
// # Basic Usage
//
//	store, err := tablestore.Open("points.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.SaveScalarList(ctx, []any{1, 2, 3}); err != nil {
//	    log.Fatal(err)
//	}
//	values, err := store.GetScalarColumn(ctx) // [1 2 3] as int64
//
// # Records
//
//	type point struct {
//	    X int64
//	    Y float64
//	}
//
//	records := make([]tablestore.Record, 0, len(points))
//	for _, p := range points {
//	    r, err := tablestore.RecordFromStruct(p)
//	    if err != nil {
//	        return err
//	    }
//	    records = append(records, r)
//	}
//	if err := store.SetActiveTable("points"); err != nil {
//	    return err
//	}
//	if err := store.SaveRecordBatch(ctx, records); err != nil { // columns X INTEGER, Y REAL
//	    return err
//	}
//
// # Scoped Use
//
//	err := tablestore.WithStore(ctx, "points.db", func(s *tablestore.Store) error {
//	    t, err := s.CreateTable(ctx, "events", tablestore.Schema{
//	        {Name: "NAME", Type: tablestore.TypeText},
//	        {Name: "AT", Type: tablestore.TypeText},
//	    })
//	    if err != nil {
//	        return err
//	    }
//	    return t.InsertRows(ctx, []tablestore.Row{{"start", "2024-01-01T00:00:00Z"}})
//	})
//
// # Files
//
//	frame, err := tablestore.LoadFile(ctx, "sales.csv.gz")
//	if err != nil {
//	    return err
//	}
//	table, err := store.Import(ctx, frame)
//	if err != nil {
//	    return err
//	}
//	path, err := table.Dump(ctx, "out", tablestore.NewDumpOptions().
//	    WithFormat(tablestore.FormatParquet).
//	    WithCompression(tablestore.CompressionZSTD))
//
// # Concurrency
//
// Calls are synchronous. A Store may be shared between goroutines; it
// guards its own state, and database work is serialised on the single
// connection.
package tablestore
