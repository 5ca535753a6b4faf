// gridcsv is a headless exporter: it loads a table snapshot, applies
// search/filter/sort flags through the same pipeline the grid UI
// uses, and writes the CSV to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/crmkit/datagrid"
	"github.com/crmkit/datagrid/database/recordsource"
)

type filterFlags map[string]string

func (f filterFlags) String() string { return fmt.Sprintf("%v", map[string]string(f)) }

func (f filterFlags) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return fmt.Errorf("filter must be key=pattern, got %q", v)
	}
	f[parts[0]] = parts[1]
	return nil
}

func main() {
	_ = godotenv.Load()

	catalogPath := flag.String("catalog", "", "path to the grid catalog (required)")
	lang := flag.String("lang", "en", "label language")
	search := flag.String("search", "", "free-text search term")
	sortFlag := flag.String("sort", "", "sort as field:asc or field:desc")
	from := flag.String("from", "", "date range start (YYYY-MM-DD)")
	to := flag.String("to", "", "date range end (YYYY-MM-DD)")
	title := flag.String("title", "export", "export title used for the filename")
	filters := filterFlags{}
	flag.Var(filters, "filter", "column filter as key=pattern (repeatable)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *catalogPath == "" {
		fmt.Fprintln(os.Stderr, "gridcsv: -catalog is required")
		flag.Usage()
		os.Exit(1)
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable search_path=%s,public",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"), os.Getenv("DB_SCHEMA"))

	src, err := recordsource.Open(connStr, 4, time.Minute, logger)
	if err != nil {
		logger.Error("failed to open record source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	catData, err := os.ReadFile(*catalogPath)
	if err != nil {
		logger.Error("failed to read catalog", "error", err)
		os.Exit(1)
	}

	table, cols, _, err := datagrid.ColumnsFromCatalog(catData, *lang)
	if err != nil {
		logger.Error("failed to build columns", "error", err)
		os.Exit(1)
	}

	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.Key
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	snap, err := src.Load(ctx, table, fields)
	cancel()
	if err != nil {
		logger.Error("failed to load snapshot", "table", table, "error", err)
		os.Exit(1)
	}

	grid, err := datagrid.GridFromCatalog(catData, *lang, snap.Records)
	if err != nil {
		logger.Error("failed to build grid", "error", err)
		os.Exit(1)
	}

	if *search != "" {
		grid.SetSearch(*search)
	}
	for key, pattern := range filters {
		grid.SetColumnFilter(key, pattern)
	}
	if t, err := time.ParseInLocation("2006-01-02", *from, time.Local); err == nil {
		grid.SetDateRange(datagrid.RangeStart, t)
	}
	if t, err := time.ParseInLocation("2006-01-02", *to, time.Local); err == nil {
		grid.SetDateRange(datagrid.RangeEnd, t)
	}
	if *sortFlag != "" {
		parts := strings.SplitN(*sortFlag, ":", 2)
		dir := datagrid.SortAsc
		if len(parts) == 2 && strings.EqualFold(parts[1], "desc") {
			dir = datagrid.SortDesc
		}
		grid.SetSort(parts[0], dir)
	}

	name, data := grid.Export(*title)
	if data == nil {
		logger.Error("export is disabled")
		os.Exit(1)
	}
	logger.Info("exported", "file", name, "rows", len(snap.Records), "bytes", len(data))
	os.Stdout.Write(data)
}
