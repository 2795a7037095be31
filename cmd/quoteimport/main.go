package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kjannette/quotegraph/internal/config"
	"github.com/kjannette/quotegraph/internal/db"
	"github.com/kjannette/quotegraph/internal/loader"
	"github.com/kjannette/quotegraph/internal/logx"
	"github.com/kjannette/quotegraph/internal/repository"
)

// quoteimport copies quote files from DATA_DIR into the SQL backends so
// that the graph can be served from a database.
func main() {
	target := flag.String("target", "sqlite", "destination: sqlite|postgres")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logx.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store repository.Importer
	switch *target {
	case "sqlite":
		if cfg.SQLitePath == "" {
			fmt.Fprintln(os.Stderr, "SQLITE_PATH is required for -target=sqlite")
			os.Exit(1)
		}
		conn, err := db.CreateSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DB] %v\n", err)
			os.Exit(1)
		}
		store = repository.NewSQLiteQuoteRepo(conn)
	case "postgres":
		fmt.Printf("[DB] Connecting to %s:%d/%s ...\n", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
		pool, err := db.Connect(ctx, cfg.DB.DSN(), cfg.ConnectTimeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
			os.Exit(1)
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			fmt.Fprintf(os.Stderr, "[DB] Schema: %v\n", err)
			os.Exit(1)
		}
		store = repository.NewQuoteRepo(pool)
	default:
		fmt.Fprintf(os.Stderr, "unknown target %q\n", *target)
		os.Exit(1)
	}
	defer store.Close()

	files := loader.NewFileLoader(cfg.DataDir, cfg.DefaultSource, log)
	sources, err := files.Sources(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FILE] %v\n", err)
		os.Exit(1)
	}

	res := repository.ImportAll(ctx, store, files, sources)
	for _, r := range res {
		if r.Err != nil {
			fmt.Printf("[IMPORT] %-12s failed: %v\n", r.Source, r.Err)
			continue
		}
		fmt.Printf("[IMPORT] %-12s %d records\n", r.Source, r.Records)
	}
}
