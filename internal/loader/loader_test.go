package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kjannette/quotegraph/internal/config"
	"github.com/kjannette/quotegraph/internal/db"
	"github.com/kjannette/quotegraph/internal/testutil"
)

func TestOpen_FallsBackToFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteQuoteFile(t, dir, "vw", testutil.Rising(10))

	var tried []string
	factories := []Factory{
		func(ctx context.Context) Loader {
			tried = append(tried, "postgres")
			cfg := config.DBConfig{Host: "127.0.0.1", Port: 1, Name: "boersendaten",
				User: "postgres", Password: "dp", DefaultSource: "vw"}
			return NewPostgresLoader(ctx, cfg, time.Second, nil)
		},
		func(ctx context.Context) Loader {
			tried = append(tried, "sqlite")
			return NewSQLiteLoader(ctx, filepath.Join(dir, "missing.db"), "vw", nil)
		},
		func(ctx context.Context) Loader {
			tried = append(tried, "file")
			return NewFileLoader(dir, "vw", nil)
		},
	}

	l, err := Open(context.Background(), nil, factories...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if l.Name() != "file" || l.Failed() {
		t.Fatalf("expected healthy file loader, got %s (failed=%v)", l.Name(), l.Failed())
	}
	if len(tried) != 3 {
		t.Fatalf("expected all three factories tried, got %v", tried)
	}

	s, err := l.Load(context.Background(), "vw")
	if err != nil || len(s) != 10 {
		t.Fatalf("Load after fallback: %d records, err %v", len(s), err)
	}
}

func TestOpen_StopsAtFirstHealthy(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteQuoteFile(t, dir, "vw", testutil.Rising(1))

	calls := 0
	l, err := Open(context.Background(), nil,
		nil,
		func(context.Context) Loader { calls++; return NewFileLoader(dir, "vw", nil) },
		func(context.Context) Loader { calls++; return NewFileLoader(dir, "vw", nil) },
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if l.Failed() {
		t.Fatal("expected healthy loader")
	}
	if calls != 1 {
		t.Fatalf("expected 1 factory call, got %d", calls)
	}
}

func TestOpen_NoData(t *testing.T) {
	_, err := Open(context.Background(), nil,
		func(context.Context) Loader { return NewFileLoader(t.TempDir(), "vw", nil) },
	)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	if _, err := Open(context.Background(), nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for empty chain, got %v", err)
	}
}

func TestOpen_SkipsDatabasesWithoutDefaultSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	if err := os.Mkdir(data, 0o755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteQuoteFile(t, data, "vw.csv", testutil.Rising(6))

	empty := filepath.Join(dir, "empty.db")
	conn, err := db.CreateSQLite(ctx, empty)
	if err != nil {
		t.Fatalf("CreateSQLite: %v", err)
	}
	conn.Close()

	bare := filepath.Join(dir, "bare.db")
	if err := os.WriteFile(bare, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := Open(ctx, nil,
		func(ctx context.Context) Loader { return NewSQLiteLoader(ctx, empty, "vw", nil) },
		func(ctx context.Context) Loader { return NewSQLiteLoader(ctx, bare, "vw", nil) },
		func(ctx context.Context) Loader { return NewFileLoader(data, "vw", nil) },
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if l.Name() != "file" {
		t.Fatalf("expected file backend, got %s", l.Name())
	}
	s, err := l.Load(ctx, "vw")
	if err != nil || len(s) != 6 {
		t.Fatalf("Load: %d records, err %v", len(s), err)
	}
}
