package repository_test

import (
	"context"
	"testing"

	"github.com/kjannette/quotegraph/internal/db"
	"github.com/kjannette/quotegraph/internal/repository"
	"github.com/kjannette/quotegraph/internal/testutil"
)

func TestQuoteRepo(t *testing.T) {
	pool := testutil.SetupPool(t)
	ctx := context.Background()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	repo := repository.NewQuoteRepo(pool)

	const source = "test_quote_repo"
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM quotes WHERE source = $1`, source)
	})

	if err := repo.Insert(ctx, source, testutil.Rising(3)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.Series(ctx, source)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[2].Close != 102 {
		t.Fatalf("close mismatch: %f", got[2].Close)
	}
	t.Logf("Series(%s): %d rows", source, len(got))

	sources, err := repo.Sources(ctx)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	found := false
	for _, s := range sources {
		found = found || s == source
	}
	if !found {
		t.Fatalf("expected %s in %v", source, sources)
	}
}
