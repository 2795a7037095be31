package report

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kjannette/quotegraph/internal/controller"
	"github.com/kjannette/quotegraph/internal/loader"
	"github.com/kjannette/quotegraph/internal/testutil"
)

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteQuoteFile(t, dir, "vw.csv", testutil.Rising(11), "garbage line")
	testutil.WriteQuoteFile(t, dir, "goldman.csv", testutil.Rising(3))

	l := loader.NewFileLoader(dir, "vw", nil)
	if l.Failed() {
		t.Fatalf("loader failed: %v", l.Err())
	}

	var buf bytes.Buffer
	rows := WriteSummary(context.Background(), &buf, l, []string{"vw", "goldman", "cac40"})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	vw := rows[0]
	if vw.Err != nil || vw.Records != 11 || vw.Skipped != 1 {
		t.Fatalf("unexpected vw row %+v", vw)
	}
	if vw.Min != 99 || vw.Max != 111 || vw.LastClose != 110 {
		t.Fatalf("unexpected vw values %+v", vw)
	}
	if math.Abs(vw.Change-10) > 1e-9 {
		t.Fatalf("expected +10%% change, got %v", vw.Change)
	}
	if !errors.Is(rows[2].Err, loader.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound for cac40, got %v", rows[2].Err)
	}

	out := buf.String()
	for _, want := range []string{"vw", "goldman", "cac40", "2017-01-01", "110.00",
		controller.UserMessage(loader.ErrSourceNotFound)} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
