package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kjannette/quotegraph/internal/logx"
	"github.com/kjannette/quotegraph/internal/models"
	"go.uber.org/zap"
)

// candidate file names for a source, in lookup order
var fileSuffixes = []string{"", ".csv", ".txt", ".parquet"}

// LoadReport describes one file load.
type LoadReport struct {
	Source     string
	Path       string
	Series     models.Series
	Skipped    []*LineError
	Duplicates int
}

// FileLoader reads sources from <dir>/<source>[.csv|.txt|.parquet].
type FileLoader struct {
	dir string
	err error
	log *zap.Logger
}

// NewFileLoader checks that the default source file can be opened; if not
// the loader is failed with ErrFileNotFound.
func NewFileLoader(dir, defaultSource string, log *zap.Logger) *FileLoader {
	l := &FileLoader{dir: dir, log: logx.OrNop(log).Named("loader")}

	path, err := l.resolve(defaultSource)
	if err != nil {
		l.err = fmt.Errorf("%w: %s in %s: %w", ErrFileNotFound, defaultSource, dir, err)
		return l
	}
	f, err := os.Open(path)
	if err != nil {
		l.err = fmt.Errorf("%w: %w", ErrFileNotFound, err)
		return l
	}
	f.Close()

	l.log.Info("using files", zap.String("dir", dir), zap.String("default", path))
	return l
}

func (l *FileLoader) Name() string { return "file" }
func (l *FileLoader) Failed() bool { return l.err != nil }
func (l *FileLoader) Err() error   { return l.err }
func (l *FileLoader) Close() error { return nil }

func (l *FileLoader) Load(ctx context.Context, source string) (models.Series, error) {
	rep, err := l.LoadWithReport(ctx, source)
	if err != nil {
		return nil, err
	}
	return rep.Series, nil
}

// LoadWithReport loads a source and reports skipped lines and duplicates.
func (l *FileLoader) LoadWithReport(ctx context.Context, source string) (*LoadReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if st, err := os.Stat(l.dir); err != nil || !st.IsDir() {
		l.err = fmt.Errorf("%w: data dir %s unavailable", ErrFileNotFound, l.dir)
		return nil, l.err
	}
	l.err = nil

	path, err := l.resolve(source)
	if err != nil {
		return nil, err
	}

	var (
		recs    []models.Record
		skipped []*LineError
	)
	if strings.HasSuffix(path, ".parquet") {
		recs, skipped, err = readParquet(path)
	} else {
		recs, skipped, err = readText(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for _, le := range skipped {
		l.log.Warn("skipping malformed line",
			zap.String("source", source), zap.Int("line", le.Line), zap.Error(le.Err))
	}
	if len(skipped) > 0 {
		l.log.Warn("malformed lines skipped", zap.String("source", source), zap.Int("count", len(skipped)))
	}

	series, dropped := models.Normalize(recs)
	if dropped > 0 {
		l.log.Warn("dropped duplicate timestamps", zap.String("source", source), zap.Int("count", dropped))
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %w (%d malformed lines)", source, ErrEmptySeries, len(skipped))
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, source, err)
	}

	l.log.Debug("loaded", zap.String("backend", "file"), zap.String("source", source), zap.Int("records", len(series)))
	return &LoadReport{
		Source:     source,
		Path:       path,
		Series:     series,
		Skipped:    skipped,
		Duplicates: dropped,
	}, nil
}

// Sources lists the source names present in the data directory.
func (l *FileLoader) Sources(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := e.Name()
		for _, suf := range fileSuffixes[1:] {
			name = strings.TrimSuffix(name, suf)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (l *FileLoader) resolve(source string) (string, error) {
	if source == "" || source == "." || source == ".." ||
		strings.ContainsAny(source, `/\`) || strings.Contains(source, "..") {
		return "", fmt.Errorf("%w: %q", ErrSourceNotFound, source)
	}
	for _, suf := range fileSuffixes {
		path := filepath.Join(l.dir, source+suf)
		st, err := os.Stat(path)
		if err == nil {
			if st.Mode().IsRegular() {
				return path, nil
			}
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSourceNotFound, source)
}

func readText(path string) ([]models.Record, []*LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ParseQuotes(f)
}
