// Package corpus reads per-page vacancy snapshots saved by the fetcher.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/maganghub-tools/mh-finder/internal/maganghub"
)

// The aggregate snapshot written by older fetch runs; never a page.
const aggregateFile = "all.json"

// ErrInvalidCorpus indicates the corpus directory does not exist.
var ErrInvalidCorpus = errors.New("corpus directory does not exist")

// Reader enumerates page snapshots in a directory and streams their records.
// Nothing is cached: every iteration re-reads from disk.
type Reader struct {
	dir    string
	logger *zap.Logger
}

func NewReader(dir string, logger *zap.Logger) (*Reader, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCorpus, dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{dir: dir, logger: logger}, nil
}

// Dir returns the corpus directory.
func (r *Reader) Dir() string { return r.dir }

// Pages returns page snapshot paths ordered by ascending page number.
// Filenames whose stem is not a non-negative integer are not pages.
func (r *Reader) Pages() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("listing corpus %s: %w", r.dir, err)
	}

	type page struct {
		num  int
		path string
	}
	pages := make([]page, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == aggregateFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil || num < 0 {
			continue
		}
		pages = append(pages, page{num: num, path: filepath.Join(r.dir, name)})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.path
	}
	return paths, nil
}

// Records streams every vacancy record in page order, then in-page order.
// The sequence is finite and restartable; each call re-reads the files. A
// page that cannot be loaded is skipped with a warning.
func (r *Reader) Records() iter.Seq[maganghub.Record] {
	return func(yield func(maganghub.Record) bool) {
		paths, err := r.Pages()
		if err != nil {
			r.logger.Warn("listing corpus pages", zap.Error(err))
			return
		}
		for _, path := range paths {
			for _, rec := range r.loadPage(path) {
				if !yield(rec) {
					return
				}
			}
		}
	}
}

func (r *Reader) loadPage(path string) []maganghub.Record {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("skipping unreadable page", zap.String("path", path), zap.Error(err))
		return nil
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		r.logger.Warn("skipping invalid page", zap.String("path", path), zap.Error(err))
		return nil
	}

	var items []any
	switch v := payload.(type) {
	case map[string]any:
		list, ok := v["data"].([]any)
		if !ok {
			r.logger.Warn("skipping page without a data list", zap.String("path", path))
			return nil
		}
		items = list
	case []any:
		// A top-level array is accepted as a degenerate page.
		items = v
	default:
		r.logger.Warn("skipping page with unexpected shape", zap.String("path", path))
		return nil
	}

	records := make([]maganghub.Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, maganghub.Record(m))
		}
	}
	return records
}

// ProvinceDirs lists the subdirectories of base sorted by name, used when a
// scan should cover every saved province.
func ProvinceDirs(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCorpus, base)
	}
	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(base, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
