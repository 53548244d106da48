package indexer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"chisel/internal/cparse"
	"chisel/internal/store"
)

// Stats reports build results. Files counts only the files actually
// indexed; callers compare it against the requested list to detect
// "nothing was readable" conditions.
type Stats struct {
	Functions int
	Types     int
	Files     int
}

// ProgressFunc is invoked once per input file during a build.
type ProgressFunc func(current, total int, path string)

// Config holds the build configuration.
type Config struct {
	IndexPath  string
	Logger     *slog.Logger
	OnProgress ProgressFunc
}

// Indexer builds the queryable index from a list of C source files.
type Indexer struct {
	store  *store.Store
	parser *cparse.Parser
	cfg    Config
	log    *slog.Logger
}

// New opens (or creates) the index at cfg.IndexPath and prepares the
// parser.
func New(cfg Config) (*Indexer, error) {
	if dir := filepath.Dir(cfg.IndexPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}
	s, err := store.Open(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{
		store:  s,
		parser: cparse.NewParser(),
		cfg:    cfg,
		log:    log,
	}, nil
}

// Build iterates the file list sequentially and upserts every extracted
// function and type. Each file is failure-isolated: an unreadable or
// unparseable file is skipped, logged, and excluded from the file count.
func (idx *Indexer) Build(files []string) (*Stats, error) {
	stats := &Stats{}
	total := len(files)

	for i, path := range files {
		if idx.cfg.OnProgress != nil {
			idx.cfg.OnProgress(i+1, total, path)
		}

		src, err := os.ReadFile(path)
		if err != nil {
			idx.log.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		if len(src) == 0 {
			continue
		}

		tree, err := idx.parser.Parse(src)
		if err != nil {
			idx.log.Warn("skipping unparseable file", "path", path, "error", err)
			continue
		}

		for _, fn := range cparse.ExtractFunctions(tree, path, src) {
			if err := idx.store.UpsertFunction(fn, cparse.NormalizeType(fn.ReturnType)); err != nil {
				idx.log.Warn("upsert function failed", "function", fn.Name, "error", err)
				continue
			}
			stats.Functions++
		}
		for _, ti := range cparse.ExtractTypes(tree, path, src) {
			if err := idx.store.UpsertType(ti); err != nil {
				idx.log.Warn("upsert type failed", "type", ti.Name, "error", err)
				continue
			}
			stats.Types++
		}
		tree.Close()

		stats.Files++
	}

	if err := idx.store.SetMeta(store.MetaLastIndexed, time.Now().Format(time.RFC3339)); err != nil {
		return stats, fmt.Errorf("set meta: %w", err)
	}
	if err := idx.store.SetMeta(store.MetaFileCount, strconv.Itoa(stats.Files)); err != nil {
		return stats, fmt.Errorf("set meta: %w", err)
	}

	idx.log.Info("index built",
		"files", stats.Files, "functions", stats.Functions, "types", stats.Types)
	return stats, nil
}

// Close releases the underlying store.
func (idx *Indexer) Close() error {
	return idx.store.Close()
}

// Build is the one-shot form: open, build, close.
func Build(files []string, cfg Config) (*Stats, error) {
	idx, err := New(cfg)
	if err != nil {
		return nil, err
	}
	defer idx.Close()
	return idx.Build(files)
}
