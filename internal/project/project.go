package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// DirName is the per-project metadata directory created under the
// project root.
const DirName = ".chisel"

// Config is the file-backed project configuration stored at
// <root>/.chisel/project.yaml.
type Config struct {
	Name  string      `yaml:"name"`
	Index IndexConfig `yaml:"index"`
}

// IndexConfig selects the files fed into a build.
type IndexConfig struct {
	// Includes/Excludes are doublestar glob patterns relative to the
	// project root.
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	// Files are explicit paths indexed in addition to the glob matches,
	// typically imported from a compilation database.
	Files []string `yaml:"files"`
}

// DefaultConfig returns the configuration used when no project file
// exists.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Includes: []string{"**/*.c", "**/*.h"},
			Excludes: []string{"**/build/**", "**/.git/**", "**/" + DirName + "/**"},
		},
	}
}

// Dir returns the metadata directory for a project root.
func Dir(root string) string {
	return filepath.Join(root, DirName)
}

// ConfigPath returns the project file path for a root.
func ConfigPath(root string) string {
	return filepath.Join(Dir(root), "project.yaml")
}

// IndexPath returns the fixed index database path for a root.
func IndexPath(root string) string {
	return filepath.Join(Dir(root), "index.db")
}

// Load reads the project configuration, returning defaults when no
// project file exists.
func Load(root string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read project config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config: %w", err)
	}
	return cfg, nil
}

// Save writes the project configuration, creating the metadata
// directory if needed.
func Save(root string, cfg *Config) error {
	if err := os.MkdirAll(Dir(root), 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal project config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0o644); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	return nil
}

// Files resolves the list of files to index: glob matches under root
// plus the explicit file entries, deduplicated and sorted.
func Files(root string, cfg *Config) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if excluded(rel+"/", cfg.Index.Excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded(rel, cfg.Index.Excludes) {
			return nil
		}
		for _, pattern := range cfg.Index.Includes {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				add(path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk project: %w", err)
	}

	for _, f := range cfg.Index.Files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(root, f)
		}
		add(f)
	}

	sort.Strings(files)
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		// Directory patterns like "**/build/**" should also prune the
		// directory entry itself.
		if strings.HasSuffix(rel, "/") {
			if ok, _ := doublestar.Match(pattern, rel+"x"); ok {
				return true
			}
		}
	}
	return false
}

// SiblingHeaders returns the .h files living next to the given sources,
// so doc comments in headers are indexed alongside definitions.
func SiblingHeaders(files []string) []string {
	seenDir := make(map[string]bool)
	seenFile := make(map[string]bool)
	for _, f := range files {
		seenFile[f] = true
	}

	var headers []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if seenDir[dir] {
			continue
		}
		seenDir[dir] = true

		matches, err := filepath.Glob(filepath.Join(dir, "*.h"))
		if err != nil {
			continue
		}
		for _, h := range matches {
			if !seenFile[h] {
				seenFile[h] = true
				headers = append(headers, h)
			}
		}
	}
	sort.Strings(headers)
	return headers
}
