package stone

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/boulder-sim/boulder/internal/network"
)

// Document is one configuration file found by Collect. Err holds the
// parse or validation failure for that file, if any.
type Document struct {
	Path   string
	Config *network.Configuration
	Err    error
}

// Collect expands each pattern (a file, a directory, or a doublestar glob
// such as "configs/**/*.yaml") and parses every YAML file it names.
// Directories are searched recursively. Results are sorted by path and
// each path appears once.
func Collect(patterns []string) ([]Document, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	seen := map[string]struct{}{}
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil {
			if !info.IsDir() {
				if !IsYAML(pattern) {
					return nil, fmt.Errorf("%s is not a YAML file", pattern)
				}
				add(pattern)
				continue
			}
			pattern = filepath.Join(pattern, "**", "*.{yaml,yml}")
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if IsYAML(m) {
				add(m)
			}
		}
	}

	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		cfg, err := Parse(data)
		docs = append(docs, Document{Path: p, Config: cfg, Err: err})
	}
	return docs, nil
}

// IsYAML reports whether path has a YAML extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
