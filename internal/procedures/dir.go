package procedures

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ppiankov/procspectre/internal/discovery"
)

// DirSource reads procedure names from definition files under a root
// directory. Each matching file contributes its base name without extension.
type DirSource struct {
	root    string
	pattern string
}

// NewDirSource returns a DirSource for root. An empty pattern means DefaultPattern.
// Patterns are doublestar globs matched case-insensitively against the
// root-relative, slash-separated path.
func NewDirSource(root, pattern string) (*DirSource, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	pattern = strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid definition pattern %q", pattern)
	}
	return &DirSource{root: root, pattern: pattern}, nil
}

// Names walks the root and returns the sorted vocabulary.
func (s *DirSource) Names(ctx context.Context) ([]string, error) {
	if err := discovery.CheckDir(s.root); err != nil {
		return nil, err
	}

	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = strings.ToLower(filepath.ToSlash(rel))
		if ok, _ := doublestar.Match(s.pattern, rel); !ok {
			return nil
		}

		name := filepath.Base(path)
		names = append(names, strings.TrimSuffix(name, filepath.Ext(name)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}

	names = normalize(names)
	slog.Debug("procedure definitions loaded", "root", s.root, "pattern", s.pattern, "procedures", len(names))
	return names, nil
}
