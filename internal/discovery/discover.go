// Package discovery enumerates the code files to scan: it walks a root,
// drops excluded paths, and collapses files with identical content.
package discovery

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Options controls which files are excluded from discovery.
type Options struct {
	// Extensions are literal, case-insensitive path suffixes (".dll", "_gen.go").
	Extensions []string
	// Paths are case-insensitive substrings matched anywhere in the path.
	Paths []string
	// Globs are doublestar patterns matched against the root-relative, slash-separated path.
	Globs []string
	// Dirs are directory names (".git", "node_modules") that are never descended,
	// at any depth. Matched case-insensitively against the name alone.
	Dirs []string
}

// Discoverer walks a code root and returns the unique files under it.
type Discoverer struct {
	extensions []string
	paths      []string
	globs      []string
	skipDirs   map[string]bool
	dedup      *Deduplicator
}

// New returns a Discoverer applying opts. Empty exclusion entries are ignored.
// A malformed glob is an error.
func New(opts Options) (*Discoverer, error) {
	var globs []string
	for _, g := range opts.Globs {
		if g == "" {
			continue
		}
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid exclude glob %q", g)
		}
		globs = append(globs, g)
	}

	skipDirs := make(map[string]bool, len(opts.Dirs))
	for _, name := range lowerNonEmpty(opts.Dirs) {
		skipDirs[name] = true
	}

	return &Discoverer{
		extensions: lowerNonEmpty(opts.Extensions),
		paths:      lowerNonEmpty(opts.Paths),
		globs:      globs,
		skipDirs:   skipDirs,
		dedup:      NewDeduplicator(),
	}, nil
}

// Discover returns every non-excluded regular file under root in walk order,
// with content duplicates removed (first path wins).
func (d *Discoverer) Discover(root string) ([]string, error) {
	if err := CheckDir(root); err != nil {
		return nil, err
	}

	var paths []string
	excluded := 0

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if entry.IsDir() {
			if path != root && d.skipDirs[strings.ToLower(entry.Name())] {
				slog.Debug("skipping directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !isRegularFile(path, entry) {
			return nil
		}
		if d.excluded(root, path) {
			excluded++
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	unique := d.dedup.Dedupe(paths)
	slog.Debug("files discovered",
		"root", root,
		"candidates", len(paths),
		"excluded", excluded,
		"duplicates", len(paths)-len(unique))
	return unique, nil
}

func (d *Discoverer) excluded(root, path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range d.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, sub := range d.paths {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	if len(d.globs) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range d.globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// isRegularFile accepts regular files and symlinks to regular files.
// Directory symlinks are never followed, so the walk cannot cycle.
func isRegularFile(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func lowerNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		out = append(out, strings.ToLower(v))
	}
	return out
}
