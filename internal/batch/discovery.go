package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MeKo-Tech/gridwarp/internal/pgm"
)

// discoverer selects batch inputs. Files produced by an earlier run (name ends in
// the output suffix, or inside the output directory) are never picked up again.
type discoverer struct {
	recursive bool
	include   []string
	exclude   []string
	suffix    string
	outputDir string
}

func newDiscoverer(cfg *Config) *discoverer {
	d := &discoverer{
		recursive: cfg.Recursive,
		include:   cfg.IncludePatterns,
		exclude:   cfg.ExcludePatterns,
		suffix:    cfg.Suffix,
	}
	if cfg.OutputDir != "" {
		d.outputDir = filepath.Clean(cfg.OutputDir)
	}
	return d
}

// Discover lists the supported rasters under paths the same way Process does: the
// result is sorted and free of duplicates.
func Discover(paths []string, cfg *Config) ([]string, error) {
	return newDiscoverer(cfg).discover(paths)
}

func (d *discoverer) discover(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			if d.accepts(p) {
				files = append(files, p)
			}
			continue
		}
		found, err := d.walk(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func (d *discoverer) walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if !d.recursive || filepath.Clean(path) == d.outputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.accepts(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}

// accepts applies the format, output and pattern filters to one file.
func (d *discoverer) accepts(path string) bool {
	if !pgm.IsSupported(path) || d.isOutput(path) {
		return false
	}
	base := filepath.Base(path)
	if matchesAny(base, d.exclude) {
		return false
	}
	return len(d.include) == 0 || matchesAny(base, d.include)
}

func (d *discoverer) isOutput(path string) bool {
	if d.outputDir != "" && filepath.Clean(filepath.Dir(path)) == d.outputDir {
		return true
	}
	if d.suffix == "" {
		return false
	}
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), d.suffix)
}

// matchesAny reports whether name matches one of the shell patterns.
func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
