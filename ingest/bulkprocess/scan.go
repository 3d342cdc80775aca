package bulkprocess

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPatterns names the usual DICOM extensions, then accepts everything
// else too: files are not pre-filtered, they are parsed and dropped on failure.
var DefaultPatterns = []string{"*.dcm", "*.dicom", "*"}

type ScanOptions struct {
	// Patterns are filepath.Match patterns applied to base names. Empty means
	// DefaultPatterns.
	Patterns []string

	// ExpandArchives replaces each matching .zip with the files inside it.
	ExpandArchives bool
}

// DefaultScanOptions accepts any file and looks inside zips.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{Patterns: DefaultPatterns, ExpandArchives: true}
}

// ScanFolder lists the regular, non-hidden files directly inside dir whose
// names match any pattern, sorted by name. Symlinks count when they resolve to
// a regular file. Only a failure to list dir itself is
// an error; unreadable archives are skipped.
func ScanFolder(dir string, opts ScanOptions) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || !isRegularFile(dir, entry) {
			continue
		}

		matched, err := matchAny(patterns, entry.Name())
		if err != nil {
			return nil, err
		}
		if matched {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if opts.ExpandArchives && isArchive(path) {
			inner, err := ArchiveEntries(path)
			if err != nil {
				log.Println("Ignoring error and continuing:", err.Error())
				continue
			}
			out = append(out, inner...)
			continue
		}
		out = append(out, path)
	}

	return out, nil
}

func isRegularFile(dir string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}

	// Broken links and links to directories are skipped.
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func matchAny(patterns []string, name string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
