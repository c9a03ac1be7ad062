// Package scanner finds PDFs that can be submitted for audit.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	".stacaudit":   true,
	"dist":         true,
	"bin":          true,
}

// MaxResults bounds the number of candidates returned by Scan.
const MaxResults = 200

// FileScanner walks a directory tree looking for PDF files.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan returns the PDFs under root, relative to it and sorted. Directories
// named in excludePaths are skipped in addition to the built-in ones.
func (s *FileScanner) Scan(root string, excludePaths ...string) ([]string, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.TrimSuffix(p, "/")] = true
	}

	var found []string
	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != absPath && (skipDirs[d.Name()] || extraSkip[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			return nil
		}
		relPath, _ := filepath.Rel(absPath, path)
		found = append(found, relPath)
		if len(found) >= MaxResults {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	sort.Strings(found)
	return found, nil
}
