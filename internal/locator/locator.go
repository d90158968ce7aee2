// Package locator finds the client executable inside an install tree.
package locator

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no file with the requested name exists.
var ErrNotFound = errors.New("executable not found")

// Find searches root recursively and returns the path of the first regular
// file named filename. Each directory's own files are checked before its
// subdirectories, which are visited in lexical order. Unreadable
// subdirectories are skipped. A missing root reports ErrNotFound.
func Find(root, filename string) (string, error) {
	if root == "" || filename == "" {
		return "", ErrNotFound
	}
	if path, ok := search(root, filename); ok {
		return path, nil
	}
	return "", ErrNotFound
}

func search(dir, filename string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && e.Name() == filename {
			return filepath.Join(dir, e.Name()), true
		}
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if path, ok := search(filepath.Join(dir, e.Name()), filename); ok {
			return path, true
		}
	}
	return "", false
}
