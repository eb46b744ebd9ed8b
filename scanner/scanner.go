package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DefaultExtensions are the Python source extensions scanned by default.
var DefaultExtensions = []string{".py", ".pyi"}

type FileInfo struct {
	Path string
	Size int64
}

// Scanner expands files and directories into the source files to check.
type Scanner struct {
	roots      []string
	extensions []string
	skip       func(path string) bool
}

// New creates a scanner over roots. skip, when non-nil, prunes matching
// directories and drops matching files found while walking; files given
// directly as roots are always kept.
func New(roots []string, skip func(path string) bool, extensions ...string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Scanner{
		roots:      roots,
		extensions: extensions,
		skip:       skip,
	}
}

// Scan returns the matching files ordered by path, without duplicates.
func (s *Scanner) Scan() ([]FileInfo, error) {
	seen := make(map[string]struct{})
	var files []FileInfo
	add := func(path string, size int64) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, FileInfo{Path: path, Size: size})
	}

	for _, root := range s.roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", root, err)
		}
		if !info.IsDir() {
			if s.isTargetFile(root) {
				add(root, info.Size())
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && s.skip != nil && s.skip(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !s.isTargetFile(path) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			add(path, info.Size())
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", root, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Match reports whether path is a file the scanner would return from a
// directory walk.
func (s *Scanner) Match(path string) bool {
	if s.skip != nil && s.skip(path) {
		return false
	}
	return s.isTargetFile(path)
}

func (s *Scanner) isTargetFile(path string) bool {
	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}
