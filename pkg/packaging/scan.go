package packaging

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// IgnoreFile marks a directory whose contents are left out of its pack
const IgnoreFile = ".instkitignore"

// skippedNames are never packaged
var skippedNames = map[string]bool{
	IgnoreFile:   true,
	".DS_Store":  true,
	".git":       true,
	".gitignore": true,
	"Thumbs.db":  true,
}

// FileInfo is a regular file found in a pack directory
type FileInfo struct {
	Path string // Slash separated path relative to the pack directory
	Name string // Base name
	Mode fs.FileMode
	Size int64
}

// Scanner lists the files of a pack, applying exclusion patterns.
//
// Patterns follow these conventions:
//
//   - `*.tmp` - glob against the file name
//   - `build/` - a directory name (trailing slash), skipping its contents
//   - `docs/*.pdf` - glob against the relative path (contains a slash)
type Scanner struct {
	fs     afero.Fs
	logger zerolog.Logger
}

// NewScanner creates a scanner over fs
func NewScanner(fsys afero.Fs) *Scanner {
	return &Scanner{
		fs:     fsys,
		logger: logging.GetLogger("packaging.scanner"),
	}
}

// ScanPack returns the pack's files sorted by path
func (s *Scanner) ScanPack(p Pack) ([]FileInfo, error) {
	s.logger.Debug().
		Str("pack", p.ID).
		Str("path", p.Dir).
		Msg("Scanning pack")

	info, err := s.fs.Stat(p.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPackNotFound, "pack %s: directory %s not found", p.ID, p.Dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrPackInvalid, "pack path %s is not a directory", p.Dir).
			WithDetail("pack", p.ID)
	}

	var files []FileInfo
	err = afero.Walk(s.fs, p.Dir, func(path string, fi fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == p.Dir {
			return nil
		}
		rel, err := filepath.Rel(p.Dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if skippedNames[fi.Name()] {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.IsDir() {
			if s.hasIgnoreFile(path) || excluded(p.Exclude, rel, fi.Name(), true) {
				s.logger.Debug().Str("dir", rel).Msg("Skipping directory")
				return filepath.SkipDir
			}
			return nil
		}
		if !fi.Mode().IsRegular() || excluded(p.Exclude, rel, fi.Name(), false) {
			return nil
		}

		files = append(files, FileInfo{
			Path: rel,
			Name: fi.Name(),
			Mode: fi.Mode().Perm(),
			Size: fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to scan pack %s", p.ID)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	s.logger.Debug().
		Str("pack", p.ID).
		Int("files", len(files)).
		Msg("Pack scan complete")
	return files, nil
}

func (s *Scanner) hasIgnoreFile(dir string) bool {
	ok, err := afero.Exists(s.fs, filepath.Join(dir, IgnoreFile))
	return err == nil && ok
}

// excluded checks a file or directory against the exclusion patterns
func excluded(patterns []string, rel, name string, isDir bool) bool {
	for _, pattern := range patterns {
		if matchesPattern(pattern, rel, name, isDir) {
			return true
		}
	}
	return false
}

func matchesPattern(pattern, rel, name string, isDir bool) bool {
	// Directory matching - pattern ends with /
	if strings.HasSuffix(pattern, "/") {
		if !isDir {
			return false
		}
		dirPattern := strings.TrimSuffix(pattern, "/")
		if strings.Contains(dirPattern, "/") {
			matched, _ := filepath.Match(dirPattern, rel)
			return matched
		}
		matched, _ := filepath.Match(dirPattern, name)
		return matched
	}

	// Don't match directories with file patterns
	if isDir {
		return false
	}

	// Path pattern - contains /
	if strings.Contains(pattern, "/") {
		matched, _ := filepath.Match(pattern, rel)
		return matched
	}

	matched, _ := filepath.Match(pattern, name)
	return matched
}
