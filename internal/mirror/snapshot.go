package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/afero"
)

var ErrDirectoryNotFound = errors.New("directory not found")

// Snapshot maps the absolute path of every regular file in the watched
// directory to its modification time.
type Snapshot map[string]time.Time

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for path, mtime := range s {
		out[path] = mtime
	}
	return out
}

func (s Snapshot) Paths() mapset.Set[string] {
	set := mapset.NewThreadUnsafeSetWithSize[string](len(s))
	for path := range s {
		set.Add(path)
	}
	return set
}

// Scanner builds snapshots of a single directory level.
type Scanner struct {
	fs     afero.Fs
	ignore *IgnoreList
}

func NewScanner(fsys afero.Fs, ignore *IgnoreList) *Scanner {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Scanner{fs: fsys, ignore: ignore}
}

// Scan lists the top level of dir. Sub-directories are not descended into.
// Symlinks are followed and kept only when they point at a regular file.
func (s *Scanner) Scan(dir string) (Snapshot, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	snap := make(Snapshot, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if s.ignore.ShouldIgnore(path) {
			continue
		}

		info := entry
		if entry.Mode()&fs.ModeSymlink != 0 {
			// afero.ReadDir uses Lstat on the os backend
			info, err = s.fs.Stat(path)
			if err != nil {
				slog.Debug("snapshot skip", "path", path, "error", err)
				continue
			}
		}

		if !info.Mode().IsRegular() {
			continue
		}

		snap[path] = info.ModTime()
	}

	return snap, nil
}

// FileInfo returns size and mtime of one snapshot entry.
func (s *Scanner) FileInfo(path string) (fs.FileInfo, error) {
	return s.fs.Stat(path)
}
